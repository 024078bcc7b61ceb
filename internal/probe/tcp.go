package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jheddings/safenet/internal/model"
)

// TCP is the TCP connect probe. The zero value is invalid; please,
// use NewTCP to construct a new instance.
type TCP struct {
	dialer  model.Dialer
	host    string
	logger  model.Logger
	port    int
	timeout time.Duration
}

var _ model.Probe = &TCP{}

// NewTCP creates a new TCP probe connecting to host:port using the
// given dialer. The dialer decides the local address to bind to. A
// zero timeout means DefaultTimeout.
func NewTCP(host string, port int, timeout time.Duration, dialer model.Dialer, logger model.Logger) *TCP {
	return &TCP{
		dialer:  dialer,
		host:    host,
		logger:  model.ValidLoggerOrDefault(logger),
		port:    port,
		timeout: timeoutOrDefault(timeout),
	}
}

// Kind implements model.Probe.
func (p *TCP) Kind() model.ProbeKind {
	return model.ProbeKindTCP
}

// Address implements model.Probe.
func (p *TCP) Address() string {
	return net.JoinHostPort(p.host, strconv.Itoa(p.port))
}

// IsAvailable implements model.Probe.
func (p *TCP) IsAvailable(ctx context.Context) *model.ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	defer p.dialer.CloseIdleConnections()

	endpoint := p.Address()
	start := time.Now()
	conn, err := p.dialer.DialContext(ctx, "tcp", endpoint)
	elapsed := time.Since(start)
	if err != nil {
		failure, detail := failureDetail(err)
		p.logger.Debugf("tcp: %s: %s", endpoint, detail)
		return &model.ProbeResult{
			Available: false,
			Detail:    detail,
			Failure:   failure,
			Elapsed:   elapsed,
		}
	}
	local := conn.LocalAddr().String()
	conn.Close()
	p.logger.Debugf("tcp: %s: connected from %s in %s", endpoint, local, elapsed)
	return &model.ProbeResult{
		Available: true,
		Detail:    fmt.Sprintf("connected from %s", local),
		Elapsed:   elapsed,
	}
}

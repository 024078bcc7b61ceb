package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/jheddings/safenet/internal/model"
	"github.com/jheddings/safenet/internal/netxlite"
	"github.com/montanaflynn/stats"
)

// PingConfig contains the ping settings. Zero values of Count, Timeout
// and TTL mean defaults, while a negative Size means DefaultSize.
type PingConfig struct {
	// Count is the number of echo requests to send.
	Count int

	// Timeout bounds each attempt.
	Timeout time.Duration

	// TTL is the IP time to live of the requests.
	TTL int

	// Size is the payload size in bytes.
	Size int

	// Privileged selects raw ICMP sockets.
	Privileged bool
}

// Ping is the ICMP echo probe. The zero value is invalid; please,
// use NewPing to construct a new instance.
type Ping struct {
	address string
	config  PingConfig
	dialer  model.EchoDialer
	logger  model.Logger
}

var _ model.Probe = &Ping{}

// NewPing creates a new Ping probe for address.
func NewPing(address string, config PingConfig, dialer model.EchoDialer, logger model.Logger) *Ping {
	if config.Count <= 0 {
		config.Count = DefaultCount
	}
	config.Timeout = timeoutOrDefault(config.Timeout)
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.Size < 0 {
		config.Size = DefaultSize
	}
	return &Ping{
		address: address,
		config:  config,
		dialer:  dialer,
		logger:  model.ValidLoggerOrDefault(logger),
	}
}

// Kind implements model.Probe.
func (p *Ping) Kind() model.ProbeKind {
	return model.ProbeKindPing
}

// Address implements model.Probe.
func (p *Ping) Address() string {
	return p.address
}

// Config returns the effective configuration.
func (p *Ping) Config() PingConfig {
	return p.config
}

// IsAvailable implements model.Probe.
//
// It sends Count sequential echo requests and the target is available
// when at least one of them receives a reply. Failed attempts are
// recorded and never abort the loop.
func (p *Ping) IsAvailable(ctx context.Context) *model.ProbeResult {
	start := time.Now()
	pingStats := &model.PingStats{Failures: make([]string, p.config.Count)}
	rtts := p.run(ctx, pingStats)
	result := &model.ProbeResult{
		Available: len(rtts) > 0,
		Elapsed:   time.Since(start),
		Ping:      pingStats,
	}
	if result.Available {
		p.computeRTTStats(pingStats, rtts)
		result.Detail = fmt.Sprintf("%d/%d replies%s, rtt min/avg/max/stddev %s/%s/%s/%s",
			pingStats.Received, p.config.Count, failureCounts(pingStats), pingStats.MinRTT,
			pingStats.AvgRTT, pingStats.MaxRTT, pingStats.StdDevRTT)
		return result
	}
	result.Failure = pingStats.Failures[len(pingStats.Failures)-1]
	result.Detail = fmt.Sprintf("0/%d replies%s: %s", p.config.Count, failureCounts(pingStats), result.Failure)
	return result
}

// failureCounts formats the per-class failure counts or returns
// the empty string when no attempt failed.
func failureCounts(pingStats *model.PingStats) string {
	if pingStats.Timeouts+pingStats.ProtocolErrors+pingStats.NetworkErrors == 0 {
		return ""
	}
	return fmt.Sprintf(" (timeouts=%d protocol=%d network=%d)",
		pingStats.Timeouts, pingStats.ProtocolErrors, pingStats.NetworkErrors)
}

// recordFailure records the failure of the attempt seq and counts it
// as a timeout, a protocol error, or an OS/network error.
func recordFailure(pingStats *model.PingStats, seq int, failure string) {
	pingStats.Failures[seq] = failure
	switch {
	case failure == netxlite.FailureInterrupted:
	case netxlite.IsTimeoutFailure(failure):
		pingStats.Timeouts++
	case netxlite.IsProtocolFailure(failure):
		pingStats.ProtocolErrors++
	default:
		pingStats.NetworkErrors++
	}
}

// run performs the attempts and returns the RTT of the successful ones.
func (p *Ping) run(ctx context.Context, pingStats *model.PingStats) []float64 {
	dialCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	conn, err := p.dialer.DialEcho(dialCtx, p.address, &model.EchoConfig{
		TTL:        p.config.TTL,
		Size:       p.config.Size,
		Privileged: p.config.Privileged,
	})
	cancel()
	if err != nil {
		failure, detail := failureDetail(err)
		p.logger.Warnf("ping: %s: cannot send echo requests: %s", p.address, detail)
		for idx := range pingStats.Failures {
			recordFailure(pingStats, idx, failure)
		}
		return nil
	}
	defer conn.Close()

	var rtts []float64
	for seq := 0; seq < p.config.Count; seq++ {
		if err := ctx.Err(); err != nil {
			recordFailure(pingStats, seq, netxlite.FailureOf(err))
			continue
		}
		pingStats.Sent++
		rtt, err := p.attempt(ctx, conn, seq)
		if err != nil {
			failure, detail := failureDetail(err)
			p.logger.Debugf("ping: %s: seq=%d %s", p.address, seq, detail)
			recordFailure(pingStats, seq, failure)
			continue
		}
		p.logger.Debugf("ping: %s: seq=%d time=%s", p.address, seq, rtt)
		pingStats.Received++
		rtts = append(rtts, float64(rtt))
	}
	return rtts
}

// attempt sends a single echo request bounded by the per-attempt timeout.
func (p *Ping) attempt(ctx context.Context, conn model.EchoConn, seq int) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()
	return conn.Echo(ctx, seq)
}

// computeRTTStats fills the RTT statistics. The input is not empty.
func (p *Ping) computeRTTStats(pingStats *model.PingStats, rtts []float64) {
	data := stats.Float64Data(rtts)
	if v, err := data.Min(); err == nil {
		pingStats.MinRTT = time.Duration(v)
	}
	if v, err := data.Mean(); err == nil {
		pingStats.AvgRTT = time.Duration(v)
	}
	if v, err := data.Max(); err == nil {
		pingStats.MaxRTT = time.Duration(v)
	}
	if v, err := data.StandardDeviation(); err == nil {
		pingStats.StdDevRTT = time.Duration(v)
	}
}

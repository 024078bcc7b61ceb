package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jheddings/safenet/internal/model"
	"github.com/jheddings/safenet/internal/netxlite"
	"github.com/jheddings/safenet/internal/version"
)

// HTTP is the HTTP HEAD probe. The zero value is invalid; please,
// use NewHTTP to construct a new instance.
type HTTP struct {
	logger  model.Logger
	timeout time.Duration
	txp     model.HTTPTransport
	URL     string
}

var _ model.Probe = &HTTP{}

// NewHTTP creates a new HTTP probe sending HEAD requests to URL using
// the given transport. A zero timeout means DefaultTimeout.
func NewHTTP(URL string, timeout time.Duration, txp model.HTTPTransport, logger model.Logger) *HTTP {
	return &HTTP{
		logger:  model.ValidLoggerOrDefault(logger),
		timeout: timeoutOrDefault(timeout),
		txp:     txp,
		URL:     URL,
	}
}

// Kind implements model.Probe.
func (p *HTTP) Kind() model.ProbeKind {
	return model.ProbeKindHTTP
}

// Address implements model.Probe.
func (p *HTTP) Address() string {
	return p.URL
}

// IsAvailable implements model.Probe.
//
// The target is available when the server replies with a status in
// the success or redirect ranges. Redirects are not followed.
func (p *HTTP) IsAvailable(ctx context.Context) *model.ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	defer p.txp.CloseIdleConnections()

	start := time.Now()
	code, err := p.head(ctx)
	elapsed := time.Since(start)
	if err != nil {
		failure, detail := failureDetail(err)
		if code != 0 {
			detail = fmt.Sprintf("status %d", code)
		}
		p.logger.Debugf("http: %s: %s", p.URL, detail)
		return &model.ProbeResult{
			Available: false,
			Detail:    detail,
			Failure:   failure,
			Elapsed:   elapsed,
		}
	}
	p.logger.Debugf("http: %s: status %d in %s", p.URL, code, elapsed)
	return &model.ProbeResult{
		Available: true,
		Detail:    fmt.Sprintf("status %d", code),
		Elapsed:   elapsed,
	}
}

// head sends the HEAD request and returns the status code or an error
// when the round trip fails or the status code is not acceptable.
func (p *HTTP) head(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return 0, netxlite.NewErrWrapper(func(error) string {
			return netxlite.FailureInvalidAddress
		}, netxlite.HTTPRoundTripOperation, err)
	}
	req.Header.Set("Accept", model.HTTPHeaderAccept)
	req.Header.Set("User-Agent", model.HTTPHeaderUserAgentPrefix+version.Version)
	resp, err := netxlite.NewHTTPClient(p.txp).Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	if !model.HTTPStatusIsAvailable(resp.StatusCode) {
		return resp.StatusCode, netxlite.NewErrWrapper(
			netxlite.ClassifyHTTPError,
			netxlite.HTTPRoundTripOperation,
			fmt.Errorf("%w: %d", netxlite.ErrHTTPUnexpectedStatusCode, resp.StatusCode),
		)
	}
	return resp.StatusCode, nil
}

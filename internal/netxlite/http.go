package netxlite

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/jheddings/safenet/internal/model"
)

// httpTransportLogger is an HTTPTransport with logging.
type httpTransportLogger struct {
	// HTTPTransport is the underlying HTTP transport.
	HTTPTransport model.HTTPTransport

	// Logger is the underlying logger.
	Logger model.Logger
}

var _ model.HTTPTransport = &httpTransportLogger{}

// RoundTrip implements HTTPTransport.RoundTrip.
func (txp *httpTransportLogger) RoundTrip(req *http.Request) (*http.Response, error) {
	txp.Logger.Debugf("> %s %s", req.Method, req.URL.String())
	for key, values := range req.Header {
		for _, value := range values {
			txp.Logger.Debugf("> %s: %s", key, value)
		}
	}
	txp.Logger.Debug(">")
	resp, err := txp.HTTPTransport.RoundTrip(req)
	if err != nil {
		txp.Logger.Debugf("< %s", err)
		return nil, err
	}
	txp.Logger.Debugf("< %d", resp.StatusCode)
	for key, values := range resp.Header {
		for _, value := range values {
			txp.Logger.Debugf("< %s: %s", key, value)
		}
	}
	txp.Logger.Debug("<")
	return resp, nil
}

// CloseIdleConnections implement HTTPTransport.CloseIdleConnections.
func (txp *httpTransportLogger) CloseIdleConnections() {
	txp.HTTPTransport.CloseIdleConnections()
}

// httpTransportErrWrapper is an HTTPTransport with error wrapping.
type httpTransportErrWrapper struct {
	model.HTTPTransport
}

var _ model.HTTPTransport = &httpTransportErrWrapper{}

// RoundTrip implements HTTPTransport.RoundTrip.
func (txp *httpTransportErrWrapper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := txp.HTTPTransport.RoundTrip(req)
	if err != nil {
		return nil, NewErrWrapper(ClassifyHTTPError, HTTPRoundTripOperation, err)
	}
	return resp, nil
}

// httpTransportConnectionsCloser is an HTTPTransport that
// correctly forwards CloseIdleConnections.
type httpTransportConnectionsCloser struct {
	model.HTTPTransport
	model.Dialer
}

// CloseIdleConnections forwards the CloseIdleConnections calls.
func (txp *httpTransportConnectionsCloser) CloseIdleConnections() {
	txp.HTTPTransport.CloseIdleConnections()
	txp.Dialer.CloseIdleConnections()
}

// NewHTTPTransport creates a new HTTP transport using the given
// dialer to create connections.
//
// The returned transport will use the given Logger for logging.
//
// The returned transport will not have a configured proxy, not
// even the proxy configurable from the environment.
//
// The returned transport will disable transparent decompression
// of compressed response bodies.
func NewHTTPTransport(logger model.Logger, dialer model.Dialer) model.HTTPTransport {
	txp := http.DefaultTransport.(*http.Transport).Clone()

	// This wrapping ensures that we always have a read timeout.
	dialer = &httpDialerWithReadTimeout{dialer}
	txp.DialContext = dialer.DialContext

	// Availability checks must observe the direct path.
	txp.Proxy = nil

	// One connection per host keeps the logs readable.
	txp.MaxConnsPerHost = 1

	txp.DisableCompression = true

	return &httpTransportLogger{
		HTTPTransport: &httpTransportErrWrapper{
			HTTPTransport: &httpTransportConnectionsCloser{
				HTTPTransport: txp,
				Dialer:        dialer,
			},
		},
		Logger: logger,
	}
}

// NewHTTPClient creates a new HTTP client using the given transport.
//
// The returned client does not follow redirects: the caller sees
// the 3xx response as is.
func NewHTTPClient(txp model.HTTPTransport) *http.Client {
	return &http.Client{
		Transport: txp,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// httpDialerWithReadTimeout enforces a read timeout for all HTTP
// connections.
type httpDialerWithReadTimeout struct {
	model.Dialer
}

// DialContext implements Dialer.DialContext.
func (d *httpDialerWithReadTimeout) DialContext(
	ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return &httpConnWithReadTimeout{conn}, nil
}

// httpConnWithReadTimeout enforces a read timeout for all HTTP
// connections.
type httpConnWithReadTimeout struct {
	net.Conn
}

// Read implements Conn.Read.
func (c *httpConnWithReadTimeout) Read(b []byte) (int, error) {
	c.Conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	defer c.Conn.SetReadDeadline(time.Time{})
	return c.Conn.Read(b)
}

package netxlite

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"time"

	"github.com/jheddings/safenet/internal/model"
)

// NewDialerWithResolver creates a dialer using the given logger and
// resolver. When source is valid, every connection is bound to
// source using an ephemeral port before connecting.
//
// The returned dialer wraps errors, so the caller can use errors.As
// to obtain the *ErrWrapper and its failure string.
func NewDialerWithResolver(logger model.Logger, resolver model.Resolver, source netip.Addr) model.Dialer {
	return &dialerLogger{
		Dialer: &dialerResolver{
			Dialer: &dialerLogger{
				Dialer: &dialerErrWrapper{
					Dialer: &dialerSystem{source: source},
				},
				Logger:          logger,
				operationSuffix: "_address",
			},
			Resolver: resolver,
		},
		Logger: logger,
	}
}

// dialerSystemTimeout is the connect timeout used when the
// context passed to DialContext has no deadline.
const dialerSystemTimeout = 15 * time.Second

// dialerSystem dials using Go stdlib.
type dialerSystem struct {
	// source is the optional local address to bind to.
	source netip.Addr
}

var _ model.Dialer = &dialerSystem{}

func (d *dialerSystem) newUnderlyingDialer() *net.Dialer {
	dialer := &net.Dialer{Timeout: dialerSystemTimeout}
	if d.source.IsValid() {
		// port zero lets the kernel pick an ephemeral port
		dialer.LocalAddr = &net.TCPAddr{IP: d.source.AsSlice(), Port: 0}
	}
	return dialer
}

// DialContext implements model.Dialer.DialContext.
func (d *dialerSystem) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return d.newUnderlyingDialer().DialContext(ctx, network, address)
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerSystem) CloseIdleConnections() {
	// nothing
}

// dialerResolver is a dialer that uses the configured Resolver to resolve a
// domain name to IP addresses, and the configured Dialer to connect.
type dialerResolver struct {
	// Dialer is the underlying Dialer.
	Dialer model.Dialer

	// Resolver is the underlying Resolver.
	Resolver model.Resolver
}

var _ model.Dialer = &dialerResolver{}

// DialContext implements model.Dialer.DialContext.
func (d *dialerResolver) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	onlyhost, onlyport, err := net.SplitHostPort(address)
	if err != nil {
		return nil, NewErrWrapper(func(error) string { return FailureInvalidAddress },
			ConnectOperation, err)
	}
	addrs, err := d.lookupHost(ctx, onlyhost)
	if err != nil {
		return nil, err
	}
	var errorslist []error
	for _, addr := range addrs {
		target := net.JoinHostPort(addr, onlyport)
		conn, err := d.Dialer.DialContext(ctx, network, target)
		if err == nil {
			return conn, nil
		}
		errorslist = append(errorslist, err)
	}
	return nil, reduceErrors(errorslist)
}

// lookupHost performs a domain name resolution.
func (d *dialerResolver) lookupHost(ctx context.Context, hostname string) ([]string, error) {
	if net.ParseIP(hostname) != nil {
		return []string{hostname}, nil
	}
	return d.Resolver.LookupHost(ctx, hostname)
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerResolver) CloseIdleConnections() {
	d.Dialer.CloseIdleConnections()
	d.Resolver.CloseIdleConnections()
}

// reduceErrors returns the first error whose failure is connection_refused,
// if any, otherwise the first error. Refused is the most informative failure
// when the same name maps to several addresses.
func reduceErrors(errorslist []error) error {
	if len(errorslist) == 0 {
		return errors.New("no addresses to dial")
	}
	for _, err := range errorslist {
		var wrapper *ErrWrapper
		if errors.As(err, &wrapper) && wrapper.Failure == FailureConnectionRefused {
			return err
		}
	}
	return errorslist[0]
}

// dialerLogger is a Dialer with logging.
type dialerLogger struct {
	// Dialer is the underlying dialer.
	Dialer model.Dialer

	// Logger is the underlying logger.
	Logger model.Logger

	// operationSuffix is appended to the operation name.
	//
	// We use this suffix to distinguish the output from dialing
	// with the output from dialing an IP address, where otherwise
	// both lines would read something like `dial 8.8.8.8:443...`
	operationSuffix string
}

var _ model.Dialer = &dialerLogger{}

// DialContext implements model.Dialer.DialContext.
func (d *dialerLogger) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.Logger.Debugf("dial%s %s/%s...", d.operationSuffix, address, network)
	start := time.Now()
	conn, err := d.Dialer.DialContext(ctx, network, address)
	elapsed := time.Since(start)
	if err != nil {
		d.Logger.Debugf("dial%s %s/%s... %s in %s", d.operationSuffix,
			address, network, err, elapsed)
		return nil, err
	}
	d.Logger.Debugf("dial%s %s/%s... ok in %s", d.operationSuffix,
		address, network, elapsed)
	return conn, nil
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerLogger) CloseIdleConnections() {
	d.Dialer.CloseIdleConnections()
}

// dialerErrWrapper is a dialer that performs error wrapping.
type dialerErrWrapper struct {
	Dialer model.Dialer
}

var _ model.Dialer = &dialerErrWrapper{}

// DialContext implements model.Dialer.DialContext.
func (d *dialerErrWrapper) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, NewErrWrapper(ClassifyGenericError, ConnectOperation, err)
	}
	return conn, nil
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerErrWrapper) CloseIdleConnections() {
	d.Dialer.CloseIdleConnections()
}

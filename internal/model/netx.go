package model

//
// Network extensions
//

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Dialer establishes network connections.
type Dialer interface {
	// DialContext behaves like net.Dialer.DialContext.
	DialContext(ctx context.Context, network, address string) (net.Conn, error)

	// CloseIdleConnections closes idle connections, if any.
	CloseIdleConnections()
}

// Resolver performs domain name resolutions.
type Resolver interface {
	// LookupHost behaves like net.Resolver.LookupHost.
	LookupHost(ctx context.Context, hostname string) (addrs []string, err error)

	// Network returns the resolver type (e.g., "system", "udp").
	Network() string

	// Address returns the resolver address (e.g., "8.8.8.8:53").
	Address() string

	// CloseIdleConnections closes idle connections, if any.
	CloseIdleConnections()
}

// HTTPTransport is an http.Transport-like structure.
type HTTPTransport interface {
	// RoundTrip performs the HTTP round trip.
	RoundTrip(req *http.Request) (*http.Response, error)

	// CloseIdleConnections closes idle connections.
	CloseIdleConnections()
}

// EchoConfig configures ICMP echo sockets.
type EchoConfig struct {
	// TTL is the IP time to live of outgoing echo requests.
	TTL int

	// Size is the payload size in bytes.
	Size int

	// Privileged selects raw ICMP sockets instead of datagram ones.
	Privileged bool
}

// EchoConn sends ICMP echo requests to a single destination.
type EchoConn interface {
	// Echo sends an echo request with the given sequence number and
	// waits for the matching reply, or until the context is done.
	Echo(ctx context.Context, seq int) (time.Duration, error)

	// Close releases the underlying socket.
	Close() error
}

// EchoDialer creates EchoConn instances.
type EchoDialer interface {
	// DialEcho resolves address and opens an ICMP socket for it.
	DialEcho(ctx context.Context, address string, config *EchoConfig) (EchoConn, error)
}

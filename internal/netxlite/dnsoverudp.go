package netxlite

//
// DNS-over-UDP resolver using github.com/miekg/dns
//

import (
	"context"
	"time"

	"github.com/jheddings/safenet/internal/model"
	"github.com/miekg/dns"
)

// DNSOverUDPResolver resolves domain names by sending A queries
// over UDP to a single server.
type DNSOverUDPResolver struct {
	address string
	timeout time.Duration
}

// NewDNSOverUDPResolver creates a DNSOverUDPResolver instance.
//
// Arguments:
//
// - address is the endpoint address (e.g., 8.8.8.8:53);
//
// - timeout is the per-query timeout; zero means five seconds.
func NewDNSOverUDPResolver(address string, timeout time.Duration) *DNSOverUDPResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DNSOverUDPResolver{address: address, timeout: timeout}
}

var _ model.Resolver = &DNSOverUDPResolver{}

// LookupHost implements model.Resolver.LookupHost.
func (r *DNSOverUDPResolver) LookupHost(ctx context.Context, hostname string) ([]string, error) {
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(hostname), dns.TypeA)
	query.RecursionDesired = true
	clnt := &dns.Client{Net: "udp", Timeout: r.timeout}
	reply, _, err := clnt.ExchangeContext(ctx, query, r.address)
	if err != nil {
		return nil, err
	}
	return decodeLookupHost(reply)
}

// decodeLookupHost maps the reply rcode to an error and otherwise
// returns the IPv4 addresses contained in the answer section.
func decodeLookupHost(reply *dns.Msg) ([]string, error) {
	switch reply.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, ErrOODNSNoSuchHost
	case dns.RcodeRefused:
		return nil, ErrOODNSRefused
	default:
		return nil, ErrOODNSMisbehaving
	}
	var addrs []string
	for _, answer := range reply.Answer {
		if rec, ok := answer.(*dns.A); ok {
			addrs = append(addrs, rec.A.String())
		}
	}
	if len(addrs) <= 0 {
		return nil, ErrOODNSNoAnswer
	}
	return addrs, nil
}

// Network implements model.Resolver.Network.
func (r *DNSOverUDPResolver) Network() string {
	return "udp"
}

// Address implements model.Resolver.Address.
func (r *DNSOverUDPResolver) Address() string {
	return r.address
}

// CloseIdleConnections implements model.Resolver.CloseIdleConnections.
func (r *DNSOverUDPResolver) CloseIdleConnections() {
	// nothing to do
}

package testingx

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"

	"github.com/jheddings/safenet/internal/runtimex"
	"github.com/miekg/dns"
)

// DNSRoundTripper performs a DNS round trip using raw messages.
type DNSRoundTripper interface {
	RoundTrip(ctx context.Context, rawReq []byte) (rawResp []byte, err error)
}

// DNSRoundTripperFunc makes a func implement [DNSRoundTripper].
type DNSRoundTripperFunc func(ctx context.Context, rawReq []byte) (rawResp []byte, err error)

var _ DNSRoundTripper = DNSRoundTripperFunc(nil)

// RoundTrip implements DNSRoundTripper.
func (fx DNSRoundTripperFunc) RoundTrip(ctx context.Context, rawReq []byte) (rawResp []byte, err error) {
	return fx(ctx, rawReq)
}

// DNSRecords maps a domain name (without the trailing dot) to its IPv4
// addresses. A domain mapped to an empty list yields a reply without
// answers, while a missing domain yields NXDOMAIN.
type DNSRecords map[string][]string

// NewDNSRoundTripperWithRecords creates a [DNSRoundTripper] that
// replies to A queries using the given [DNSRecords].
func NewDNSRoundTripperWithRecords(records DNSRecords) DNSRoundTripper {
	return DNSRoundTripperFunc(func(ctx context.Context, rawReq []byte) ([]byte, error) {
		query := new(dns.Msg)
		if err := query.Unpack(rawReq); err != nil {
			return nil, err
		}
		if len(query.Question) != 1 {
			return nil, errors.New("expected a single question")
		}
		resp := new(dns.Msg)
		resp.SetReply(query)
		question := query.Question[0]
		addrs, found := records[strings.TrimSuffix(dns.CanonicalName(question.Name), ".")]
		if !found {
			resp.Rcode = dns.RcodeNameError
			return resp.Pack()
		}
		if question.Qtype == dns.TypeA {
			for _, addr := range addrs {
				resp.Answer = append(resp.Answer, &dns.A{
					Hdr: dns.RR_Header{
						Name:   question.Name,
						Rrtype: dns.TypeA,
						Class:  dns.ClassINET,
						Ttl:    60,
					},
					A: net.ParseIP(addr),
				})
			}
		}
		return resp.Pack()
	})
}

// DNSOverUDPUnderlyingListener is the underlying listener used by [DNSOverUDPListener].
type DNSOverUDPUnderlyingListener interface {
	ListenUDP(network string, addr *net.UDPAddr) (net.PacketConn, error)
}

// DNSOverUDPStdlibListener implements [DNSOverUDPUnderlyingListener] using the standard library.
type DNSOverUDPStdlibListener struct{}

var _ DNSOverUDPUnderlyingListener = &DNSOverUDPStdlibListener{}

// ListenUDP implements DNSOverUDPUnderlyingListener.
func (*DNSOverUDPStdlibListener) ListenUDP(network string, addr *net.UDPAddr) (net.PacketConn, error) {
	return net.ListenUDP(network, addr)
}

// DNSOverUDPListener is a DNS-over-UDP listener. The zero value of this
// struct is invalid, please use [MustNewDNSOverUDPListener].
type DNSOverUDPListener struct {
	cancel    context.CancelFunc
	closeOnce sync.Once
	pconn     net.PacketConn
	rtx       DNSRoundTripper
	wg        sync.WaitGroup
}

// MustNewDNSOverUDPListener creates a new [DNSOverUDPListener] using the given
// [DNSOverUDPUnderlyingListener], [DNSRoundTripper], and [*net.UDPAddr].
func MustNewDNSOverUDPListener(addr *net.UDPAddr, dul DNSOverUDPUnderlyingListener, rtx DNSRoundTripper) *DNSOverUDPListener {
	pconn := runtimex.Try1(dul.ListenUDP("udp", addr))
	ctx, cancel := context.WithCancel(context.Background())
	dl := &DNSOverUDPListener{
		cancel:    cancel,
		closeOnce: sync.Once{},
		pconn:     pconn,
		rtx:       rtx,
		wg:        sync.WaitGroup{},
	}
	dl.wg.Add(1)
	go dl.mainloop(ctx)
	return dl
}

// LocalAddr returns the connection address.
func (dl *DNSOverUDPListener) LocalAddr() net.Addr {
	return dl.pconn.LocalAddr()
}

// Close implements io.Closer.
func (dl *DNSOverUDPListener) Close() (err error) {
	dl.closeOnce.Do(func() {
		// close the connection to interrupt ReadFrom or WriteTo
		err = dl.pconn.Close()

		// cancel the context to interrupt the round tripper
		dl.cancel()

		// wait for the background goroutine to join
		dl.wg.Wait()
	})
	return err
}

func (dl *DNSOverUDPListener) mainloop(ctx context.Context) {
	// synchronize with Close
	defer dl.wg.Done()

	for {
		buffer := make([]byte, 1<<17)
		count, addr, err := dl.pconn.ReadFrom(buffer)

		// handle errors including the case in which we're closed
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			continue
		}

		rawResp, err := dl.rtx.RoundTrip(ctx, buffer[:count])

		// on error, just ignore the message
		if err != nil {
			continue
		}

		// emit the message and ignore any error; we'll notice ErrClosed
		// in the next ReadFrom call and stop the loop
		_, _ = dl.pconn.WriteTo(rawResp, addr)
	}
}

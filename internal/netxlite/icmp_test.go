package netxlite

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/jheddings/safenet/internal/model"
	"github.com/jheddings/safenet/internal/model/mocks"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

func mustMarshalICMP(t *testing.T, msg *icmp.Message) []byte {
	data, err := msg.Marshal(nil)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// quoteEchoRequest returns the IPv4 datagram an ICMP error message
// quotes when it refers to an echo request with the given id and seq.
func quoteEchoRequest(t *testing.T, dst net.IP, id, seq int) []byte {
	echo := mustMarshalICMP(t, &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{ID: id, Seq: seq},
	})
	hdr := &ipv4.Header{
		Version:  ipv4.Version,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + len(echo),
		TTL:      1,
		Protocol: icmpProtocolIPv4,
		Src:      net.IPv4(10, 0, 0, 2),
		Dst:      dst,
	}
	raw, err := hdr.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	return append(raw, echo...)
}

func TestEchoConnMatch(t *testing.T) {
	dstIP := net.IPv4(10, 0, 0, 1).To4()
	peer := &net.UDPAddr{IP: dstIP}

	newConn := func(privileged bool) *echoConn {
		return &echoConn{dstIP: dstIP, id: 1234, privileged: privileged}
	}

	reply := func(id, seq int) []byte {
		return mustMarshalICMP(t, &icmp.Message{
			Type: ipv4.ICMPTypeEchoReply,
			Body: &icmp.Echo{ID: id, Seq: seq, Data: []byte("abc")},
		})
	}

	t.Run("with the matching echo reply", func(t *testing.T) {
		matched, err := newConn(false).match(reply(1, 7), peer, 7)
		if err != nil {
			t.Fatal(err)
		}
		if !matched {
			t.Fatal("expected a match")
		}
	})

	t.Run("with another sequence number", func(t *testing.T) {
		matched, err := newConn(false).match(reply(1, 6), peer, 7)
		if err != nil || matched {
			t.Fatal("expected to ignore the reply", matched, err)
		}
	})

	t.Run("with another peer", func(t *testing.T) {
		other := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 9)}
		matched, err := newConn(false).match(reply(1, 7), other, 7)
		if err != nil || matched {
			t.Fatal("expected to ignore the reply", matched, err)
		}
	})

	t.Run("with another identifier on raw sockets", func(t *testing.T) {
		conn := newConn(true)
		matched, err := conn.match(reply(4321, 7), &net.IPAddr{IP: dstIP}, 7)
		if err != nil || matched {
			t.Fatal("expected to ignore the reply", matched, err)
		}
		matched, err = conn.match(reply(1234, 7), &net.IPAddr{IP: dstIP}, 7)
		if err != nil || !matched {
			t.Fatal("expected a match", matched, err)
		}
	})

	t.Run("with our own echo request", func(t *testing.T) {
		data := mustMarshalICMP(t, &icmp.Message{
			Type: ipv4.ICMPTypeEcho,
			Body: &icmp.Echo{ID: 1234, Seq: 7},
		})
		matched, err := newConn(true).match(data, &net.IPAddr{IP: dstIP}, 7)
		if err != nil || matched {
			t.Fatal("expected to ignore the request", matched, err)
		}
	})

	t.Run("with destination unreachable for our request", func(t *testing.T) {
		data := mustMarshalICMP(t, &icmp.Message{
			Type: ipv4.ICMPTypeDestinationUnreachable,
			Code: 1,
			Body: &icmp.DstUnreach{Data: quoteEchoRequest(t, dstIP, 1234, 7)},
		})
		_, err := newConn(true).match(data, &net.IPAddr{IP: net.IPv4(10, 0, 0, 254)}, 7)
		if !errors.Is(err, ErrICMPDestinationUnreachable) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("with destination unreachable for another request", func(t *testing.T) {
		data := mustMarshalICMP(t, &icmp.Message{
			Type: ipv4.ICMPTypeDestinationUnreachable,
			Code: 1,
			Body: &icmp.DstUnreach{Data: quoteEchoRequest(t, dstIP, 1234, 3)},
		})
		matched, err := newConn(true).match(data, &net.IPAddr{IP: net.IPv4(10, 0, 0, 254)}, 7)
		if err != nil || matched {
			t.Fatal("expected to ignore the message", matched, err)
		}
	})

	t.Run("with time exceeded for our request", func(t *testing.T) {
		data := mustMarshalICMP(t, &icmp.Message{
			Type: ipv4.ICMPTypeTimeExceeded,
			Body: &icmp.TimeExceeded{Data: quoteEchoRequest(t, dstIP, 1, 7)},
		})
		_, err := newConn(false).match(data, &net.UDPAddr{IP: net.IPv4(10, 0, 0, 254)}, 7)
		if !errors.Is(err, ErrICMPTTLExceeded) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("with a truncated message", func(t *testing.T) {
		_, err := newConn(false).match([]byte{0}, peer, 7)
		if !errors.Is(err, ErrICMPProtocol) {
			t.Fatal("unexpected error", err)
		}
	})
}

func TestEchoDialer(t *testing.T) {
	failingListen := func(network, address string) (*icmp.PacketConn, error) {
		return nil, errors.New("should not be called")
	}

	t.Run("rejects IPv6 addresses", func(t *testing.T) {
		d := &echoDialer{listen: failingListen, logger: model.DiscardLogger}
		conn, err := d.DialEcho(context.Background(), "::1", &model.EchoConfig{})
		if conn != nil {
			t.Fatal("expected nil conn")
		}
		if FailureOf(err) != FailureInvalidAddress {
			t.Fatal("unexpected failure", err)
		}
	})

	t.Run("with resolver failure", func(t *testing.T) {
		d := &echoDialer{
			listen: failingListen,
			logger: model.DiscardLogger,
			resolver: &mocks.Resolver{
				MockLookupHost: func(ctx context.Context, domain string) ([]string, error) {
					return nil, ErrOODNSNoSuchHost
				},
			},
		}
		_, err := d.DialEcho(context.Background(), "example.invalid", &model.EchoConfig{})
		var ew *ErrWrapper
		if !errors.As(err, &ew) {
			t.Fatal("not an ErrWrapper", err)
		}
		if ew.Failure != FailureDNSNXDOMAINError || ew.Operation != ResolveOperation {
			t.Fatal("unexpected wrapper", ew.Failure, ew.Operation)
		}
	})

	t.Run("without IPv4 addresses", func(t *testing.T) {
		d := &echoDialer{
			listen: failingListen,
			logger: model.DiscardLogger,
			resolver: &mocks.Resolver{
				MockLookupHost: func(ctx context.Context, domain string) ([]string, error) {
					return []string{"2001:db8::1"}, nil
				},
			},
		}
		_, err := d.DialEcho(context.Background(), "example.com", &model.EchoConfig{})
		if FailureOf(err) != FailureDNSNoAnswer {
			t.Fatal("unexpected failure", err)
		}
	})

	t.Run("with listen failure", func(t *testing.T) {
		var network string
		d := &echoDialer{
			listen: func(n, address string) (*icmp.PacketConn, error) {
				network = n
				return nil, os.NewSyscallError("socket", syscall.EPERM)
			},
			logger: model.DiscardLogger,
		}
		_, err := d.DialEcho(context.Background(), "127.0.0.1", &model.EchoConfig{Privileged: true})
		var ew *ErrWrapper
		if !errors.As(err, &ew) {
			t.Fatal("not an ErrWrapper", err)
		}
		if ew.Failure != FailurePermissionDenied || ew.Operation != ICMPListenOperation {
			t.Fatal("unexpected wrapper", ew.Failure, ew.Operation)
		}
		if network != "ip4:icmp" {
			t.Fatal("unexpected network", network)
		}
	})
}

func TestEchoDialerLoopback(t *testing.T) {
	if testing.Short() {
		t.Skip("skip test in short mode")
	}
	d := NewEchoDialer(model.DiscardLogger, NewResolverStdlib(model.DiscardLogger))
	conn, err := d.DialEcho(context.Background(), "127.0.0.1", &model.EchoConfig{TTL: 64, Size: 56})
	if FailureOf(err) == FailurePermissionDenied {
		t.Skip("datagram ICMP sockets are not permitted on this host")
	}
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rtt, err := conn.Echo(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if rtt <= 0 {
		t.Fatal("expected positive RTT")
	}
}

func TestEchoConnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn := &echoConn{dstIP: net.IPv4(127, 0, 0, 1), logger: model.DiscardLogger}
	_, err := conn.Echo(ctx, 0)
	if FailureOf(err) != FailureInterrupted {
		t.Fatal("unexpected failure", err)
	}
}

func TestEchoPayload(t *testing.T) {
	payload := echoPayload(56)
	if len(payload) != 56 {
		t.Fatal("unexpected length")
	}
	if len(echoPayload(0)) != 0 {
		t.Fatal("expected empty payload")
	}
}

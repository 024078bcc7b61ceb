package netxlite

//
// ICMP echo using golang.org/x/net/icmp
//

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/jheddings/safenet/internal/model"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// icmpProtocolIPv4 is the IANA protocol number of ICMP for IPv4.
const icmpProtocolIPv4 = 1

// NewEchoDialer creates a new model.EchoDialer that resolves
// destinations using the given resolver.
func NewEchoDialer(logger model.Logger, resolver model.Resolver) model.EchoDialer {
	return &echoDialer{
		listen:   icmp.ListenPacket,
		logger:   model.ValidLoggerOrDefault(logger),
		resolver: resolver,
	}
}

// echoDialer implements model.EchoDialer.
type echoDialer struct {
	listen   func(network, address string) (*icmp.PacketConn, error)
	logger   model.Logger
	resolver model.Resolver
}

var _ model.EchoDialer = &echoDialer{}

// DialEcho implements model.EchoDialer.
func (d *echoDialer) DialEcho(ctx context.Context, address string, config *model.EchoConfig) (model.EchoConn, error) {
	ip, err := d.lookupIPv4(ctx, address)
	if err != nil {
		return nil, err
	}
	network := "udp4"
	var dst net.Addr = &net.UDPAddr{IP: ip}
	if config.Privileged {
		network = "ip4:icmp"
		dst = &net.IPAddr{IP: ip}
	}
	d.logger.Debugf("icmp_listen %s for %s...", network, ip)
	conn, err := d.listen(network, "0.0.0.0")
	if err != nil {
		d.logger.Debugf("icmp_listen %s for %s... %s", network, ip, err)
		return nil, NewErrWrapper(ClassifyICMPError, ICMPListenOperation, err)
	}
	if config.TTL > 0 {
		if err := conn.IPv4PacketConn().SetTTL(config.TTL); err != nil {
			conn.Close()
			return nil, NewErrWrapper(ClassifyICMPError, ICMPListenOperation, err)
		}
	}
	d.logger.Debugf("icmp_listen %s for %s... ok", network, ip)
	ec := &echoConn{
		conn:       conn,
		dst:        dst,
		dstIP:      ip,
		id:         rand.IntN(1 << 16),
		logger:     d.logger,
		payload:    echoPayload(config.Size),
		privileged: config.Privileged,
	}
	return ec, nil
}

// lookupIPv4 returns the first IPv4 address of address.
func (d *echoDialer) lookupIPv4(ctx context.Context, address string) (net.IP, error) {
	if ip := net.ParseIP(address); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
		return nil, NewErrWrapper(func(error) string { return FailureInvalidAddress },
			ResolveOperation, fmt.Errorf("not an IPv4 address: %s", address))
	}
	addrs, err := d.resolver.LookupHost(ctx, address)
	if err != nil {
		return nil, NewErrWrapper(ClassifyResolverError, ResolveOperation, err)
	}
	for _, addr := range addrs {
		if ip := net.ParseIP(addr); ip != nil && ip.To4() != nil {
			return ip.To4(), nil
		}
	}
	return nil, NewErrWrapper(ClassifyResolverError, ResolveOperation, ErrOODNSNoAnswer)
}

// echoPayload returns a payload of the given size.
func echoPayload(size int) []byte {
	payload := make([]byte, size)
	for idx := range payload {
		payload[idx] = byte(idx)
	}
	return payload
}

// echoConn implements model.EchoConn.
type echoConn struct {
	conn       *icmp.PacketConn
	dst        net.Addr
	dstIP      net.IP
	id         int
	logger     model.Logger
	payload    []byte
	privileged bool
}

var _ model.EchoConn = &echoConn{}

// aLongTimeAgo is a deadline that makes pending reads return immediately.
var aLongTimeAgo = time.Unix(1, 0)

// Echo implements model.EchoConn.
func (c *echoConn) Echo(ctx context.Context, seq int) (time.Duration, error) {
	rtt, err := c.echo(ctx, seq&0xffff)
	if err != nil {
		c.logger.Debugf("icmp_echo %s seq=%d... %s", c.dstIP, seq, err)
		return 0, NewErrWrapper(ClassifyICMPError, ICMPEchoOperation, err)
	}
	c.logger.Debugf("icmp_echo %s seq=%d... ok in %s", c.dstIP, seq, rtt)
	return rtt, nil
}

func (c *echoConn) echo(ctx context.Context, seq int) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: c.id, Seq: seq, Data: c.payload},
	}
	data, err := msg.Marshal(nil)
	if err != nil {
		return 0, err
	}
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(aLongTimeAgo)
	})
	defer stop()
	start := time.Now()
	if _, err := c.conn.WriteTo(data, c.dst); err != nil {
		return 0, err
	}
	buffer := make([]byte, 1500+len(c.payload))
	for {
		count, peer, err := c.conn.ReadFrom(buffer)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, ctxErr
			}
			return 0, err
		}
		rtt := time.Since(start)
		matched, err := c.match(buffer[:count], peer, seq)
		if err != nil {
			return 0, err
		}
		if matched {
			return rtt, nil
		}
	}
}

// match tells whether data is the reply to the echo request with the
// given sequence number. It returns an error when data is an ICMP error
// message about that request or when it cannot be parsed.
func (c *echoConn) match(data []byte, peer net.Addr, seq int) (bool, error) {
	msg, err := icmp.ParseMessage(icmpProtocolIPv4, data)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrICMPProtocol, err.Error())
	}
	switch msg.Type {
	case ipv4.ICMPTypeEchoReply:
		echo, ok := msg.Body.(*icmp.Echo)
		if !ok {
			return false, ErrICMPProtocol
		}
		if !c.fromDestination(peer) || echo.Seq != seq {
			return false, nil
		}
		// datagram sockets rewrite the identifier with the local port
		if c.privileged && echo.ID != c.id {
			return false, nil
		}
		return true, nil
	case ipv4.ICMPTypeDestinationUnreachable:
		if body, ok := msg.Body.(*icmp.DstUnreach); ok && c.quotesRequest(body.Data, seq) {
			return false, ErrICMPDestinationUnreachable
		}
		return false, nil
	case ipv4.ICMPTypeTimeExceeded:
		if body, ok := msg.Body.(*icmp.TimeExceeded); ok && c.quotesRequest(body.Data, seq) {
			return false, ErrICMPTTLExceeded
		}
		return false, nil
	default:
		// includes our own requests looping back on raw sockets
		return false, nil
	}
}

// fromDestination tells whether peer is the address we are pinging.
func (c *echoConn) fromDestination(peer net.Addr) bool {
	switch addr := peer.(type) {
	case *net.UDPAddr:
		return addr.IP.Equal(c.dstIP)
	case *net.IPAddr:
		return addr.IP.Equal(c.dstIP)
	default:
		return false
	}
}

// quotesRequest tells whether the original datagram quoted by an ICMP
// error message is our echo request with the given sequence number.
func (c *echoConn) quotesRequest(quoted []byte, seq int) bool {
	if len(quoted) < ipv4.HeaderLen {
		return false
	}
	hdrlen := int(quoted[0]&0x0f) << 2
	if hdrlen < ipv4.HeaderLen || len(quoted) < hdrlen+8 {
		return false
	}
	if !net.IP(quoted[16:20]).Equal(c.dstIP) {
		return false
	}
	inner := quoted[hdrlen:]
	if inner[0] != byte(ipv4.ICMPTypeEcho) {
		return false
	}
	if c.privileged && int(binary.BigEndian.Uint16(inner[4:6])) != c.id {
		return false
	}
	return int(binary.BigEndian.Uint16(inner[6:8])) == seq
}

// Close implements model.EchoConn.
func (c *echoConn) Close() error {
	return c.conn.Close()
}

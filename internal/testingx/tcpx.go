package testingx

import (
	"errors"
	"net"
	"sync"

	"github.com/jheddings/safenet/internal/runtimex"
)

// TCPListener creates TCP listeners.
type TCPListener interface {
	ListenTCP(network string, addr *net.TCPAddr) (net.Listener, error)
}

// TCPListenerStdlib implements [TCPListener] for the stdlib.
type TCPListenerStdlib struct{}

var _ TCPListener = &TCPListenerStdlib{}

// ListenTCP implements TCPListener.
func (*TCPListenerStdlib) ListenTCP(network string, addr *net.TCPAddr) (net.Listener, error) {
	return net.ListenTCP(network, addr)
}

// TCPAcceptor accepts TCP connections and closes them immediately. The
// zero value of this struct is invalid, please use [MustNewTCPAcceptor].
type TCPAcceptor struct {
	closeOnce sync.Once
	listener  net.Listener
	wg        sync.WaitGroup
}

// MustNewTCPAcceptor creates a new [TCPAcceptor] listening on addr
// using the given [TCPListener]. This function PANICS on failure.
func MustNewTCPAcceptor(addr *net.TCPAddr, tl TCPListener) *TCPAcceptor {
	listener := runtimex.Try1(tl.ListenTCP("tcp", addr))
	ta := &TCPAcceptor{
		closeOnce: sync.Once{},
		listener:  listener,
		wg:        sync.WaitGroup{},
	}
	ta.wg.Add(1)
	go ta.mainloop()
	return ta
}

// Addr returns the listening address.
func (ta *TCPAcceptor) Addr() *net.TCPAddr {
	return ta.listener.Addr().(*net.TCPAddr)
}

// Close implements io.Closer.
func (ta *TCPAcceptor) Close() (err error) {
	ta.closeOnce.Do(func() {
		err = ta.listener.Close()
		ta.wg.Wait()
	})
	return err
}

func (ta *TCPAcceptor) mainloop() {
	defer ta.wg.Done()
	for {
		conn, err := ta.listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			continue
		}
		tcpMaybeResetNetConn(conn)
	}
}

// MustNewClosedTCPAddr returns a loopback address on which nobody is
// listening, obtained by listening on an ephemeral port and closing
// the listener. This function PANICS on failure.
func MustNewClosedTCPAddr(tl TCPListener) *net.TCPAddr {
	listener := runtimex.Try1(tl.ListenTCP("tcp", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}))
	addr := listener.Addr().(*net.TCPAddr)
	runtimex.Try0(listener.Close())
	return addr
}

// tcpMaybeResetNetConn is a portable mechanism to reset a net.Conn.
func tcpMaybeResetNetConn(conn net.Conn) {
	// let's try to get the controller for disabling linger
	type connLingerSetter interface {
		SetLinger(sec int) error
	}
	if setter, good := conn.(connLingerSetter); good {
		setter.SetLinger(0)
	}

	// close the conn to trigger the reset
	conn.Close()
}

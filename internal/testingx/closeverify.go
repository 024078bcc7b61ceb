package testingx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/jheddings/safenet/internal/model"
	"github.com/jheddings/safenet/internal/runtimex"
)

// CloseVerify verifies that we're closing all connections.
//
// The zero value of this struct is ready to use.
type CloseVerify struct {
	mu     sync.Mutex
	conns  map[string]io.Closer
	opened int
}

func (cv *CloseVerify) addConn(key string, closer io.Closer) {
	defer cv.mu.Unlock()
	cv.mu.Lock()
	if cv.conns == nil {
		cv.conns = make(map[string]io.Closer)
	}
	_, good := cv.conns[key]
	runtimex.Assert(!good, fmt.Sprintf("we're already tracking: %s", key))
	cv.conns[key] = closer
	cv.opened++
}

func (cv *CloseVerify) removeConn(key string) {
	defer cv.mu.Unlock()
	cv.mu.Lock()
	_, good := cv.conns[key]
	runtimex.Assert(good, fmt.Sprintf("we're not tracking: %s", key))
	delete(cv.conns, key)
}

// CheckForOpenConns returns an error if we still have some open connections.
func (cv *CloseVerify) CheckForOpenConns() error {
	defer cv.mu.Unlock()
	cv.mu.Lock()
	var errorv []error
	for key := range cv.conns {
		errorv = append(errorv, fmt.Errorf("%s has not been closed", key))
	}
	return errors.Join(errorv...) // returns nil if empty
}

// Opened returns the number of connections opened so far.
func (cv *CloseVerify) Opened() int {
	defer cv.mu.Unlock()
	cv.mu.Lock()
	return cv.opened
}

// WrapDialer returns a [model.Dialer] that communicates sockets
// open and close events to the [*CloseVerify] struct.
func (cv *CloseVerify) WrapDialer(dialer model.Dialer) model.Dialer {
	return &closeVerifyDialer{Dialer: dialer, cv: cv}
}

type closeVerifyDialer struct {
	model.Dialer
	cv *CloseVerify
}

// DialContext implements model.Dialer.
func (d *closeVerifyDialer) DialContext(
	ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}

	localAddr := conn.LocalAddr()
	key := fmt.Sprintf("%s/%s", localAddr.String(), localAddr.Network())
	conn = &closeVerifyConn{
		Conn: conn,
		cv:   d.cv,
		key:  key,
		once: sync.Once{},
	}

	d.cv.addConn(key, conn)

	return conn, nil
}

type closeVerifyConn struct {
	net.Conn
	cv   *CloseVerify
	key  string
	once sync.Once
}

func (c *closeVerifyConn) Close() (err error) {
	c.once.Do(func() {
		c.cv.removeConn(c.key)
		err = c.Conn.Close()
	})
	return
}

// WrapEchoDialer returns a [model.EchoDialer] that communicates ICMP
// sockets open and close events to the [*CloseVerify] struct.
func (cv *CloseVerify) WrapEchoDialer(dialer model.EchoDialer) model.EchoDialer {
	return &closeVerifyEchoDialer{EchoDialer: dialer, cv: cv}
}

type closeVerifyEchoDialer struct {
	model.EchoDialer
	cv *CloseVerify
}

// DialEcho implements model.EchoDialer.
func (d *closeVerifyEchoDialer) DialEcho(
	ctx context.Context, address string, config *model.EchoConfig) (model.EchoConn, error) {
	conn, err := d.EchoDialer.DialEcho(ctx, address, config)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/icmp/%p", address, conn)
	conn = &closeVerifyEchoConn{
		EchoConn: conn,
		cv:       d.cv,
		key:      key,
		once:     sync.Once{},
	}

	d.cv.addConn(key, conn)

	return conn, nil
}

type closeVerifyEchoConn struct {
	model.EchoConn
	cv   *CloseVerify
	key  string
	once sync.Once
}

// Echo implements model.EchoConn.
func (c *closeVerifyEchoConn) Echo(ctx context.Context, seq int) (time.Duration, error) {
	return c.EchoConn.Echo(ctx, seq)
}

func (c *closeVerifyEchoConn) Close() (err error) {
	c.once.Do(func() {
		c.cv.removeConn(c.key)
		err = c.EchoConn.Close()
	})
	return
}

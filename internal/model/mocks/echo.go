package mocks

import (
	"context"
	"time"

	"github.com/jheddings/safenet/internal/model"
)

// EchoDialer is a mockable EchoDialer.
type EchoDialer struct {
	MockDialEcho func(ctx context.Context, address string, config *model.EchoConfig) (model.EchoConn, error)
}

// DialEcho calls MockDialEcho.
func (d *EchoDialer) DialEcho(ctx context.Context, address string, config *model.EchoConfig) (model.EchoConn, error) {
	return d.MockDialEcho(ctx, address, config)
}

// EchoConn is a mockable EchoConn.
type EchoConn struct {
	MockEcho  func(ctx context.Context, seq int) (time.Duration, error)
	MockClose func() error
}

// Echo calls MockEcho.
func (c *EchoConn) Echo(ctx context.Context, seq int) (time.Duration, error) {
	return c.MockEcho(ctx, seq)
}

// Close calls MockClose.
func (c *EchoConn) Close() error {
	return c.MockClose()
}

var (
	_ model.EchoDialer = &EchoDialer{}
	_ model.EchoConn   = &EchoConn{}
)

package simulator

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/kilianp07/mineguard/core/protocol"
)

const dialTimeout = 3 * time.Second

// Client streams batches to the ingest server over one TCP connection.
// It is not safe for concurrent use.
type Client struct {
	addr string
	conn net.Conn
}

// NewClient returns a disconnected client for addr (host:port).
func NewClient(addr string) *Client { return &Client{addr: addr} }

// Addr returns the server address.
func (c *Client) Addr() string { return c.addr }

// Connected reports whether a connection is open.
func (c *Client) Connected() bool { return c.conn != nil }

// Connect opens the connection if it is not already open.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.addr, err)
	}
	c.conn = conn
	return nil
}

// Reconnect drops the current connection and dials again.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	return c.Connect(ctx)
}

// Send writes b as one frame. A failed write closes the connection.
func (c *Client) Send(b protocol.Batch) error {
	if c.conn == nil {
		return fmt.Errorf("send to %s: not connected", c.addr)
	}
	payload, err := protocol.EncodeBatch(b)
	if err != nil {
		return err
	}
	if err := protocol.WriteFrame(c.conn, payload); err != nil {
		_ = c.Close()
		return err
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

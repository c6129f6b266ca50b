package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	keepAlive      = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one open connection of a user. The hub queues encoded messages
// on send and Run writes them out in order.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	userID string
	send   chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Run serves the connection until the peer leaves, a write fails or ctx ends.
// The connection is push-only: frames from the peer are discarded.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx = c.conn.CloseRead(ctx)
	if err := c.deliver(ctx); err != nil && ctx.Err() == nil {
		c.hub.logger.Debug("Websocket delivery stopped", "user_id", c.userID, "error", err)
	}
}

func (c *Client) deliver(ctx context.Context) error {
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-c.send:
			if !ok {
				return nil
			}
			if err := c.withTimeout(ctx, func(ctx context.Context) error {
				return c.conn.Write(ctx, ws.MessageText, msg)
			}); err != nil {
				return err
			}
		case <-ticker.C:
			if err := c.withTimeout(ctx, c.conn.Ping); err != nil {
				return err
			}
		}
	}
}

func (c *Client) withTimeout(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return op(ctx)
}

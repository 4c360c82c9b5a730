package bus

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// Client adapts a NATS connection to the core.EventBus contract.
type Client struct {
	nc *nats.Conn
}

// Connect dials a NATS server.
func Connect(url string) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.Name("fusioncoder"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return &Client{nc: nc}, nil
}

// Publish implements core.EventBus.
func (c *Client) Publish(topic string, data []byte) error {
	return c.nc.Publish(topic, data)
}

// Subscribe implements core.EventBus. The returned function cancels the
// subscription.
func (c *Client) Subscribe(topic string, handler func(data []byte)) (func() error, error) {
	sub, err := c.nc.Subscribe(topic, func(m *nats.Msg) {
		handler(m.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	return sub.Unsubscribe, nil
}

// Flush waits until all published messages reached the server.
func (c *Client) Flush() error { return c.nc.Flush() }

// Close drains pending messages and closes the connection.
func (c *Client) Close() {
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
	}
}

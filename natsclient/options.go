package natsclient

import "log/slog"

// Option configures a Client at construction time.
type Option func(*Client) error

// WithLogger sets the structured logger the client reports through.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithName sets the connection name visible to the NATS server.
func WithName(name string) Option {
	return func(c *Client) error {
		if name != "" {
			c.clientName = name
		}
		return nil
	}
}

// WithMaxReconnects bounds reconnect attempts; negative means unlimited.
func WithMaxReconnects(n int) Option {
	return func(c *Client) error {
		c.maxReconnects = n
		return nil
	}
}

package natsclient

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/danyill/oscd-subscriber-lb-siemens/errors"
)

// Client manages one NATS connection and the subscriptions made through it.
type Client struct {
	url    string
	logger *slog.Logger

	clientName    string
	maxReconnects int

	conn *nats.Conn
	subs []*nats.Subscription

	mu     sync.RWMutex
	closed bool
}

// NewClient creates an unconnected client for the given server URL.
func NewClient(url string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Client", "NewClient", "server URL required")
	}

	c := &Client{
		url:           url,
		logger:        slog.Default(),
		clientName:    "sclsub",
		maxReconnects: -1, // reconnect until stopped
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapInvalid(err, "Client", "NewClient", "apply option")
		}
	}
	return c, nil
}

// Connect dials the server. Reconnects are handled by the underlying
// connection; the edit bus tolerates gaps because every event is
// self-contained.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.WrapFatal(errors.ErrShuttingDown, "Client", "Connect", "client closed")
	}
	if c.conn != nil {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Client", "Connect", "already connected")
	}

	opts := []nats.Option{
		nats.Name(c.clientName),
		nats.MaxReconnects(c.maxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.logger.Warn("NATS disconnected", "component", "natsclient", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.logger.Info("NATS reconnected", "component", "natsclient", "url", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(c.url, opts...)
	if err != nil {
		return errors.WrapTransient(err, "Client", "Connect", "dial "+c.url)
	}
	c.conn = conn

	c.logger.Info("connected to NATS", "component", "natsclient", "url", c.url)

	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()
	return nil
}

// Connected reports whether the connection is currently up.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Publish sends data on a subject.
func (c *Client) Publish(_ context.Context, subject string, data []byte) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return errors.WrapTransient(errors.ErrNoConnection, "Client", "Publish", "publish to "+subject)
	}
	if err := conn.Publish(subject, data); err != nil {
		return errors.WrapTransient(err, "Client", "Publish", "publish to "+subject)
	}
	return nil
}

// Subscribe registers a handler for a subject. Handlers run on the
// connection's delivery goroutine, which preserves the host's emission
// order per subject.
func (c *Client) Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errors.WrapTransient(errors.ErrNoConnection, "Client", "Subscribe", "subscribe to "+subject)
	}

	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(ctx, msg.Data)
	})
	if err != nil {
		return errors.WrapTransient(errors.ErrSubscriptionFailed, "Client", "Subscribe", "subscribe to "+subject)
	}
	c.subs = append(c.subs, sub)

	c.logger.Debug("subscribed", "component", "natsclient", "subject", subject)
	return nil
}

// Close drains the subscriptions and closes the connection. Safe to call
// more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil

	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			c.conn.Close()
		}
		c.conn = nil
	}

	c.logger.Info("NATS client closed", "component", "natsclient")
	return nil
}

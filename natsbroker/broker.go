// Package natsbroker adapts a running broker's control-plane subjects to the
// controller's Broker interface using NATS request/reply.
package natsbroker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/natsconf/errors"
	"github.com/c360/natsconf/types"
)

// Defaults for the control-plane client.
const (
	DefaultSubjectPrefix  = "$NATSCONF"
	DefaultRequestTimeout = 5 * time.Second

	reconfigureSuffix = ".RECONFIGURE"
	infoSuffix        = ".INFO"
)

// Client issues reconfigure and runtime-info requests to the broker process.
type Client struct {
	conn    *nats.Conn
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithSubjectPrefix overrides the control-plane subject prefix.
func WithSubjectPrefix(prefix string) Option {
	return func(c *Client) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithRequestTimeout sets the default timeout applied when the caller's
// context carries no deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a control-plane client over an established NATS connection.
func New(conn *nats.Conn, opts ...Option) (*Client, error) {
	if conn == nil {
		return nil, errors.WrapInvalid(errors.ErrNoConnection, "Client", "New", "check connection")
	}

	c := &Client{
		conn:    conn,
		prefix:  DefaultSubjectPrefix,
		timeout: DefaultRequestTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// reconfigureReply is the broker's answer to a reconfigure request.
type reconfigureReply struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Reconfigure sends the proposed configuration to the broker and waits for its
// verdict.
func (c *Client) Reconfigure(ctx context.Context, cfg *types.Configuration) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrNilConfig, "Client", "Reconfigure", "check configuration")
	}
	if !c.conn.IsConnected() {
		return errors.WrapTransient(errors.ErrNoConnection, "Client", "Reconfigure", "check connection")
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return errors.WrapFatal(err, "Client", "Reconfigure", "marshal configuration")
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	msg, err := c.conn.RequestWithContext(ctx, c.prefix+reconfigureSuffix, payload)
	if err != nil {
		if ctx.Err() != nil {
			return errors.WrapTransient(errors.ErrBrokerTimeout, "Client", "Reconfigure", "await broker reply")
		}
		return errors.WrapTransient(err, "Client", "Reconfigure", "request reconfigure")
	}

	var reply reconfigureReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return errors.WrapInvalid(err, "Client", "Reconfigure", "decode broker reply")
	}
	if !reply.Success {
		c.logger.Warn("broker rejected reconfigure", "reason", reply.Error)
		return errors.WrapInvalid(errors.ErrBrokerRejected, "Client", "Reconfigure", reply.Error)
	}

	c.logger.Debug("broker accepted reconfigure")
	return nil
}

// RuntimeInfo queries the broker's self-reported runtime state.
func (c *Client) RuntimeInfo(ctx context.Context) (*types.RuntimeInfo, error) {
	if !c.conn.IsConnected() {
		return nil, errors.WrapTransient(errors.ErrNoConnection, "Client", "RuntimeInfo", "check connection")
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	msg, err := c.conn.RequestWithContext(ctx, c.prefix+infoSuffix, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.WrapTransient(errors.ErrBrokerTimeout, "Client", "RuntimeInfo", "await broker reply")
		}
		return nil, errors.WrapTransient(err, "Client", "RuntimeInfo", "request runtime info")
	}

	var info types.RuntimeInfo
	if err := json.Unmarshal(msg.Data, &info); err != nil {
		return nil, errors.WrapInvalid(err, "Client", "RuntimeInfo", "decode runtime info")
	}
	return &info, nil
}

// withDeadline applies the client default timeout when the caller's context
// carries no deadline.
func (c *Client) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

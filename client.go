package cordial

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-metrics"
	"github.com/raskyld/cordial/pkg/relay"
)

const (
	// DefaultConnIDMin and DefaultConnIDMax bound the default
	// connection identifier range. Zero is reserved for "no
	// connection", so allocation starts at one.
	DefaultConnIDMin = 1
	DefaultConnIDMax = 1 << 16
)

// Client is the entry point a connection listener holds: the sending end
// of a coordinator's command queue plus the allocator connection
// identifiers are drawn from.
//
// A single *Client is shared by every acceptor goroutine; all methods
// are safe for concurrent use.
type Client struct {
	cmds   *relay.Sender[Command]
	ids    *IDAllocator
	logger *slog.Logger
	msink  metrics.MetricSink
	labels []metrics.Label
}

// NewClient wraps the sending end of a coordinator's command queue.
func NewClient(cmds *relay.Sender[Command], opts ...Option) (*Client, error) {
	cfg := config{
		idLo: DefaultConnIDMin,
		idHi: DefaultConnIDMax,
	}
	for _, opt := range opts {
		err := opt(&cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCfg, err)
		}
	}

	c := &Client{cmds: cmds}

	// Logging implementations.
	if cfg.logHandler != nil {
		c.logger = slog.New(cfg.logHandler)
	} else {
		c.logger = slog.Default()
	}

	// Metrics implementations.
	if cfg.msink == nil {
		cfg.msink = metrics.Default()
	}
	c.msink = cfg.msink
	c.labels = cfg.metricLabels

	ids, err := NewIDAllocator(cfg.idLo, cfg.idHi)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCfg, err)
	}
	c.ids = ids

	c.logger.Debug(
		"coordinator client ready",
		slog.Uint64("conn_id_min", uint64(cfg.idLo)),
		slog.Uint64("conn_id_max", uint64(cfg.idHi)),
	)
	return c, nil
}

// NewConn mints a client bound to a fresh connection identifier. This is
// the only fallible operation on Client: it surfaces [ErrIDExhausted]
// when every identifier in the range belongs to a live connection.
func (c *Client) NewConn() (*ConnClient, error) {
	id, err := c.ids.Alloc()
	if err != nil {
		c.msink.IncrCounterWithLabels(MetricCordialConnExhaustedCount, 1.0, c.labels)
		return nil, err
	}
	c.msink.SetGaugeWithLabels(MetricCordialConnsActive, float32(c.ids.Live()), c.labels)
	c.logger.Debug("connection minted", LabelConnID.L(id))
	return &ConnClient{connID: id, owner: c}, nil
}

// submit is the single path commands take to the coordinator. A severed
// queue means the coordinator vanished while clients were still alive,
// which is a shutdown-ordering violation nothing above this layer can
// repair.
func (c *Client) submit(cmd Command) {
	err := c.cmds.Send(cmd)
	if err != nil {
		panic(panicCoordinatorGone)
	}
	c.msink.IncrCounterWithLabels(
		MetricCordialCommandOutCount,
		1.0,
		append(c.labels, LabelCommand.M(cmd.Kind())),
	)
	c.msink.SetGaugeWithLabels(MetricCordialCommandQueueDepth, float32(c.cmds.Len()), c.labels)
}

// ConnClient is a Client bound to one allocated connection identifier.
//
// The identifier is owned: exactly one of Startup (which moves ownership
// into the SessionClient it returns) or Close (which releases it) must
// consume the ConnClient.
type ConnClient struct {
	connID  uint32
	owner   *Client
	release sync.Once
}

// ConnID returns the connection identifier this client owns.
func (cc *ConnClient) ConnID() uint32 {
	return cc.connID
}

// Startup performs the session handshake. The session is stamped with
// this connection's identifier, a fresh cancellation signal pair is
// created, and both travel to the coordinator.
//
// On success the returned SessionClient owns the session and the
// identifier; the ConnClient must not be used further. On failure the
// identifier has already been released and no live SessionClient exists,
// so the caller can discard everything without further teardown.
func (cc *ConnClient) Startup(sess *Session) (*SessionClient, *StartupResponse, error) {
	sig := relay.NewSignal(NotCancelled)
	sess.setConnID(cc.connID)
	sc := &SessionClient{
		conn:    cc,
		session: sess,
		cancel:  sig,
		logger:  cc.owner.logger.With(LabelConnID.L(cc.connID)),
	}

	resp, err := request(sc, func(sess *Session, reply *relay.Slot[Response[*StartupResponse]]) Command {
		return &StartupCommand{Session: sess, Cancel: sig, Reply: reply}
	})
	if err != nil {
		// The coordinator handed the session back with the refusal.
		// Detach it and mark the client consumed so that discarding it
		// stays silent, then release the identifier.
		sc.session = nil
		sc.terminated = true
		cc.owner.msink.IncrCounterWithLabels(MetricCordialStartupErrorCount, 1.0, cc.owner.labels)
		cc.owner.logger.Warn(
			"session startup failed",
			LabelConnID.L(cc.connID),
			LabelError.L(err),
		)
		cc.Close()
		return nil, nil, err
	}

	cc.owner.msink.IncrCounterWithLabels(MetricCordialStartupCount, 1.0, cc.owner.labels)
	sc.logger.Debug("session started", LabelUser.L(sc.session.User()))
	return sc, resp, nil
}

// CancelRequest asks the coordinator to cancel whatever operation the
// target connection currently runs. It is fire-and-forget and carries no
// session: in the wire protocol above this layer, cancellation arrives
// on a dedicated connection that never completes a startup handshake.
func (cc *ConnClient) CancelRequest(connID uint32, secretKey uint32) {
	cc.owner.logger.Info("requesting cancellation", LabelConnID.L(connID))
	cc.owner.submit(&CancelRequestCommand{ConnID: connID, SecretKey: secretKey})
	cc.owner.msink.IncrCounterWithLabels(MetricCordialCancelOutCount, 1.0, cc.owner.labels)
}

// Close releases the connection identifier back to the allocator. Only
// the first call has any effect. Every ConnClient that never went
// through Startup must be closed.
func (cc *ConnClient) Close() {
	cc.release.Do(func() {
		cc.owner.ids.Free(cc.connID)
		cc.owner.msink.SetGaugeWithLabels(MetricCordialConnsActive, float32(cc.owner.ids.Live()), cc.owner.labels)
		cc.owner.logger.Debug("connection released", LabelConnID.L(cc.connID))
	})
}

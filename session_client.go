package cordial

import (
	"context"
	"log/slog"

	"github.com/raskyld/cordial/pkg/relay"
)

// SessionClient is a ConnClient whose startup handshake completed. It
// owns the session value and the read side of the connection's
// cancellation signal, and it must be consumed by Terminate before being
// discarded.
//
// Request methods move the session to the coordinator and suspend until
// the reply restores it, so they must not be called concurrently: one
// request at a time per client. Canceled and ResetCanceled only touch
// the signal and are safe to call from other goroutines while a request
// is in flight.
type SessionClient struct {
	conn       *ConnClient
	session    *Session
	cancel     *relay.Signal[CancelState]
	terminated bool
	logger     *slog.Logger
}

// request implements the exchange every session-bearing method follows:
// move the session out, send the command with a fresh single-use reply
// slot, suspend until the reply arrives, restore the session, yield the
// result. The session is away only inside this function; callers never
// observe the gap.
func request[T any](sc *SessionClient, build func(sess *Session, reply *relay.Slot[Response[T]]) Command) (T, error) {
	sess := sc.take()
	reply := relay.NewSlot[Response[T]]()
	sc.conn.owner.submit(build(sess, reply))

	resp, ok := reply.Await()
	if !ok {
		panic(panicReplyDropped)
	}
	if resp.Session == nil {
		panic(panicNoSessionBack)
	}
	sc.session = resp.Session
	return resp.Result, resp.Err
}

// take moves the session out for one in-flight request, asserting the
// client is in a state where it owns one.
func (sc *SessionClient) take() *Session {
	if sc.terminated {
		panic(panicUsedAfterTerminate)
	}
	if sc.session == nil {
		panic(panicSessionInFlight)
	}
	sess := sc.session
	sc.session = nil
	return sess
}

// ConnID returns the connection identifier this session runs on.
func (sc *SessionClient) ConnID() uint32 {
	return sc.conn.connID
}

// Session exposes the owned session for inspection between requests.
func (sc *SessionClient) Session() *Session {
	if sc.terminated {
		panic(panicUsedAfterTerminate)
	}
	if sc.session == nil {
		panic(panicSessionInFlight)
	}
	return sc.session
}

// Describe registers a named prepared statement. A nil stmt asks the
// coordinator to describe the statement already registered under name.
func (sc *SessionClient) Describe(name string, stmt *Statement, types []ParamType) error {
	sc.logger.Debug("describe", LabelStatement.L(name))
	_, err := request(sc, func(sess *Session, reply *relay.Slot[Response[Ack]]) Command {
		return &DescribeCommand{
			Name:       name,
			Stmt:       stmt,
			ParamTypes: types,
			Session:    sess,
			Reply:      reply,
		}
	})
	return err
}

// Declare binds a statement plus parameter hints to a named portal.
func (sc *SessionClient) Declare(name string, stmt Statement, types []ParamType) error {
	sc.logger.Debug("declare", LabelPortal.L(name))
	_, err := request(sc, func(sess *Session, reply *relay.Slot[Response[Ack]]) Command {
		return &DeclareCommand{
			Name:       name,
			Stmt:       stmt,
			ParamTypes: types,
			Session:    sess,
			Reply:      reply,
		}
	})
	return err
}

// Execute runs a previously declared portal.
func (sc *SessionClient) Execute(portal string) (*ExecuteResponse, error) {
	sc.logger.Debug("execute", LabelPortal.L(portal))
	return request(sc, func(sess *Session, reply *relay.Slot[Response[*ExecuteResponse]]) Command {
		return &ExecuteCommand{Portal: portal, Session: sess, Reply: reply}
	})
}

// EndTransaction closes the current transaction with the given action.
func (sc *SessionClient) EndTransaction(action EndTransactionAction) (*ExecuteResponse, error) {
	sc.logger.Debug("end transaction", slog.String("action", action.String()))
	return request(sc, func(sess *Session, reply *relay.Slot[Response[*ExecuteResponse]]) Command {
		return &EndTransactionCommand{Action: action, Session: sess, Reply: reply}
	})
}

// DumpCatalog returns a snapshot of coordinator-visible schema state,
// serialized as text for debugging.
func (sc *SessionClient) DumpCatalog() (string, error) {
	return request(sc, func(sess *Session, reply *relay.Slot[Response[string]]) Command {
		return &DumpCatalogCommand{Session: sess, Reply: reply}
	})
}

// CancelRequest targets another connection's in-flight operation. See
// [ConnClient.CancelRequest].
func (sc *SessionClient) CancelRequest(connID uint32, secretKey uint32) {
	sc.conn.CancelRequest(connID, secretKey)
}

// Canceled suspends the caller until the connection's cancellation
// signal reads Cancelled, or ctx ends. The signal delivers "the value
// changed", not "the value is Cancelled", so wakeups that observe
// NotCancelled are looped on.
func (sc *SessionClient) Canceled(ctx context.Context) error {
	for {
		ch := sc.cancel.Changed()
		if sc.cancel.Get() == Cancelled {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// ResetCanceled rearms the signal so an already-delivered cancellation
// does not bleed into the next statement.
func (sc *SessionClient) ResetCanceled() {
	sc.cancel.Set(NotCancelled)
}

// Terminate hands the session back to the coordinator for good and
// consumes the client. No reply is awaited. Queue order guarantees the
// coordinator observes this Terminate before any command from a later
// connection that reuses the identifier.
func (sc *SessionClient) Terminate() {
	sess := sc.take()
	sc.terminated = true
	sc.conn.owner.submit(&TerminateCommand{Session: sess})
	sc.conn.owner.msink.IncrCounterWithLabels(MetricCordialTerminateCount, 1.0, sc.conn.owner.labels)
	sc.logger.Debug("session terminated")
	sc.conn.Close()
}

// Close is the teardown assertion point, meant to be deferred at
// connection scope. Discarding a SessionClient that was never consumed
// by Terminate is a logic defect and panics; after Terminate, or after a
// failed startup, Close is a no-op.
func (sc *SessionClient) Close() {
	if !sc.terminated {
		panic(panicUnterminated)
	}
	sc.conn.Close()
}

// Package fake provides an in-process coordinator honoring the command
// and reply discipline, for tests and examples. It executes nothing:
// statements and portals are registered verbatim and executions are
// acknowledged with canned results.
package fake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/raskyld/cordial"
	"github.com/raskyld/cordial/pkg/relay"
)

var (
	ErrStartupRejected  = errors.New("fake: anonymous users are refused")
	ErrUnknownStatement = errors.New("fake: unknown prepared statement")
	ErrUnknownPortal    = errors.New("fake: unknown portal")
)

// Coordinator consumes commands from a single queue, one at a time, the
// way the real thing would. Per-connection registries (cancellation
// signal write ends and cancel secrets) are touched only by the run
// goroutine.
type Coordinator struct {
	clusterID uuid.UUID
	rx        *relay.Receiver[cordial.Command]
	logger    *slog.Logger

	cancels map[uint32]*relay.Signal[cordial.CancelState]
	secrets map[uint32]uint32

	intercept func(cordial.Command) bool
	lk        sync.Mutex

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

// Spawn starts the coordinator goroutine on the receiving end of a
// command queue. A nil logger falls back to slog.Default().
func Spawn(rx *relay.Receiver[cordial.Command], logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, stop := context.WithCancel(context.Background())
	co := &Coordinator{
		clusterID: uuid.New(),
		rx:        rx,
		logger:    logger,
		cancels:   make(map[uint32]*relay.Signal[cordial.CancelState]),
		secrets:   make(map[uint32]uint32),
		ctx:       ctx,
		stop:      stop,
	}
	co.wg.Add(1)
	go co.run()
	return co
}

// Handle returns the tracking handle a listener would hold.
func (co *Coordinator) Handle() *cordial.Handle {
	return cordial.NewHandle(co.clusterID, co.wg.Wait)
}

// Intercept installs fn in front of the default command handling. When
// fn returns true the command is considered handled. fn runs on the
// coordinator goroutine: scripts use it to fill replies with failures,
// park a reply slot and fill it later from outside, or drop it outright.
func (co *Coordinator) Intercept(fn func(cordial.Command) bool) {
	co.lk.Lock()
	co.intercept = fn
	co.lk.Unlock()
}

// Stop shuts the coordinator down: the queue is closed, buffered
// commands have their reply slots dropped so no client stays suspended,
// and the run goroutine exits.
func (co *Coordinator) Stop() {
	co.stop()
	co.wg.Wait()
}

func (co *Coordinator) run() {
	defer co.wg.Done()
	for {
		cmd, err := co.rx.Recv(co.ctx)
		if err != nil {
			co.drain()
			return
		}
		co.dispatch(cmd)
	}
}

// drain severs the queue and abandons whatever was still buffered.
func (co *Coordinator) drain() {
	_ = co.rx.Close()
	for {
		cmd, err := co.rx.Recv(context.Background())
		if err != nil {
			return
		}
		co.logger.Debug("dropping buffered command", slog.String("kind", cmd.Kind()))
		dropReply(cmd)
	}
}

func dropReply(cmd cordial.Command) {
	switch c := cmd.(type) {
	case *cordial.StartupCommand:
		c.Reply.Drop()
	case *cordial.DescribeCommand:
		c.Reply.Drop()
	case *cordial.DeclareCommand:
		c.Reply.Drop()
	case *cordial.ExecuteCommand:
		c.Reply.Drop()
	case *cordial.EndTransactionCommand:
		c.Reply.Drop()
	case *cordial.DumpCatalogCommand:
		c.Reply.Drop()
	}
}

func (co *Coordinator) dispatch(cmd cordial.Command) {
	co.logger.Debug("handling command", slog.String("kind", cmd.Kind()))

	co.lk.Lock()
	intercept := co.intercept
	co.lk.Unlock()
	if intercept != nil && intercept(cmd) {
		return
	}

	switch c := cmd.(type) {
	case *cordial.StartupCommand:
		co.handleStartup(c)
	case *cordial.DescribeCommand:
		co.handleDescribe(c)
	case *cordial.DeclareCommand:
		co.handleDeclare(c)
	case *cordial.ExecuteCommand:
		co.handleExecute(c)
	case *cordial.EndTransactionCommand:
		co.handleEndTransaction(c)
	case *cordial.DumpCatalogCommand:
		co.handleDumpCatalog(c)
	case *cordial.TerminateCommand:
		co.handleTerminate(c)
	case *cordial.CancelRequestCommand:
		co.handleCancelRequest(c)
	}
}

func (co *Coordinator) handleStartup(c *cordial.StartupCommand) {
	sess := c.Session
	if sess.User() == "" {
		c.Reply.Fill(cordial.Response[*cordial.StartupResponse]{
			Session: sess,
			Err:     ErrStartupRejected,
		})
		return
	}

	secret := rand.Uint32()
	sess.SetSecretKey(secret)
	sess.SetVar("server_version", "cordial-fake")
	co.cancels[sess.ConnID()] = c.Cancel
	co.secrets[sess.ConnID()] = secret

	co.logger.Debug("session admitted", slog.Any("session", sess))
	c.Reply.Fill(cordial.Response[*cordial.StartupResponse]{
		Session: sess,
		Result: &cordial.StartupResponse{
			SecretKey: secret,
			Notices: []string{
				fmt.Sprintf("connected to cluster %s", co.clusterID),
			},
		},
	})
}

func (co *Coordinator) handleDescribe(c *cordial.DescribeCommand) {
	sess := c.Session
	if c.Stmt == nil {
		_, ok := sess.Statement(c.Name)
		if !ok {
			c.Reply.Fill(cordial.Response[cordial.Ack]{Session: sess, Err: ErrUnknownStatement})
			return
		}
		c.Reply.Fill(cordial.Response[cordial.Ack]{Session: sess})
		return
	}
	sess.SetStatement(c.Name, c.Stmt, c.ParamTypes)
	c.Reply.Fill(cordial.Response[cordial.Ack]{Session: sess})
}

func (co *Coordinator) handleDeclare(c *cordial.DeclareCommand) {
	sess := c.Session
	sess.SetPortal(c.Name, c.Stmt, c.ParamTypes)
	c.Reply.Fill(cordial.Response[cordial.Ack]{Session: sess})
}

func (co *Coordinator) handleExecute(c *cordial.ExecuteCommand) {
	sess := c.Session
	p, ok := sess.Portal(c.Portal)
	if !ok {
		c.Reply.Fill(cordial.Response[*cordial.ExecuteResponse]{Session: sess, Err: ErrUnknownPortal})
		return
	}
	if sess.TxnStatus() == cordial.TxnIdle {
		sess.SetTxnStatus(cordial.TxnInProgress)
	}
	c.Reply.Fill(cordial.Response[*cordial.ExecuteResponse]{
		Session: sess,
		Result: &cordial.ExecuteResponse{
			Tag:          fmt.Sprintf("EXECUTE %s", p.Stmt.SQL),
			RowsAffected: 1,
		},
	})
}

func (co *Coordinator) handleEndTransaction(c *cordial.EndTransactionCommand) {
	sess := c.Session
	sess.SetTxnStatus(cordial.TxnIdle)
	tag := "COMMIT"
	if c.Action == cordial.EndTransactionRollback {
		tag = "ROLLBACK"
	}
	c.Reply.Fill(cordial.Response[*cordial.ExecuteResponse]{
		Session: sess,
		Result:  &cordial.ExecuteResponse{Tag: tag},
	})
}

func (co *Coordinator) handleDumpCatalog(c *cordial.DumpCatalogCommand) {
	sess := c.Session
	dump, err := json.MarshalIndent(catalogDump{
		Cluster:    co.clusterID.String(),
		ConnID:     sess.ConnID(),
		User:       sess.User(),
		Statements: sess.Statements(),
		Portals:    sess.Portals(),
	}, "", "  ")
	if err != nil {
		c.Reply.Fill(cordial.Response[string]{Session: sess, Err: err})
		return
	}
	c.Reply.Fill(cordial.Response[string]{Session: sess, Result: string(dump)})
}

func (co *Coordinator) handleTerminate(c *cordial.TerminateCommand) {
	id := c.Session.ConnID()
	delete(co.cancels, id)
	delete(co.secrets, id)
	co.logger.Debug("session retired", slog.Uint64("conn_id", uint64(id)))
}

func (co *Coordinator) handleCancelRequest(c *cordial.CancelRequestCommand) {
	secret, ok := co.secrets[c.ConnID]
	if !ok || secret != c.SecretKey {
		co.logger.Warn("cancel request with bad credentials", slog.Uint64("conn_id", uint64(c.ConnID)))
		return
	}
	co.logger.Info("cancelling connection", slog.Uint64("conn_id", uint64(c.ConnID)))
	co.cancels[c.ConnID].Set(cordial.Cancelled)
}

type catalogDump struct {
	Cluster    string   `json:"cluster"`
	ConnID     uint32   `json:"conn_id"`
	User       string   `json:"user"`
	Statements []string `json:"statements"`
	Portals    []string `json:"portals"`
}

package cordial

import (
	"log/slog"
	"maps"
	"slices"
)

// ParamType is an OID-shaped type hint for one statement parameter.
type ParamType uint32

// ParamTypeUnspecified leaves a parameter for the coordinator to infer.
const ParamTypeUnspecified ParamType = 0

// Statement is one SQL statement carried opaquely through this layer.
// Parsing and planning belong to the coordinator.
type Statement struct {
	SQL string
}

// PreparedStatement is a named statement registered with Describe.
type PreparedStatement struct {
	Stmt       *Statement
	ParamTypes []ParamType
}

// Portal is a bound, executable instance of a statement, registered with
// Declare and consumed by Execute.
type Portal struct {
	Stmt       Statement
	ParamTypes []ParamType
}

// TxnStatus is the session's transaction state as the coordinator last
// reported it.
type TxnStatus uint8

const (
	TxnIdle TxnStatus = iota
	TxnInProgress
	TxnFailed
)

func (st TxnStatus) String() string {
	switch st {
	case TxnIdle:
		return "idle"
	case TxnInProgress:
		return "in progress"
	case TxnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EndTransactionAction tells the coordinator how to close the current
// transaction.
type EndTransactionAction uint8

const (
	EndTransactionCommit EndTransactionAction = iota
	EndTransactionRollback
)

func (a EndTransactionAction) String() string {
	switch a {
	case EndTransactionCommit:
		return "commit"
	case EndTransactionRollback:
		return "rollback"
	default:
		return "unknown"
	}
}

// CancelState is the value carried by a session's cancellation signal.
// The signal is last-value-wins: readers observing it learn the current
// state, not a history of transitions.
type CancelState uint8

const (
	NotCancelled CancelState = iota
	Cancelled
)

func (cs CancelState) String() string {
	if cs == Cancelled {
		return "cancelled"
	}
	return "not cancelled"
}

// Session holds all per-connection execution state: session variables,
// the secret cancel key, transaction status, prepared statements and
// portals.
//
// A Session is deliberately unsynchronized. The ownership protocol
// guarantees exactly one owner at any observable time, either the
// SessionClient, the coordinator, or the command/response pair carrying
// it between them, so no two goroutines ever touch it concurrently.
type Session struct {
	connID    uint32
	user      string
	vars      map[string]string
	secretKey uint32
	txn       TxnStatus
	stmts     map[string]*PreparedStatement
	portals   map[string]*Portal
}

func NewSession(user string) *Session {
	return &Session{
		user:    user,
		vars:    make(map[string]string),
		stmts:   make(map[string]*PreparedStatement),
		portals: make(map[string]*Portal),
	}
}

// ConnID identifies the connection this session belongs to. It is zero
// until the session goes through a startup handshake, which stamps the
// connection's identifier on it.
func (s *Session) ConnID() uint32 {
	return s.connID
}

func (s *Session) setConnID(id uint32) {
	s.connID = id
}

func (s *Session) User() string {
	return s.user
}

func (s *Session) Var(name string) string {
	return s.vars[name]
}

func (s *Session) SetVar(name, value string) {
	s.vars[name] = value
}

// SecretKey is the token a cancel request must present to target this
// session's connection. The coordinator assigns it during startup.
func (s *Session) SecretKey() uint32 {
	return s.secretKey
}

func (s *Session) SetSecretKey(key uint32) {
	s.secretKey = key
}

func (s *Session) TxnStatus() TxnStatus {
	return s.txn
}

func (s *Session) SetTxnStatus(st TxnStatus) {
	s.txn = st
}

// SetStatement registers a named prepared statement, replacing any
// previous statement under the same name.
func (s *Session) SetStatement(name string, stmt *Statement, types []ParamType) {
	s.stmts[name] = &PreparedStatement{Stmt: stmt, ParamTypes: types}
}

func (s *Session) Statement(name string) (*PreparedStatement, bool) {
	ps, ok := s.stmts[name]
	return ps, ok
}

func (s *Session) RemoveStatement(name string) {
	delete(s.stmts, name)
}

// SetPortal binds a statement to a named portal, replacing any previous
// portal under the same name.
func (s *Session) SetPortal(name string, stmt Statement, types []ParamType) {
	s.portals[name] = &Portal{Stmt: stmt, ParamTypes: types}
}

func (s *Session) Portal(name string) (*Portal, bool) {
	p, ok := s.portals[name]
	return p, ok
}

func (s *Session) RemovePortal(name string) {
	delete(s.portals, name)
}

// Statements returns the registered prepared statement names, sorted.
func (s *Session) Statements() []string {
	return slices.Sorted(maps.Keys(s.stmts))
}

// Portals returns the registered portal names, sorted.
func (s *Session) Portals() []string {
	return slices.Sorted(maps.Keys(s.portals))
}

func (s *Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("conn_id", uint64(s.connID)),
		slog.String("user", s.user),
		slog.String("txn", s.txn.String()),
		slog.Int("statements", len(s.stmts)),
		slog.Int("portals", len(s.portals)),
	)
}

package cordial

import (
	"github.com/raskyld/cordial/pkg/relay"
)

// Command is one request crossing the channel to the coordinator.
//
// Session-bearing commands move the session out of the issuing client and
// carry a single-use reply slot; the coordinator MUST answer each of them
// through that slot with the session attached, whatever the outcome, so
// the client regains ownership. Terminate and CancelRequest expect no
// reply.
type Command interface {
	// Kind names the command for logs and metrics.
	Kind() string
	isCommand()
}

// Response pairs a coordinator-computed result with the session handed
// back. Err carries request-level failures; the session is returned
// unconditionally.
type Response[T any] struct {
	Session *Session
	Result  T
	Err     error
}

// Ack is the result of commands that only report success or failure.
type Ack struct{}

// StartupResponse reports a completed handshake. SecretKey is the token
// later cancel requests must present to target this connection.
type StartupResponse struct {
	SecretKey uint32
	Notices   []string
}

// ExecuteResponse reports the outcome of running a portal or closing a
// transaction.
type ExecuteResponse struct {
	Tag          string
	RowsAffected uint64
}

// StartupCommand opens a session on the coordinator. Cancel is the write
// end the coordinator keeps to signal cancellation for this connection.
type StartupCommand struct {
	Session *Session
	Cancel  *relay.Signal[CancelState]
	Reply   *relay.Slot[Response[*StartupResponse]]
}

func (*StartupCommand) Kind() string { return "startup" }
func (*StartupCommand) isCommand()   {}

// DescribeCommand registers a named prepared statement. A nil Stmt asks
// the coordinator to describe the existing statement under Name instead
// of replacing it.
type DescribeCommand struct {
	Name       string
	Stmt       *Statement
	ParamTypes []ParamType
	Session    *Session
	Reply      *relay.Slot[Response[Ack]]
}

func (*DescribeCommand) Kind() string { return "describe" }
func (*DescribeCommand) isCommand()   {}

// DeclareCommand binds a statement to a named portal.
type DeclareCommand struct {
	Name       string
	Stmt       Statement
	ParamTypes []ParamType
	Session    *Session
	Reply      *relay.Slot[Response[Ack]]
}

func (*DeclareCommand) Kind() string { return "declare" }
func (*DeclareCommand) isCommand()   {}

// ExecuteCommand runs a previously declared portal.
type ExecuteCommand struct {
	Portal  string
	Session *Session
	Reply   *relay.Slot[Response[*ExecuteResponse]]
}

func (*ExecuteCommand) Kind() string { return "execute" }
func (*ExecuteCommand) isCommand()   {}

// EndTransactionCommand closes the current transaction with the given
// action.
type EndTransactionCommand struct {
	Action  EndTransactionAction
	Session *Session
	Reply   *relay.Slot[Response[*ExecuteResponse]]
}

func (*EndTransactionCommand) Kind() string { return "end_transaction" }
func (*EndTransactionCommand) isCommand()   {}

// DumpCatalogCommand asks for a textual snapshot of coordinator-visible
// schema state.
type DumpCatalogCommand struct {
	Session *Session
	Reply   *relay.Slot[Response[string]]
}

func (*DumpCatalogCommand) Kind() string { return "dump_catalog" }
func (*DumpCatalogCommand) isCommand()   {}

// TerminateCommand hands the session back to the coordinator for good.
// No reply is expected.
type TerminateCommand struct {
	Session *Session
}

func (*TerminateCommand) Kind() string { return "terminate" }
func (*TerminateCommand) isCommand()   {}

// CancelRequestCommand asks the coordinator to cancel whatever the target
// connection is running. Fire-and-forget; the coordinator verifies the
// secret and silently drops requests that do not match.
type CancelRequestCommand struct {
	ConnID    uint32
	SecretKey uint32
}

func (*CancelRequestCommand) Kind() string { return "cancel_request" }
func (*CancelRequestCommand) isCommand()   {}

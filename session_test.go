package cordial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_StatementRegistry(t *testing.T) {
	sess := NewSession("ada")

	_, ok := sess.Statement("q1")
	require.False(t, ok)

	stmt := &Statement{SQL: "SELECT 1"}
	sess.SetStatement("q1", stmt, []ParamType{ParamTypeUnspecified})

	got, ok := sess.Statement("q1")
	require.True(t, ok)
	require.Same(t, stmt, got.Stmt)
	require.Equal(t, []ParamType{ParamTypeUnspecified}, got.ParamTypes)

	sess.SetStatement("a0", &Statement{SQL: "SELECT 2"}, nil)
	require.Equal(t, []string{"a0", "q1"}, sess.Statements(), "listing must be sorted")

	sess.RemoveStatement("q1")
	_, ok = sess.Statement("q1")
	require.False(t, ok)
}

func TestSession_PortalRegistry(t *testing.T) {
	sess := NewSession("ada")

	sess.SetPortal("p1", Statement{SQL: "SELECT 1"}, nil)
	p, ok := sess.Portal("p1")
	require.True(t, ok)
	require.Equal(t, "SELECT 1", p.Stmt.SQL)

	// Rebinding the same name replaces the portal.
	sess.SetPortal("p1", Statement{SQL: "SELECT 2"}, nil)
	p, ok = sess.Portal("p1")
	require.True(t, ok)
	require.Equal(t, "SELECT 2", p.Stmt.SQL)

	sess.RemovePortal("p1")
	_, ok = sess.Portal("p1")
	require.False(t, ok)
	require.Empty(t, sess.Portals())
}

func TestSession_VarsSecretAndConnID(t *testing.T) {
	sess := NewSession("ada")
	require.Equal(t, "ada", sess.User())
	require.Zero(t, sess.ConnID(), "conn id is unset until a startup stamps it")

	sess.SetVar("application_name", "pgshim")
	require.Equal(t, "pgshim", sess.Var("application_name"))
	require.Empty(t, sess.Var("missing"))

	sess.SetSecretKey(42)
	require.Equal(t, uint32(42), sess.SecretKey())

	sess.setConnID(7)
	require.Equal(t, uint32(7), sess.ConnID())
}

func TestSession_TxnLifecycle(t *testing.T) {
	sess := NewSession("ada")
	require.Equal(t, TxnIdle, sess.TxnStatus())

	sess.SetTxnStatus(TxnInProgress)
	require.Equal(t, TxnInProgress, sess.TxnStatus())
	require.Equal(t, "in progress", sess.TxnStatus().String())

	sess.SetTxnStatus(TxnFailed)
	require.Equal(t, "failed", sess.TxnStatus().String())

	sess.SetTxnStatus(TxnIdle)
	require.Equal(t, "idle", sess.TxnStatus().String())
}

// Package relay provides the message plumbing used between clients and a
// coordinator: an unbounded multi-producer queue, single-use reply slots,
// and a last-value-wins signal.
//
// The primitives are transport-free. They move typed values between
// goroutines of the same process and encode the close discipline the
// protocol layer relies on: submission never blocks, a reply slot is
// consumed exactly once, and signal readers only ever observe the most
// recent write.
package relay

import "errors"

var (
	ErrQueueClosed = errors.New("queue closed")
)

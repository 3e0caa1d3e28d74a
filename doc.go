// `cordial` is the client-side protocol layer for talking to a single,
// serially-executing database coordinator over in-process message
// passing.
//
// Many connection goroutines, one coordinator: the coordinator owns all
// shared state and consumes `Command`s one at a time from an unbounded
// queue. What this library does is shepherd a `Session` value between
// each connection and the coordinator while enforcing the ownership
// rules that keep that model sound without any lock visible to callers.
//
// ## The capability ladder
//
// There are three client types and you can only climb up:
//
// * `Client` wraps the command queue and the connection id allocator.
//   Cheap to share, one per coordinator.
// * `ConnClient` is minted by `Client.NewConn` and owns one connection
//   identifier until it is released.
// * `SessionClient` is what `ConnClient.Startup` returns once the
//   coordinator accepts the handshake. It owns the `Session` and the
//   read side of the connection's cancellation signal.
//
// ## Session ownership
//
// A `Session` has exactly one owner at any observable time: the
// `SessionClient`, the coordinator, or the command/response currently
// carrying it between them. Request methods move the session out,
// suspend until the coordinator's reply, and put it back whatever the
// outcome. There is no mutex around the session and there MUST NOT be
// one: the protocol is the lock.
//
// Three situations are treated as fatal assertions instead of returned
// errors, because they mean the surrounding system broke its lifecycle
// promises: sending on a severed queue, a reply slot dropped without a
// value, and discarding a `SessionClient` nobody terminated. `Close`
// after `Terminate` is the normal, silent path, and a failed `Startup`
// cleans up after itself.
//
// ## Cancellation
//
// Cancellation is advisory and out-of-band. The coordinator holds the
// write end of a last-value-wins signal per connection;
// `SessionClient.Canceled` suspends until it reads `Cancelled`. The
// signal is not a queue: readers MUST tolerate waking up to
// `NotCancelled` and loop. `ResetCanceled` rearms it between statements
// so one delivered cancellation cannot bleed into the next.
//
// Dependencies SHOULD be *kept* minimal, actually, I can enumerate them:
//
// * [`hashicorp/go-metrics`][dep-met], to let you chose how to collect telemetry.
// * [`eapache/queue`][dep-q], the ring buffer behind the unbounded command queue.
// * [`google/uuid`][dep-uuid], cluster identity on `Handle`.
//
// [dep-met]: https://pkg.go.dev/github.com/hashicorp/go-metrics
// [dep-q]: https://pkg.go.dev/github.com/eapache/queue
// [dep-uuid]: https://pkg.go.dev/github.com/google/uuid
package cordial

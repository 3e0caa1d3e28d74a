package relay

import (
	"context"
	"sync"

	"github.com/eapache/queue"
)

// core is the state shared by a Sender/Receiver pair.
type core[T any] struct {
	buf     *queue.Queue
	notify  chan struct{}
	closeCh chan struct{}

	sendClosed bool
	recvClosed bool
	chClosed   bool
	lk         sync.Mutex
}

// Unbounded returns the two endpoints of an unbounded FIFO queue.
//
// Any number of goroutines may send; a single consumer receives. Send
// never blocks, whatever the consumer is doing, so producers trade memory
// growth for the guarantee that submission cannot become a suspension
// point.
func Unbounded[T any]() (*Sender[T], *Receiver[T]) {
	c := &core[T]{
		buf:     queue.New(),
		notify:  make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
	return &Sender[T]{c: c}, &Receiver[T]{c: c}
}

func (c *core[T]) closeLocked() {
	if !c.chClosed {
		c.chClosed = true
		close(c.closeCh)
	}
}

// Sender is the producing endpoint of an unbounded queue.
// It is safe for concurrent use.
type Sender[T any] struct {
	c *core[T]
}

// Send enqueues msg. It never blocks. It fails with [ErrQueueClosed] once
// either endpoint has been closed.
func (s *Sender[T]) Send(msg T) error {
	c := s.c
	c.lk.Lock()
	if c.sendClosed || c.recvClosed {
		c.lk.Unlock()
		return ErrQueueClosed
	}
	c.buf.Add(msg)
	c.lk.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
	return nil
}

// Len reports how many messages are buffered and not yet received.
func (s *Sender[T]) Len() int {
	s.c.lk.Lock()
	defer s.c.lk.Unlock()
	return s.c.buf.Length()
}

// Close stops further sends. Messages already buffered remain receivable;
// the consumer observes [ErrQueueClosed] once the queue is drained.
func (s *Sender[T]) Close() error {
	c := s.c
	c.lk.Lock()
	defer c.lk.Unlock()
	if c.sendClosed {
		return nil
	}
	c.sendClosed = true
	c.closeLocked()
	return nil
}

// Receiver is the consuming endpoint of an unbounded queue.
//
// Methods MUST NOT be called concurrently, except Close which may be
// called from any goroutine to interrupt a pending Recv.
type Receiver[T any] struct {
	c *core[T]
}

// Recv returns the oldest buffered message, waiting for one if the queue
// is empty. After either endpoint closes, buffered messages are still
// delivered in order; once drained, Recv fails with [ErrQueueClosed].
func (r *Receiver[T]) Recv(ctx context.Context) (msg T, err error) {
	c := r.c
	for {
		c.lk.Lock()
		if c.buf.Length() > 0 {
			elem := c.buf.Remove()
			c.lk.Unlock()
			return elem.(T), nil
		}
		if c.sendClosed || c.recvClosed {
			c.lk.Unlock()
			return msg, ErrQueueClosed
		}
		c.lk.Unlock()

		select {
		case <-ctx.Done():
			return msg, ctx.Err()
		case <-c.closeCh:
		case <-c.notify:
		}
	}
}

// Len reports how many messages are buffered and not yet received.
func (r *Receiver[T]) Len() int {
	r.c.lk.Lock()
	defer r.c.lk.Unlock()
	return r.c.buf.Length()
}

// Close stops further sends. Like the sender-side Close, it leaves
// already-buffered messages receivable so the consumer can drain.
func (r *Receiver[T]) Close() error {
	c := r.c
	c.lk.Lock()
	defer c.lk.Unlock()
	if c.recvClosed {
		return nil
	}
	c.recvClosed = true
	c.closeLocked()
	return nil
}

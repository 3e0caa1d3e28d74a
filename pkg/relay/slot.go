package relay

import "sync"

// Slot is a single-use reply slot pairing exactly one request with exactly
// one response. The requesting side calls Await; the answering side calls
// Fill once, or Drop to abandon the request without a value.
type Slot[T any] struct {
	ch   chan T
	once sync.Once
}

func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{ch: make(chan T, 1)}
}

// Fill places the reply in the slot and wakes the waiter. Only the first
// call has any effect.
func (s *Slot[T]) Fill(v T) {
	s.once.Do(func() {
		s.ch <- v
		close(s.ch)
	})
}

// Drop abandons the slot without a value. A waiter blocked in Await
// observes ok == false. Only the first of Fill/Drop has any effect.
func (s *Slot[T]) Drop() {
	s.once.Do(func() {
		close(s.ch)
	})
}

// Await blocks until the slot is filled or dropped. It reports ok == false
// when the answering side dropped the slot. Await must be called at most
// once.
func (s *Slot[T]) Await() (v T, ok bool) {
	v, ok = <-s.ch
	return v, ok
}

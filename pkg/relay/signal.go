package relay

import "sync"

// Signal is a single-slot, last-value-wins broadcast. One writer
// overwrites the current value; any number of readers observe the latest
// value and can wait for it to change. It is not a queue: a reader that
// misses intermediate values only ever sees the most recent one.
type Signal[T any] struct {
	cur T
	gen chan struct{}
	lk  sync.Mutex
}

func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		cur: initial,
		gen: make(chan struct{}),
	}
}

// Set overwrites the current value and wakes every goroutine waiting on a
// previously obtained Changed channel.
func (s *Signal[T]) Set(v T) {
	s.lk.Lock()
	s.cur = v
	close(s.gen)
	s.gen = make(chan struct{})
	s.lk.Unlock()
}

// Get returns the most recently set value.
func (s *Signal[T]) Get() T {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.cur
}

// Changed returns a channel that is closed at the next Set. Callers must
// obtain the channel before reading the value they intend to wait against,
// otherwise a write between the read and the wait can be missed:
//
//	for {
//		ch := sig.Changed()
//		if sig.Get() == want {
//			return
//		}
//		<-ch
//	}
func (s *Signal[T]) Changed() <-chan struct{} {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.gen
}

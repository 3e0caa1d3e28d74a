package cordial

import "sync"

// IDAllocator hands out unsigned identifiers from a bounded half-open
// range [lo, hi) and reclaims them for reuse. It is safe for concurrent
// use from any number of goroutines.
type IDAllocator struct {
	lo    uint32
	hi    uint32
	next  uint32
	freed []uint32
	live  map[uint32]struct{}
	lk    sync.Mutex
}

// NewIDAllocator returns an allocator owning [lo, hi). An empty range is
// rejected with [ErrIDRangeEmpty].
func NewIDAllocator(lo, hi uint32) (*IDAllocator, error) {
	if lo >= hi {
		return nil, ErrIDRangeEmpty
	}
	return &IDAllocator{
		lo:   lo,
		hi:   hi,
		next: lo,
		live: make(map[uint32]struct{}),
	}, nil
}

// Alloc returns an identifier that no other holder currently owns,
// preferring the most recently freed one. Once every value in the range is
// live it fails with [ErrIDExhausted].
func (a *IDAllocator) Alloc() (uint32, error) {
	a.lk.Lock()
	defer a.lk.Unlock()
	if n := len(a.freed); n > 0 {
		id := a.freed[n-1]
		a.freed = a.freed[:n-1]
		a.live[id] = struct{}{}
		return id, nil
	}
	if a.next >= a.hi {
		return 0, ErrIDExhausted
	}
	id := a.next
	a.next++
	a.live[id] = struct{}{}
	return id, nil
}

// Free returns id to the allocator, making it allocatable again. Freeing a
// value that is not currently live is a caller error; it is ignored rather
// than allowed to corrupt allocator state.
func (a *IDAllocator) Free(id uint32) {
	a.lk.Lock()
	defer a.lk.Unlock()
	if _, ok := a.live[id]; !ok {
		return
	}
	delete(a.live, id)
	a.freed = append(a.freed, id)
}

// Live reports how many identifiers are currently allocated.
func (a *IDAllocator) Live() int {
	a.lk.Lock()
	defer a.lk.Unlock()
	return len(a.live)
}

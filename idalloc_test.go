package cordial

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDAllocator_EmptyRangeRejected(t *testing.T) {
	_, err := NewIDAllocator(5, 5)
	require.ErrorIs(t, err, ErrIDRangeEmpty)

	_, err = NewIDAllocator(6, 5)
	require.ErrorIs(t, err, ErrIDRangeEmpty)
}

func TestIDAllocator_ExhaustionScenario(t *testing.T) {
	ids, err := NewIDAllocator(1, 5)
	require.NoError(t, err)

	seen := make(map[uint32]struct{})
	for i := 0; i < 3; i++ {
		id, err := ids.Alloc()
		require.NoError(t, err)
		require.GreaterOrEqual(t, id, uint32(1))
		require.Less(t, id, uint32(5))
		seen[id] = struct{}{}
	}
	require.Len(t, seen, 3, "live identifiers must be distinct")

	// One value left in the range.
	id, err := ids.Alloc()
	require.NoError(t, err)
	seen[id] = struct{}{}
	require.Len(t, seen, 4)

	_, err = ids.Alloc()
	require.ErrorIs(t, err, ErrIDExhausted, "a full range must refuse further allocation")
}

func TestIDAllocator_ReuseAfterFree(t *testing.T) {
	ids, err := NewIDAllocator(1, 5)
	require.NoError(t, err)

	first, err := ids.Alloc()
	require.NoError(t, err)
	second, err := ids.Alloc()
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	ids.Free(first)
	again, err := ids.Alloc()
	require.NoError(t, err)
	require.Equal(t, first, again, "a freed identifier must become allocatable again")
}

func TestIDAllocator_FreeUnknownIgnored(t *testing.T) {
	ids, err := NewIDAllocator(1, 5)
	require.NoError(t, err)

	// Never allocated, out of range, and double free: none of these may
	// corrupt the allocator.
	ids.Free(3)
	ids.Free(99)

	a, err := ids.Alloc()
	require.NoError(t, err)
	ids.Free(a)
	ids.Free(a)

	b, err := ids.Alloc()
	require.NoError(t, err)
	c, err := ids.Alloc()
	require.NoError(t, err)
	require.NotEqual(t, b, c, "a double free must not hand the same identifier out twice")
	require.Equal(t, 2, ids.Live())
}

func TestIDAllocator_ConcurrentChurn(t *testing.T) {
	const workers = 8
	const perWorker = 200

	ids, err := NewIDAllocator(1, 1<<16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	batches := make([][]uint32, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			batch := make([]uint32, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				id, err := ids.Alloc()
				if err != nil {
					continue
				}
				batch = append(batch, id)
			}
			batches[w] = batch
		}(w)
	}
	wg.Wait()

	seen := make(map[uint32]struct{})
	for _, batch := range batches {
		require.Len(t, batch, perWorker)
		for _, id := range batch {
			_, dup := seen[id]
			require.False(t, dup, "identifier %d was handed out twice", id)
			seen[id] = struct{}{}
			ids.Free(id)
		}
	}
	require.Equal(t, 0, ids.Live(), "every allocation was freed")
}

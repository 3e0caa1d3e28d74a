package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	tx, rx := Unbounded[int]()
	for i := 0; i < 100; i++ {
		require.NoError(t, tx.Send(i))
	}
	for i := 0; i < 100; i++ {
		got, err := rx.Recv(context.Background())
		require.NoError(t, err)
		require.Equal(t, i, got, "messages must come out in submission order")
	}
}

func TestQueue_SendNeverBlocks(t *testing.T) {
	tx, _ := Unbounded[int]()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100000; i++ {
			_ = tx.Send(i)
		}
	}()

	require.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 10*time.Second, 10*time.Millisecond, "send must not block on a sleeping consumer")
	require.Equal(t, 100000, tx.Len())
}

func TestQueue_ConcurrentSenders(t *testing.T) {
	const senders = 8
	const perSender = 100

	tx, rx := Unbounded[int]()
	var wg sync.WaitGroup
	for g := 0; g < senders; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				_ = tx.Send(g*1000 + i)
			}
		}(g)
	}
	wg.Wait()

	seen := make(map[int]struct{})
	for i := 0; i < senders*perSender; i++ {
		got, err := rx.Recv(context.Background())
		require.NoError(t, err)
		seen[got] = struct{}{}
	}
	require.Len(t, seen, senders*perSender, "no message may be lost or duplicated")
}

func TestQueue_RecvHonorsContext(t *testing.T) {
	_, rx := Unbounded[int]()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := rx.Recv(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestQueue_ReceiverCloseSeversSend(t *testing.T) {
	tx, rx := Unbounded[int]()
	require.NoError(t, rx.Close())
	require.ErrorIs(t, tx.Send(1), ErrQueueClosed)
}

func TestQueue_DrainAfterClose(t *testing.T) {
	tx, rx := Unbounded[int]()
	require.NoError(t, tx.Send(1))
	require.NoError(t, tx.Send(2))
	require.NoError(t, rx.Close())

	// Buffered messages survive the close so the consumer can drain.
	for want := 1; want <= 2; want++ {
		got, err := rx.Recv(context.Background())
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := rx.Recv(context.Background())
	require.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_SenderCloseEndsStream(t *testing.T) {
	tx, rx := Unbounded[string]()
	require.NoError(t, tx.Send("last"))
	require.NoError(t, tx.Close())

	require.ErrorIs(t, tx.Send("late"), ErrQueueClosed)

	got, err := rx.Recv(context.Background())
	require.NoError(t, err)
	require.Equal(t, "last", got)

	_, err = rx.Recv(context.Background())
	require.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_CloseWakesPendingRecv(t *testing.T) {
	tx, rx := Unbounded[int]()

	errCh := make(chan error, 1)
	go func() {
		_, err := rx.Recv(context.Background())
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, tx.Close())

	var got error
	require.Eventually(t, func() bool {
		select {
		case err := <-errCh:
			got = err
			return true
		default:
			return false
		}
	}, 10*time.Second, 10*time.Millisecond, "a pending Recv must observe the close")
	require.ErrorIs(t, got, ErrQueueClosed)
}

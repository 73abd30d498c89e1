package inflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_CoalescesConcurrentCalls(t *testing.T) {
	var g Group[string]
	var calls atomic.Int32
	release := make(chan struct{})

	fn := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "payload", nil
	}

	const n = 10
	var wg sync.WaitGroup
	results := make([]string, n)
	shared := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err, s := g.Do(context.Background(), "k", fn)
			assert.NoError(t, err)
			results[i], shared[i] = v, s
		}(i)
	}

	require.Eventually(t, func() bool { return g.Waiters("k") == n }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	leaders := 0
	for i := 0; i < n; i++ {
		require.Equal(t, "payload", results[i])
		if !shared[i] {
			leaders++
		}
	}
	require.Equal(t, 1, leaders)
	require.Zero(t, g.Len())
}

func TestGroup_DistinctKeysRunIndependently(t *testing.T) {
	var g Group[int]
	var calls atomic.Int32
	fn := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	}

	_, _, _ = g.Do(context.Background(), "a", fn)
	_, _, _ = g.Do(context.Background(), "b", fn)
	_, _, _ = g.Do(context.Background(), "a", fn)

	require.EqualValues(t, 3, calls.Load())
	require.Zero(t, g.Len())
}

func TestGroup_PropagatesError(t *testing.T) {
	var g Group[[]byte]
	boom := errors.New("boom")

	v, err, shared := g.Do(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.Nil(t, v)
	require.False(t, shared)
}

func TestGroup_PanicBecomesError(t *testing.T) {
	var g Group[int]
	_, err, _ := g.Do(context.Background(), "k", func(ctx context.Context) (int, error) {
		panic("oops")
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "oops")
	require.Zero(t, g.Len())
}

func TestGroup_DetachedWaiterDoesNotCancelOthers(t *testing.T) {
	var g Group[string]
	release := make(chan struct{})
	var callCancelled atomic.Bool

	fn := func(ctx context.Context) (string, error) {
		select {
		case <-release:
			return "ok", nil
		case <-ctx.Done():
			callCancelled.Store(true)
			return "", ctx.Err()
		}
	}

	ctx1, cancel1 := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err, _ := g.Do(ctx1, "k", fn)
		first <- err
	}()
	require.Eventually(t, func() bool { return g.Waiters("k") == 1 }, time.Second, time.Millisecond)

	second := make(chan string, 1)
	go func() {
		v, _, _ := g.Do(context.Background(), "k", fn)
		second <- v
	}()
	require.Eventually(t, func() bool { return g.Waiters("k") == 2 }, time.Second, time.Millisecond)

	cancel1()
	require.ErrorIs(t, <-first, context.Canceled)
	require.Equal(t, 1, g.Waiters("k"))

	close(release)
	require.Equal(t, "ok", <-second)
	require.False(t, callCancelled.Load())
}

func TestGroup_LastWaiterLeavingCancelsCall(t *testing.T) {
	var g Group[string]
	observed := make(chan struct{})

	fn := func(ctx context.Context) (string, error) {
		<-ctx.Done()
		close(observed)
		return "", ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err, _ := g.Do(ctx, "k", fn)
		done <- err
	}()
	require.Eventually(t, func() bool { return g.Waiters("k") == 1 }, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	select {
	case <-observed:
	case <-time.After(time.Second):
		t.Fatal("call context was not cancelled")
	}
	require.Eventually(t, func() bool { return g.Len() == 0 }, time.Second, time.Millisecond)
}

func TestGroup_CallerAfterAbandonStartsFreshCall(t *testing.T) {
	var g Group[string]
	unblock := make(chan struct{})
	var calls atomic.Int32

	slow := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-unblock
		return "stale", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _, _, _ = g.Do(ctx, "k", slow) }()
	require.Eventually(t, func() bool { return g.Waiters("k") == 1 }, time.Second, time.Millisecond)
	cancel()
	require.Eventually(t, func() bool { return g.Waiters("k") == 0 }, time.Second, time.Millisecond)

	got := make(chan string, 1)
	go func() {
		v, _, shared := g.Do(context.Background(), "k", func(ctx context.Context) (string, error) {
			calls.Add(1)
			return "fresh", nil
		})
		assert.False(t, shared)
		got <- v
	}()

	close(unblock)
	require.Equal(t, "fresh", <-got)
	require.EqualValues(t, 2, calls.Load())
}

func TestGroup_WaitingOnAbandonedCallHonoursContext(t *testing.T) {
	var g Group[int]
	unblock := make(chan struct{})
	defer close(unblock)

	ctx1, cancel1 := context.WithCancel(context.Background())
	go func() {
		_, _, _ = g.Do(ctx1, "k", func(ctx context.Context) (int, error) {
			<-unblock
			return 0, nil
		})
	}()
	require.Eventually(t, func() bool { return g.Waiters("k") == 1 }, time.Second, time.Millisecond)
	cancel1()
	require.Eventually(t, func() bool { return g.Waiters("k") == 0 }, time.Second, time.Millisecond)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	_, err, _ := g.Do(ctx2, "k", func(ctx context.Context) (int, error) { return 1, nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

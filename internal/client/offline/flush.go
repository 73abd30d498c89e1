package offline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// flushGate orders cache flushes against refresh writes. A refresh that
// began before a flush does not store its result afterwards.
type flushGate struct {
	mu    sync.RWMutex
	epoch uint64
}

func (g *flushGate) current() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.epoch
}

// store runs put unless a flush happened since epoch. stored is false when
// put was skipped.
func (g *flushGate) store(epoch uint64, put func() error) (stored bool, err error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.epoch != epoch {
		return false, nil
	}
	return true, put()
}

func (g *flushGate) flush(fn func() (int64, error)) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.epoch++
	return fn()
}

// FlushReport holds the number of rows removed per store.
type FlushReport struct {
	Data   int64
	Images int64
	Unsent int64
}

// FlushOfflineData deletes every cached data record. Fetches already in
// flight still report their result but no longer write it to the cache.
func (e *Engine) FlushOfflineData(ctx context.Context) (int64, error) {
	n, err := e.dataGate.flush(func() (int64, error) { return e.data.Flush(ctx) })
	if err != nil {
		return 0, fmt.Errorf("flush offline data: %w", err)
	}
	e.logger.Info(ctx, "offline data flushed", "removed", n)
	return n, nil
}

// FlushOfflineImages deletes every cached image, with the same in-flight
// rule as FlushOfflineData.
func (e *Engine) FlushOfflineImages(ctx context.Context) (int64, error) {
	n, err := e.imagesGate.flush(func() (int64, error) { return e.images.Flush(ctx) })
	if err != nil {
		return 0, fmt.Errorf("flush offline images: %w", err)
	}
	e.logger.Info(ctx, "offline images flushed", "removed", n)
	return n, nil
}

// FlushUnsentData deletes every queued request regardless of status.
func (e *Engine) FlushUnsentData(ctx context.Context) (int64, error) {
	n, err := e.queue.FlushAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("flush unsent requests: %w", err)
	}
	e.logger.Info(ctx, "unsent requests flushed", "removed", n)
	return n, nil
}

// FlushAll runs all three flushes. They are independent: a failing one
// does not stop the others, and the errors are joined.
func (e *Engine) FlushAll(ctx context.Context) (FlushReport, error) {
	var r FlushReport
	var errs []error

	var err error
	if r.Data, err = e.FlushOfflineData(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.Images, err = e.FlushOfflineImages(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.Unsent, err = e.FlushUnsentData(ctx); err != nil {
		errs = append(errs, err)
	}
	return r, errors.Join(errs...)
}

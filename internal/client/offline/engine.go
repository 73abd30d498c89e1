package offline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/offlinesync/internal/client/future"
	"github.com/dmitrijs2005/offlinesync/internal/client/inflight"
	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/client/repositories/cache"
	"github.com/dmitrijs2005/offlinesync/internal/client/repositories/queue"
	"github.com/dmitrijs2005/offlinesync/internal/dbx"
	"github.com/dmitrijs2005/offlinesync/internal/logging"
	"golang.org/x/sync/semaphore"
)

// NetworkClient performs the actual requests. Implementations return the
// response body on success and a non-nil error for any failed attempt.
type NetworkClient interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Post(ctx context.Context, url string, payload []byte) ([]byte, error)
	Send(ctx context.Context, req *models.Request) ([]byte, error)
}

// Deps are the collaborators an Engine is built from.
type Deps struct {
	Data    cache.Repository
	Images  cache.Repository
	Queue   queue.Repository
	Network NetworkClient
}

func (d Deps) validate() error {
	switch {
	case d.Data == nil:
		return errors.New("offline: data cache is required")
	case d.Images == nil:
		return errors.New("offline: image cache is required")
	case d.Queue == nil:
		return errors.New("offline: request queue is required")
	case d.Network == nil:
		return errors.New("offline: network client is required")
	}
	return nil
}

// Engine coordinates the caches, the unsent queue and the network.
type Engine struct {
	data    cache.Repository
	images  cache.Repository
	queue   queue.Repository
	network NetworkClient

	opts      options
	logger    logging.Logger
	callbacks future.Executor
	pool      *semaphore.Weighted
	fetches   inflight.Group[[]byte]

	dataGate   flushGate
	imagesGate flushGate

	syncing atomic.Bool

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	closeOnce  sync.Once
	dispatcher *future.Dispatcher
}

// New builds an Engine. It does not touch the store; use Open or Recover to
// clear state left behind by a previous process.
func New(deps Deps, opts ...Option) (*Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	e := &Engine{
		data:    deps.Data,
		images:  deps.Images,
		queue:   deps.Queue,
		network: deps.Network,
		opts:    o,
		logger:  o.logger,
		pool:    semaphore.NewWeighted(int64(o.workers)),
	}

	e.callbacks = o.executor
	if e.callbacks == nil {
		e.dispatcher = future.NewDispatcher(func(p any) {
			e.logger.Error(context.Background(), "completion callback panicked", "panic", p)
		})
		e.callbacks = e.dispatcher
	}
	return e, nil
}

// Open builds an Engine over the SQLite store db and resets records left in
// the Updating state by a process that died mid-attempt.
func Open(ctx context.Context, db *sql.DB, network NetworkClient, opts ...Option) (*Engine, error) {
	if err := Recover(ctx, db); err != nil {
		return nil, err
	}

	return New(Deps{
		Data:    cache.NewSQLiteRepository(db, cache.TableData),
		Images:  cache.NewSQLiteRepository(db, cache.TableImages),
		Queue:   queue.NewSQLiteRepository(db),
		Network: network,
	}, opts...)
}

// Recover moves every Updating record and request back to NotUpdated in a
// single transaction. Nothing can be mid-attempt before an engine is running,
// so any Updating row is a leftover.
func Recover(ctx context.Context, db *sql.DB) error {
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, t := range []cache.Table{cache.TableData, cache.TableImages} {
			if _, err := cache.NewSQLiteRepository(tx, t).ResetUpdating(ctx); err != nil {
				return err
			}
		}
		_, err := queue.NewSQLiteRepository(tx).ResetUpdating(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("recover stale records: %w", err)
	}
	return nil
}

// Close stops accepting new operations, waits for running ones and drains
// pending completion callbacks. It is safe to call more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()

		e.wg.Wait()
		if e.dispatcher != nil {
			e.dispatcher.Close()
		}
	})
	return nil
}

// PendingCount returns the number of queued requests.
func (e *Engine) PendingCount(ctx context.Context) (int, error) {
	return e.queue.Count(ctx)
}

// Pending returns the queued requests in delivery order.
func (e *Engine) Pending(ctx context.Context) ([]*models.PendingRequest, error) {
	return e.queue.ListPending(ctx)
}

// begin registers a background operation; it fails once Close has started.
func (e *Engine) begin() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false
	}
	e.wg.Add(1)
	return true
}

func (e *Engine) gate(table cache.Table) *flushGate {
	if table == cache.TableImages {
		return &e.imagesGate
	}
	return &e.dataGate
}

func (e *Engine) dispatch(fn func()) {
	if fn != nil {
		e.callbacks.Dispatch(fn)
	}
}

// acquire waits for a worker slot. It is the only point where cancelling
// ctx stops an operation that has not reached the network yet.
func (e *Engine) acquire(ctx context.Context) error {
	return e.pool.Acquire(ctx, 1)
}

func (e *Engine) release() { e.pool.Release(1) }

// callContext derives the context of a network call: it keeps ctx's values,
// ignores its cancellation and is bounded by the request timeout.
func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if e.opts.requestTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, e.opts.requestTimeout)
}

package offline

import (
	"time"

	"github.com/dmitrijs2005/offlinesync/internal/client/future"
	"github.com/dmitrijs2005/offlinesync/internal/logging"
)

const (
	DefaultWorkers        = 4
	DefaultRequestTimeout = 30 * time.Second
)

type options struct {
	workers        int
	requestTimeout time.Duration
	refreshOnSync  bool
	logger         logging.Logger
	executor       future.Executor
}

func defaultOptions() options {
	return options{
		workers:        DefaultWorkers,
		requestTimeout: DefaultRequestTimeout,
		logger:         logging.Nop(),
	}
}

// Option configures an Engine.
type Option func(*options)

// WithWorkers bounds the number of concurrent network calls.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithRequestTimeout bounds each network call. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.requestTimeout = d
		}
	}
}

// WithRefreshOnSync makes Synchronize re-fetch cache records whose last
// attempt failed, after the unsent queue has been drained.
func WithRefreshOnSync(enabled bool) Option {
	return func(o *options) { o.refreshOnSync = enabled }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithExecutor sets where completion callbacks run. By default the engine
// owns a future.Dispatcher and delivers every callback on its goroutine, in
// order; future.Inline{} runs them on the goroutine that completes the
// operation.
func WithExecutor(x future.Executor) Option {
	return func(o *options) { o.executor = x }
}

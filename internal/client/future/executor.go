package future

import "sync"

// Executor runs completion callbacks.
type Executor interface {
	Dispatch(fn func())
}

// Inline runs callbacks on the goroutine that dispatches them.
type Inline struct{}

func (Inline) Dispatch(fn func()) { fn() }

// Dispatcher runs callbacks one at a time, in dispatch order, on a single
// goroutine. Dispatch never blocks: the backlog is unbounded, so a callback
// may itself dispatch or wait on other work without deadlocking the queue.
type Dispatcher struct {
	mu      sync.Mutex
	backlog []func()
	wake    chan struct{}
	closed  bool
	stopped chan struct{}
	onPanic func(any)
}

// NewDispatcher starts the callback goroutine. onPanic, when non-nil,
// receives values recovered from panicking callbacks.
func NewDispatcher(onPanic func(any)) *Dispatcher {
	d := &Dispatcher{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		onPanic: onPanic,
	}
	go d.loop()
	return d
}

// Dispatch queues fn. After Close, fn runs inline so no callback is lost.
func (d *Dispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.run(fn)
		return
	}
	d.backlog = append(d.backlog, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting work and blocks until the backlog is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.stopped
		return
	}
	d.closed = true
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	<-d.stopped
}

func (d *Dispatcher) loop() {
	defer close(d.stopped)
	for {
		d.mu.Lock()
		batch := d.backlog
		d.backlog = nil
		closed := d.closed
		d.mu.Unlock()

		for _, fn := range batch {
			d.run(fn)
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-d.wake
	}
}

func (d *Dispatcher) run(fn func()) {
	defer func() {
		if p := recover(); p != nil && d.onPanic != nil {
			d.onPanic(p)
		}
	}()
	fn()
}

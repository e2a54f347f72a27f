// Package debounce coalesces bursts of calls into a single trailing call.
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCanceled is reported to callers whose pending call was dropped by
// Cancel or Stop.
var ErrCanceled = errors.New("debounce: call canceled")

// Func is the operation being debounced.
type Func[A any] func(ctx context.Context, arg A) error

// Result is the shared outcome of one coalesced execution.
type Result struct {
	done chan struct{}
	err  error
}

func newResult() *Result {
	return &Result{done: make(chan struct{})}
}

func (r *Result) finish(err error) {
	r.err = err
	close(r.done)
}

// Done is closed when the execution this result belongs to has finished.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Err returns the execution's error. It is only meaningful after Done is closed.
func (r *Result) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the execution finishes or ctx ends.
func (r *Result) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// batch collects the calls for one key that fall inside one window.
type batch[A any] struct {
	arg    A
	seq    uint64 // bumped on every call; stale timers compare against it
	timer  *time.Timer
	result *Result
}

// Debouncer delays calls per key and runs only the last one of each burst.
//
// Executions for the same key never overlap and run in the order their
// windows closed. Different keys are independent.
type Debouncer[K comparable, A any] struct {
	mu      sync.Mutex
	wait    time.Duration
	fn      Func[A]
	pending map[K]*batch[A]
	// tail holds, per key, a channel closed when the most recently started
	// execution finishes. The next execution waits on it.
	tail    map[K]chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
}

// New creates a Debouncer that runs fn once no new call for a key has
// arrived for wait.
func New[K comparable, A any](wait time.Duration, fn Func[A]) *Debouncer[K, A] {
	ctx, cancel := context.WithCancel(context.Background())

	return &Debouncer[K, A]{
		wait:    wait,
		fn:      fn,
		pending: make(map[K]*batch[A]),
		tail:    make(map[K]chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Wait returns the current delay window.
func (d *Debouncer[K, A]) Wait() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.wait
}

// SetWait changes the delay window. Calls already scheduled keep the window
// they were scheduled with; the next call for their key uses the new one.
func (d *Debouncer[K, A]) SetWait(wait time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.wait = wait
}

// Call schedules fn(arg) for key. A later Call for the same key inside the
// window replaces arg and restarts the window; every caller of the burst
// receives the same Result.
func (d *Debouncer[K, A]) Call(key K, arg A) *Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		r := newResult()
		r.finish(ErrCanceled)

		return r
	}

	b, ok := d.pending[key]
	if !ok {
		b = &batch[A]{result: newResult()}
		d.pending[key] = b
	}

	b.arg = arg
	b.seq++
	seq := b.seq

	if b.timer != nil {
		b.timer.Stop()
	}

	b.timer = time.AfterFunc(d.wait, func() {
		d.fire(key, b, seq)
	})

	return b.result
}

func (d *Debouncer[K, A]) fire(key K, b *batch[A], seq uint64) {
	d.mu.Lock()

	if d.pending[key] != b || b.seq != seq {
		d.mu.Unlock()

		return
	}

	delete(d.pending, key)

	prev := d.tail[key]
	done := make(chan struct{})
	d.tail[key] = done
	arg := b.arg
	ctx := d.ctx

	d.mu.Unlock()

	if prev != nil {
		<-prev
	}

	err := d.fn(ctx, arg)
	b.result.finish(err)

	d.mu.Lock()
	if d.tail[key] == done {
		delete(d.tail, key)
	}
	d.mu.Unlock()

	close(done)
}

// Pending reports whether a call for key is waiting for its window to close.
func (d *Debouncer[K, A]) Pending(key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.pending[key]

	return ok
}

// Cancel drops the pending call for key, if any. An execution that has
// already started is not interrupted.
func (d *Debouncer[K, A]) Cancel(key K) {
	d.mu.Lock()

	b, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
		b.timer.Stop()
		b.seq++
	}

	d.mu.Unlock()

	if ok {
		b.result.finish(ErrCanceled)
	}
}

// Stop cancels every pending call and the context passed to running
// executions. Calls made after Stop fail with ErrCanceled.
func (d *Debouncer[K, A]) Stop() {
	d.mu.Lock()

	d.stopped = true
	dropped := make([]*batch[A], 0, len(d.pending))

	for key, b := range d.pending {
		delete(d.pending, key)
		b.timer.Stop()
		b.seq++
		dropped = append(dropped, b)
	}

	d.mu.Unlock()

	d.cancel()

	for _, b := range dropped {
		b.result.finish(ErrCanceled)
	}
}

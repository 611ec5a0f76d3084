// Package search debounces search-as-you-type. A new query is dispatched
// only after the input has been stable for a quiet period, and a response is
// delivered only while its query is still the newest one issued.
// Superseded responses are discarded.
package search

import (
	"context"
	"sync"
	"time"
)

const defaultQuiet = 250 * time.Millisecond

// Runner executes one query against the backend.
type Runner[R any] func(ctx context.Context, q string) (R, error)

// Dispatcher debounces keystrokes into backend queries. deliver runs on the
// dispatch goroutine and only ever sees results of the newest query.
type Dispatcher[R any] struct {
	quiet   time.Duration
	run     Runner[R]
	deliver func(q string, result R, err error)

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

// NewDispatcher creates a dispatcher with the default quiet period.
func NewDispatcher[R any](run Runner[R], deliver func(q string, result R, err error)) *Dispatcher[R] {
	return &Dispatcher[R]{quiet: defaultQuiet, run: run, deliver: deliver}
}

// SetQuiet overrides the quiet period. Intended for tests.
func (d *Dispatcher[R]) SetQuiet(q time.Duration) {
	d.quiet = q
}

// Type feeds the current input text. Each call restarts the quiet timer;
// the query runs only once the input has stopped changing.
func (d *Dispatcher[R]) Type(ctx context.Context, q string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.dispatch(ctx, gen, q)
	})
}

// Flush dispatches the pending query immediately, skipping the remaining
// quiet time. No-op when nothing is pending.
func (d *Dispatcher[R]) Flush(ctx context.Context, q string) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	d.dispatch(ctx, gen, q)
}

func (d *Dispatcher[R]) dispatch(ctx context.Context, gen uint64, q string) {
	result, err := d.run(ctx, q)

	d.mu.Lock()
	stale := gen != d.gen
	d.mu.Unlock()
	if stale {
		return // a newer query has been issued; discard
	}
	d.deliver(q, result, err)
}

// Stop cancels any pending dispatch.
func (d *Dispatcher[R]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

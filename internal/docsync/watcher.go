package docsync

import (
	"context"
	"log/slog"
	"time"

	"github.com/listd/listd/internal/events"
)

const (
	defaultPollInterval = 2 * time.Second
	changesPageLimit    = 200
)

// Watcher polls the change feed and publishes notifications onto a bus.
// One watcher runs per session; views subscribe to the bus rather than
// polling themselves.
type Watcher struct {
	client   *Client
	bus      *events.Bus
	interval time.Duration
	afterSeq int64
	persist  func(int64) error
}

// NewWatcher creates a watcher starting after the given cursor. afterSeq 0
// means "from the beginning"; callers that bootstrap from a full reload
// usually pass the feed's current last-seq instead.
func NewWatcher(client *Client, bus *events.Bus, afterSeq int64) *Watcher {
	return &Watcher{
		client:   client,
		bus:      bus,
		interval: defaultPollInterval,
		afterSeq: afterSeq,
	}
}

// SetInterval overrides the poll interval. Intended for tests.
func (w *Watcher) SetInterval(d time.Duration) {
	w.interval = d
}

// OnAdvance registers a callback invoked with the new cursor after each poll
// that delivered changes, so the next run can resume where this one stopped.
// A persist failure is logged, not fatal; the worst case is replayed changes.
func (w *Watcher) OnAdvance(fn func(int64) error) {
	w.persist = fn
}

// Run polls until ctx is done. Poll failures are logged and retried on the
// next tick; the cursor only advances past pages that were delivered.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.poll(ctx); err != nil {
				slog.Warn("change poll", "err", err)
			}
		}
	}
}

// poll drains the feed from the current cursor, publishing every change.
func (w *Watcher) poll(ctx context.Context) error {
	start := w.afterSeq
	for {
		resp, err := w.client.Changes(ctx, w.afterSeq, changesPageLimit)
		if err != nil {
			return err
		}
		for _, ch := range resp.Changes {
			w.bus.Publish(ch)
		}
		if resp.LastSeq > w.afterSeq {
			w.afterSeq = resp.LastSeq
		}
		if !resp.HasMore {
			break
		}
	}
	if w.persist != nil && w.afterSeq != start {
		if err := w.persist(w.afterSeq); err != nil {
			slog.Warn("persist change cursor", "seq", w.afterSeq, "err", err)
		}
	}
	return nil
}

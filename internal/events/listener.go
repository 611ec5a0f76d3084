package events

import (
	"context"
	"log/slog"
)

// Reloader is the slice of the projection store the listener drives.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Listener binds a bus subscription to a projection reload. Any qualifying
// change for the entity type triggers a full reload of that collection; the
// listener does not filter by entity id. Conservative and bandwidth-costly,
// but it never misses a change.
type Listener struct {
	bus    *Bus
	et     EntityType
	target Reloader
	unsub  func()
}

// NewListener creates an unattached listener for one entity type.
func NewListener(bus *Bus, et EntityType, target Reloader) *Listener {
	return &Listener{bus: bus, et: et, target: target}
}

// Attach subscribes to the bus. Calling Attach twice without Detach is a
// no-op so a view re-activating cannot double-register.
func (l *Listener) Attach(ctx context.Context) {
	if l.unsub != nil {
		return
	}
	l.unsub = l.bus.Subscribe(l.et, func(ch Change) {
		if err := l.target.Reload(ctx); err != nil {
			slog.Warn("listener reload", "entity", l.et, "action", ch.Action, "err", err)
		}
	})
}

// Detach removes the subscription. Safe to call when not attached.
func (l *Listener) Detach() {
	if l.unsub != nil {
		l.unsub()
		l.unsub = nil
	}
}

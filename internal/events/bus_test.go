package events

import (
	"context"
	"sync"
	"testing"
)

func TestSubscribePublish(t *testing.T) {
	bus := NewBus()

	var got []Change
	unsub := bus.Subscribe(EntityItems, func(ch Change) {
		got = append(got, ch)
	})
	defer unsub()

	bus.Publish(Change{EntityType: EntityItems, EntityID: "42", Action: ActionUpdated})
	if len(got) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(got))
	}
	if got[0].EntityID != "42" || got[0].Action != ActionUpdated {
		t.Fatalf("delivered %+v", got[0])
	}

	// Other entity types are not delivered.
	bus.Publish(Change{EntityType: EntityLists, EntityID: "1", Action: ActionCreated})
	if len(got) != 1 {
		t.Fatalf("got %d deliveries after other-type publish, want 1", len(got))
	}
}

func TestPublishNormalizesEntityType(t *testing.T) {
	bus := NewBus()

	var got []Change
	unsub := bus.Subscribe(EntityItems, func(ch Change) { got = append(got, ch) })
	defer unsub()

	// Servers may send singular or alias forms; delivery is on the
	// canonical type.
	bus.Publish(Change{EntityType: "item", EntityID: "42", Action: ActionUpdated})
	bus.Publish(Change{EntityType: "todo", EntityID: "43", Action: ActionCreated})
	if len(got) != 2 {
		t.Fatalf("got %d deliveries for singular/alias forms, want 2", len(got))
	}
	for _, ch := range got {
		if ch.EntityType != EntityItems {
			t.Fatalf("delivered entity type %q, want canonical %q", ch.EntityType, EntityItems)
		}
	}

	bus.Publish(Change{EntityType: "widgets", EntityID: "44", Action: ActionUpdated})
	if len(got) != 2 {
		t.Fatalf("unknown entity type delivered, got %d", len(got))
	}
}

func TestPublishDropsUnknownActions(t *testing.T) {
	bus := NewBus()

	delivered := 0
	unsub := bus.Subscribe(EntityItems, func(Change) { delivered++ })
	defer unsub()

	bus.Publish(Change{EntityType: EntityItems, EntityID: "42", Action: "ignored-type"})
	if delivered != 0 {
		t.Fatalf("unknown action delivered %d times, want 0", delivered)
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	bus := NewBus()

	delivered := 0
	unsub := bus.Subscribe(EntityItems, func(Change) { delivered++ })
	unsub()
	unsub() // second call is a no-op

	bus.Publish(Change{EntityType: EntityItems, Action: ActionCreated})
	if delivered != 0 {
		t.Fatalf("delivered %d after unsubscribe, want 0", delivered)
	}
	if n := bus.SubscriberCount(EntityItems); n != 0 {
		t.Fatalf("subscriber count = %d, want 0", n)
	}
}

func TestPublishConcurrent(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	delivered := 0
	unsub := bus.Subscribe(EntityItems, func(Change) {
		mu.Lock()
		delivered++
		mu.Unlock()
	})
	defer unsub()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Change{EntityType: EntityItems, Action: ActionUpdated})
		}()
	}
	wg.Wait()

	if delivered != 10 {
		t.Fatalf("delivered %d, want 10", delivered)
	}
}

type countingReloader struct {
	mu    sync.Mutex
	count int
}

func (r *countingReloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return nil
}

func (r *countingReloader) reloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func TestListenerReloadsOnQualifyingEvent(t *testing.T) {
	bus := NewBus()
	target := &countingReloader{}
	l := NewListener(bus, EntityItems, target)

	l.Attach(context.Background())
	defer l.Detach()

	bus.Publish(Change{EntityType: EntityItems, EntityID: "42", Action: ActionUpdated})
	if n := target.reloads(); n != 1 {
		t.Fatalf("reloads = %d after updated event, want exactly 1", n)
	}

	bus.Publish(Change{EntityType: EntityItems, EntityID: "42", Action: "ignored-type"})
	if n := target.reloads(); n != 1 {
		t.Fatalf("reloads = %d after ignored action, want still 1", n)
	}
}

func TestListenerAttachTwice(t *testing.T) {
	bus := NewBus()
	target := &countingReloader{}
	l := NewListener(bus, EntityItems, target)

	l.Attach(context.Background())
	l.Attach(context.Background()) // re-activation must not double-register
	defer l.Detach()

	bus.Publish(Change{EntityType: EntityItems, Action: ActionCreated})
	if n := target.reloads(); n != 1 {
		t.Fatalf("reloads = %d, want 1 (no double registration)", n)
	}
}

func TestListenerDetach(t *testing.T) {
	bus := NewBus()
	target := &countingReloader{}
	l := NewListener(bus, EntityItems, target)

	l.Attach(context.Background())
	l.Detach()
	l.Detach() // safe when not attached

	bus.Publish(Change{EntityType: EntityItems, Action: ActionDeleted})
	if n := target.reloads(); n != 0 {
		t.Fatalf("reloads = %d after detach, want 0", n)
	}
	if n := bus.SubscriberCount(EntityItems); n != 0 {
		t.Fatalf("dangling handlers: %d", n)
	}
}

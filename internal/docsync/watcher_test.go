package docsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/listd/listd/internal/events"
)

func TestWatcherPollPublishesAndAdvances(t *testing.T) {
	// Two pages of changes, then an empty feed.
	pages := map[string]ChangesResponse{
		"0": {
			Changes: []events.Change{
				{Seq: 1, EntityType: events.EntityItems, EntityID: "i1", Action: events.ActionCreated},
				{Seq: 2, EntityType: events.EntityLists, EntityID: "l1", Action: events.ActionUpdated},
			},
			LastSeq: 2,
			HasMore: true,
		},
		"2": {
			Changes: []events.Change{
				{Seq: 3, EntityType: events.EntityItems, EntityID: "i1", Action: events.ActionDeleted},
			},
			LastSeq: 3,
		},
		"3": {LastSeq: 3},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after_seq")
		resp, ok := pages[after]
		if !ok {
			t.Errorf("unexpected cursor %q", after)
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	bus := events.NewBus()
	var mu sync.Mutex
	var itemChanges []events.Change
	unsub := bus.Subscribe(events.EntityItems, func(ch events.Change) {
		mu.Lock()
		itemChanges = append(itemChanges, ch)
		mu.Unlock()
	})
	defer unsub()

	w := NewWatcher(New(srv.URL, "k", "dev"), bus, 0)
	if err := w.poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(itemChanges) != 2 {
		t.Fatalf("item changes = %d, want 2 (list change must not reach item subscribers)", len(itemChanges))
	}
	if itemChanges[0].Action != events.ActionCreated || itemChanges[1].Action != events.ActionDeleted {
		t.Fatalf("changes = %+v", itemChanges)
	}
	if w.afterSeq != 3 {
		t.Fatalf("cursor = %d, want 3", w.afterSeq)
	}
}

func TestWatcherPersistsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after_seq")
		if after == "0" {
			json.NewEncoder(w).Encode(ChangesResponse{
				Changes: []events.Change{{Seq: 8, EntityType: events.EntityItems, Action: events.ActionUpdated}},
				LastSeq: 8,
			})
			return
		}
		// Quiet feed: nothing new past the cursor.
		n, _ := strconv.ParseInt(after, 10, 64)
		json.NewEncoder(w).Encode(ChangesResponse{LastSeq: n})
	}))
	defer srv.Close()

	var persisted []int64
	w := NewWatcher(New(srv.URL, "k", "dev"), events.NewBus(), 0)
	w.OnAdvance(func(seq int64) error {
		persisted = append(persisted, seq)
		return nil
	})

	if err := w.poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(persisted) != 1 || persisted[0] != 8 {
		t.Fatalf("persisted = %v, want [8]", persisted)
	}

	// A poll that moves nothing must not rewrite the cursor.
	if err := w.poll(context.Background()); err != nil {
		t.Fatalf("quiet poll: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("persisted = %v after quiet poll, want unchanged", persisted)
	}
}

func TestWatcherPollErrorKeepsCursor(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"internal","message":"boom"}`))
	}))
	defer srv.Close()

	w := NewWatcher(New(srv.URL, "k", "dev"), events.NewBus(), 5)
	if err := w.poll(context.Background()); err == nil {
		t.Fatal("expected poll error")
	}
	if w.afterSeq != 5 {
		t.Fatalf("cursor moved to %d on failure, want 5", w.afterSeq)
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestWatcherPagination(t *testing.T) {
	// Verify the watcher keeps pulling while has_more is set.
	var cursors []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after_seq")
		cursors = append(cursors, after)
		n, _ := strconv.ParseInt(after, 10, 64)
		resp := ChangesResponse{LastSeq: n + 1, HasMore: n+1 < 3}
		if n < 3 {
			resp.Changes = []events.Change{{Seq: n + 1, EntityType: events.EntityItems, Action: events.ActionUpdated}}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	w := NewWatcher(New(srv.URL, "k", "dev"), events.NewBus(), 0)
	if err := w.poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(cursors) != 3 {
		t.Fatalf("cursors = %v, want three pages", cursors)
	}
}

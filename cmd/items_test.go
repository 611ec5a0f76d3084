package cmd

import (
	"testing"

	"github.com/listd/listd/internal/cache"
	"github.com/listd/listd/internal/models"
	"github.com/listd/listd/internal/session"
)

func TestCachedItemsFallback(t *testing.T) {
	c, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	if err := c.PutLists([]models.List{{ID: "l1", Title: "Groceries"}}); err != nil {
		t.Fatalf("PutLists: %v", err)
	}
	if err := c.PutItems("l1", []models.Item{
		{ID: "i1", ListID: "l1", Title: "milk", Position: 0},
		{ID: "i2", ListID: "l1", Title: "eggs", Done: true, Position: 1},
	}); err != nil {
		t.Fatalf("PutItems: %v", err)
	}

	s := &session.Session{Config: &models.Config{}, Cache: c}

	// Resolve by title against the cached list snapshot, no server involved.
	items, err := cachedItems(s, "groceries")
	if err != nil {
		t.Fatalf("cachedItems: %v", err)
	}
	if len(items) != 2 || items[0].Title != "milk" || !items[1].Done {
		t.Fatalf("items = %+v", items)
	}

	// Default list used when no reference is given.
	s.Config.DefaultList = "l1"
	if items, err = cachedItems(s, ""); err != nil || len(items) != 2 {
		t.Fatalf("default list fallback: items = %+v, err = %v", items, err)
	}

	if _, err := cachedItems(s, "nope"); err == nil {
		t.Fatal("unknown reference must fail, not return another list's items")
	}
}

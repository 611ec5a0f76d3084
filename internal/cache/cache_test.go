package cache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/listd/listd/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestListsRoundTrip(t *testing.T) {
	c := openTestCache(t)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	in := []models.List{
		{ID: "l1", Title: "Groceries", Position: 0, Role: models.RoleOwner, ItemCount: 3, CreatedAt: now, UpdatedAt: now},
		{ID: "l2", Title: "Work", Position: 1, Role: models.RoleViewer, CreatedAt: now, UpdatedAt: now},
	}
	if err := c.PutLists(in); err != nil {
		t.Fatalf("PutLists: %v", err)
	}

	got, err := c.Lists()
	if err != nil {
		t.Fatalf("Lists: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lists, want 2", len(got))
	}
	if got[0].ID != "l1" || got[0].Role != models.RoleOwner || got[0].ItemCount != 3 {
		t.Errorf("first list = %+v", got[0])
	}
	if !got[0].CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", got[0].CreatedAt, now)
	}
}

func TestPutListsReplacesSnapshot(t *testing.T) {
	c := openTestCache(t)

	if err := c.PutLists([]models.List{{ID: "old", Title: "Old"}}); err != nil {
		t.Fatalf("PutLists: %v", err)
	}
	if err := c.PutLists([]models.List{{ID: "new", Title: "New"}}); err != nil {
		t.Fatalf("PutLists: %v", err)
	}

	got, err := c.Lists()
	if err != nil {
		t.Fatalf("Lists: %v", err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Fatalf("lists = %+v, want only the new snapshot", got)
	}
}

func TestItemsScopedByList(t *testing.T) {
	c := openTestCache(t)

	a := []models.Item{
		{ID: "i1", ListID: "la", Title: "milk", Position: 0},
		{ID: "i2", ListID: "la", Title: "eggs", Done: true, Position: 1},
	}
	b := []models.Item{{ID: "i3", ListID: "lb", Title: "report", Position: 0}}
	if err := c.PutItems("la", a); err != nil {
		t.Fatalf("PutItems la: %v", err)
	}
	if err := c.PutItems("lb", b); err != nil {
		t.Fatalf("PutItems lb: %v", err)
	}

	got, err := c.Items("la")
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(got) != 2 || got[1].ID != "i2" || !got[1].Done {
		t.Fatalf("items la = %+v", got)
	}

	// Replacing one list's items must not touch the other's.
	if err := c.PutItems("la", nil); err != nil {
		t.Fatalf("PutItems empty: %v", err)
	}
	if got, _ := c.Items("la"); len(got) != 0 {
		t.Fatalf("items la = %+v after clear", got)
	}
	if got, _ := c.Items("lb"); len(got) != 1 {
		t.Fatalf("items lb = %+v, want untouched", got)
	}
}

func TestSnapshotOnDisk(t *testing.T) {
	// Inspect the database file with an independent driver to make sure the
	// snapshot is durable, not just visible through the open connection.
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if err := c.PutLists([]models.List{{ID: "l1", Title: "Groceries", Role: models.RoleOwner}}); err != nil {
		t.Fatalf("PutLists: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := sql.Open("sqlite3", filepath.Join(dir, dbFile))
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer raw.Close()

	var title, role string
	if err := raw.QueryRow(`SELECT title, role FROM lists WHERE id = 'l1'`).Scan(&title, &role); err != nil {
		t.Fatalf("query raw db: %v", err)
	}
	if title != "Groceries" || role != "owner" {
		t.Fatalf("row = (%q, %q)", title, role)
	}
}

func TestLastSeq(t *testing.T) {
	c := openTestCache(t)

	seq, err := c.LastSeq()
	if err != nil {
		t.Fatalf("LastSeq: %v", err)
	}
	if seq != 0 {
		t.Fatalf("fresh cache last_seq = %d, want 0", seq)
	}

	if err := c.SetLastSeq(42); err != nil {
		t.Fatalf("SetLastSeq: %v", err)
	}
	if err := c.SetLastSeq(99); err != nil {
		t.Fatalf("SetLastSeq again: %v", err)
	}

	seq, err = c.LastSeq()
	if err != nil {
		t.Fatalf("LastSeq: %v", err)
	}
	if seq != 99 {
		t.Fatalf("last_seq = %d, want 99", seq)
	}
}

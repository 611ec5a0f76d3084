// Package cache persists the last confirmed projection snapshot to a local
// sqlite database so the CLI can show last-known state before the first
// reload completes (or offline). It is a write-behind copy of confirmed
// data only; pending optimistic values are never cached.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/listd/listd/internal/models"
	_ "modernc.org/sqlite"
)

const dbFile = "cache.db"

const schema = `
CREATE TABLE IF NOT EXISTS lists (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    position   INTEGER NOT NULL DEFAULT 0,
    role       TEXT NOT NULL DEFAULT 'owner',
    item_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME,
    updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS items (
    id         TEXT PRIMARY KEY,
    list_id    TEXT NOT NULL,
    title      TEXT NOT NULL,
    note       TEXT NOT NULL DEFAULT '',
    done       INTEGER NOT NULL DEFAULT 0,
    position   INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME,
    updated_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_items_list ON items(list_id, position);
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Cache wraps the snapshot database.
type Cache struct {
	conn *sql.DB
}

// Open opens (creating if needed) the cache database under dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	conn, err := sql.Open("sqlite", filepath.Join(dir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Cache{conn: conn}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// PutLists replaces the cached list snapshot.
func (c *Cache) PutLists(lists []models.List) error {
	tx, err := c.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM lists`); err != nil {
		return fmt.Errorf("clear lists: %w", err)
	}
	for _, l := range lists {
		_, err := tx.Exec(
			`INSERT INTO lists (id, title, position, role, item_count, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.Title, l.Position, string(l.Role), l.ItemCount,
			l.CreatedAt.UTC().Format(time.RFC3339), l.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert list %s: %w", l.ID, err)
		}
	}
	return tx.Commit()
}

// Lists returns the cached list snapshot in position order.
func (c *Cache) Lists() ([]models.List, error) {
	rows, err := c.conn.Query(
		`SELECT id, title, position, role, item_count, created_at, updated_at
		 FROM lists ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()

	var out []models.List
	for rows.Next() {
		var l models.List
		var role, createdAt, updatedAt string
		if err := rows.Scan(&l.ID, &l.Title, &l.Position, &role, &l.ItemCount, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		l.Role = models.Role(role)
		l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		l.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, l)
	}
	return out, rows.Err()
}

// PutItems replaces the cached items of one list.
func (c *Cache) PutItems(listID string, items []models.Item) error {
	tx, err := c.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM items WHERE list_id = ?`, listID); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for _, it := range items {
		done := 0
		if it.Done {
			done = 1
		}
		_, err := tx.Exec(
			`INSERT INTO items (id, list_id, title, note, done, position, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, it.ListID, it.Title, it.Note, done, it.Position,
			it.CreatedAt.UTC().Format(time.RFC3339), it.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// Items returns the cached items of one list in position order.
func (c *Cache) Items(listID string) ([]models.Item, error) {
	rows, err := c.conn.Query(
		`SELECT id, list_id, title, note, done, position, created_at, updated_at
		 FROM items WHERE list_id = ? ORDER BY position ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		var it models.Item
		var done int
		var createdAt, updatedAt string
		if err := rows.Scan(&it.ID, &it.ListID, &it.Title, &it.Note, &done, &it.Position, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Done = done != 0
		it.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		it.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, it)
	}
	return out, rows.Err()
}

// SetLastSeq records the change-feed cursor alongside the snapshot.
func (c *Cache) SetLastSeq(seq int64) error {
	_, err := c.conn.Exec(
		`INSERT INTO meta (key, value) VALUES ('last_seq', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprintf("%d", seq),
	)
	if err != nil {
		return fmt.Errorf("set last_seq: %w", err)
	}
	return nil
}

// LastSeq returns the recorded change-feed cursor, 0 when none.
func (c *Cache) LastSeq() (int64, error) {
	var val string
	err := c.conn.QueryRow(`SELECT value FROM meta WHERE key = 'last_seq'`).Scan(&val)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get last_seq: %w", err)
	}
	var seq int64
	if _, err := fmt.Sscanf(val, "%d", &seq); err != nil {
		return 0, fmt.Errorf("parse last_seq %q: %w", val, err)
	}
	return seq, nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/listd/listd/internal/models"
	"github.com/listd/listd/internal/projection"
	"github.com/listd/listd/internal/session"
)

// resolveList finds a list by id, id prefix, or exact title. Requires the
// lists store to be loaded.
func resolveList(s *session.Session, ref string) (string, error) {
	return resolveListIn(s.Lists.Snapshot(), ref, s.Config.DefaultList)
}

// resolveListIn resolves a list reference against any list snapshot, live or
// cached. An empty ref falls back to the configured default list.
func resolveListIn(lists []models.List, ref, defaultID string) (string, error) {
	if ref == "" {
		if defaultID != "" {
			return defaultID, nil
		}
		return "", fmt.Errorf("no list given and no default list configured")
	}

	var matches []string
	for _, l := range lists {
		if l.ID == ref {
			return l.ID, nil
		}
		if strings.HasPrefix(l.ID, ref) || strings.EqualFold(l.Title, ref) {
			matches = append(matches, l.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no list matching %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveItem finds an item by id, id prefix, or exact title within a
// loaded item store.
func resolveItem(store *projection.Store[models.Item], ref string) (string, error) {
	var matches []string
	for _, it := range store.Snapshot() {
		if it.ID == ref {
			return it.ID, nil
		}
		if strings.HasPrefix(it.ID, ref) || strings.EqualFold(it.Title, ref) {
			matches = append(matches, it.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no item matching %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous (%d matches)", ref, len(matches))
	}
}

// Package session is the composition root for one client session: config,
// sync client, change bus, snapshot cache, and the projection stores with
// their mutators. All mutation flows funnel through the mutators built
// here; nothing else writes to the stores.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/listd/listd/internal/cache"
	"github.com/listd/listd/internal/config"
	"github.com/listd/listd/internal/docsync"
	"github.com/listd/listd/internal/events"
	"github.com/listd/listd/internal/models"
	"github.com/listd/listd/internal/optimistic"
	"github.com/listd/listd/internal/projection"
)

// Session owns the per-run object graph.
type Session struct {
	Dir    string
	Config *models.Config
	Client *docsync.Client
	Bus    *events.Bus
	Cache  *cache.Cache

	Lists    *projection.Store[models.List]
	ListsMut *optimistic.Mutator[models.List]
}

// Open loads config, opens the cache, and builds the client graph. It does
// not hit the network; callers reload the stores they need.
func Open() (*Session, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("no server configured: run `listd login` or set %s", config.EnvServerURL)
	}
	if err := config.EnsureDeviceID(dir, cfg); err != nil {
		return nil, fmt.Errorf("assign device id: %w", err)
	}

	c, err := cache.Open(dir)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Dir:    dir,
		Config: cfg,
		Client: docsync.New(cfg.ServerURL, cfg.APIKey, cfg.DeviceID),
		Bus:    events.NewBus(),
		Cache:  c,
	}

	s.Lists = projection.NewStore("lists",
		func(ctx context.Context) ([]models.List, error) {
			lists, err := s.Client.ListLists(ctx)
			if err != nil {
				return nil, err
			}
			if cerr := s.Cache.PutLists(lists); cerr != nil {
				slog.Warn("cache lists", "err", cerr)
			}
			return lists, nil
		},
		func(l models.List) string { return l.ID })
	s.ListsMut = optimistic.NewMutator(s.Lists)

	return s, nil
}

// Close releases the cache handle.
func (s *Session) Close() error {
	return s.Cache.Close()
}

// Items builds the projection store and mutator for one list's items, with
// cache write-behind on every successful reload.
func (s *Session) Items(listID string) (*projection.Store[models.Item], *optimistic.Mutator[models.Item]) {
	store := projection.NewStore("items:"+listID,
		func(ctx context.Context) ([]models.Item, error) {
			items, err := s.Client.ListItems(ctx, listID)
			if err != nil {
				return nil, err
			}
			if cerr := s.Cache.PutItems(listID, items); cerr != nil {
				slog.Warn("cache items", "list", listID, "err", cerr)
			}
			return items, nil
		},
		func(it models.Item) string { return it.ID })
	return store, optimistic.NewMutator(store)
}

// Permissions builds the projection store and mutator for a list's members.
func (s *Session) Permissions(listID string) (*projection.Store[models.Permission], *optimistic.Mutator[models.Permission]) {
	store := projection.NewStore("permissions:"+listID,
		func(ctx context.Context) ([]models.Permission, error) {
			return s.Client.GetPermissions(ctx, listID)
		},
		func(p models.Permission) string { return p.UserID })
	return store, optimistic.NewMutator(store)
}

// Invitations builds the projection store and mutator for a list's pending
// invitations.
func (s *Session) Invitations(listID string) (*projection.Store[models.Invitation], *optimistic.Mutator[models.Invitation]) {
	store := projection.NewStore("invitations:"+listID,
		func(ctx context.Context) ([]models.Invitation, error) {
			return s.Client.ListInvitations(ctx, listID)
		},
		func(inv models.Invitation) string { return inv.ID })
	return store, optimistic.NewMutator(store)
}

// Watch builds the change watcher starting from the cached cursor and
// persisting it as polls drain, so the next run resumes instead of replaying
// the full history. The caller runs it (usually in a goroutine) until its
// ctx is done.
func (s *Session) Watch() *docsync.Watcher {
	seq, err := s.Cache.LastSeq()
	if err != nil {
		slog.Warn("load change cursor", "err", err)
	}
	w := docsync.NewWatcher(s.Client, s.Bus, seq)
	w.OnAdvance(s.Cache.SetLastSeq)
	return w
}

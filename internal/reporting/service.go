package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// SnapshotSource supplies consistent reads of the store.
type SnapshotSource interface {
	Snapshot() Snapshot
}

// Service serves dashboards, caching them per store revision.
type Service struct {
	source SnapshotSource
	cache  *Cache
	opts   Options
	rt     shared.Runtime
	group  singleflight.Group
}

// NewService builds Service. cache may be nil.
func NewService(source SnapshotSource, cache *Cache, opts Options, rt shared.Runtime) *Service {
	return &Service{source: source, cache: cache, opts: opts.withDefaults(), rt: rt.WithDefaults()}
}

// Dashboard returns the dashboard for the current store revision. Concurrent
// callers asking for the same revision share one build.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	snap := s.source.Snapshot()
	s.rt.Recorder.LowStockItems(len(LowStockItems(snap.Inventory)))

	key, err := s.cache.BuildKey(ctx, "reporting", "dashboard", s.optionsToken(), strconv.FormatUint(snap.Revision, 10))
	if err != nil {
		s.rt.Logger.Warn("report cache unavailable", slog.Any("error", err))
		return Build(snap, s.opts, s.rt.Clock.Now()), nil
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		var out Dashboard
		err := s.cache.FetchJSON(ctx, key, &out, func(context.Context) (interface{}, error) {
			return Build(snap, s.opts, s.rt.Clock.Now()), nil
		})
		return out, err
	})
	select {
	case <-ctx.Done():
		return Dashboard{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.rt.Logger.Warn("report cache fetch failed", slog.String("key", key), slog.Any("error", res.Err))
			return Build(snap, s.opts, s.rt.Clock.Now()), nil
		}
		return res.Val.(Dashboard), nil
	}
}

// Invalidate drops every cached dashboard. Revisions restart with the
// process, so callers invalidate once the store has been loaded.
func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.cache.Bump(ctx); err != nil {
		return fmt.Errorf("invalidate report cache: %w", err)
	}
	return nil
}

func (s *Service) optionsToken() string {
	return fmt.Sprintf("top%d-recent%d-novoid%t", s.opts.TopN, s.opts.RecentN, s.opts.ExcludeVoided)
}

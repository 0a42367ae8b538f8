package snapshot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fytours/tourdash/internal/metrics"
	"github.com/fytours/tourdash/internal/table"
)

// LoadFunc produces the full set of logical tables. Per-table failures come
// back in the error map keyed by table name; the error return is reserved for
// session-fatal conditions such as an unreachable store.
type LoadFunc func(ctx context.Context) (map[string]table.Table, map[string]error, error)

// Snapshot is one immutable pass of loaded tables. Consumers must not mutate
// the tables in place; filters and aggregates allocate fresh results.
type Snapshot struct {
	Tables   map[string]table.Table
	Errs     map[string]error
	LoadedAt time.Time
}

// Table returns the named logical table and whether it loaded.
func (s *Snapshot) Table(name string) (table.Table, bool) {
	t, ok := s.Tables[name]
	return t, ok
}

// Holder keeps the latest snapshot behind a lock and refreshes it when it is
// older than the TTL. Every render pass pulls through Current; there are no
// background triggers.
type Holder struct {
	mu   sync.RWMutex
	snap *Snapshot

	load LoadFunc
	ttl  time.Duration
	log  *zap.Logger
}

func NewHolder(load LoadFunc, ttl time.Duration, log *zap.Logger) *Holder {
	return &Holder{load: load, ttl: ttl, log: log}
}

// Current returns the live snapshot, reloading first when none exists yet or
// the TTL has lapsed. A failed reload keeps serving the previous snapshot,
// since stale tables beat an empty dashboard; with no previous snapshot the
// error is fatal to the caller.
func (h *Holder) Current(ctx context.Context) (*Snapshot, error) {
	h.mu.RLock()
	snap := h.snap
	h.mu.RUnlock()

	if snap != nil && time.Since(snap.LoadedAt) < h.ttl {
		return snap, nil
	}
	if err := h.Refresh(ctx); err != nil {
		if snap != nil {
			h.log.Warn("snapshot refresh failed, serving stale tables",
				zap.Error(err), zap.Time("loaded_at", snap.LoadedAt))
			return snap, nil
		}
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap, nil
}

// Refresh reloads all tables unconditionally.
func (h *Holder) Refresh(ctx context.Context) error {
	start := time.Now()
	tables, errs, err := h.load(ctx)
	if err != nil {
		return err
	}
	metrics.SnapshotRefreshDuration.Observe(time.Since(start).Seconds())
	for name, terr := range errs {
		metrics.TableLoadFailures.WithLabelValues(name).Inc()
		h.log.Error("table load failed", zap.String("table", name), zap.Error(terr))
	}

	h.mu.Lock()
	h.snap = &Snapshot{Tables: tables, Errs: errs, LoadedAt: time.Now()}
	h.mu.Unlock()
	return nil
}

// LoadedAt reports when the current snapshot was taken, zero when none is.
func (h *Holder) LoadedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.snap == nil {
		return time.Time{}
	}
	return h.snap.LoadedAt
}

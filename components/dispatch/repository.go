package dispatch

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const snapshotKeyPrefix = "snapshot:"

var errMissingSource = errors.New("dispatch: record source not configured")

// RepositoryOptions configures a Repository.
type RepositoryOptions struct {
	// TTL bounds how long a loaded snapshot is served. Zero or negative keeps it
	// until Invalidate is called.
	TTL     time.Duration
	Logger  *zap.Logger
	Metrics *RepositoryMetrics
	Now     func() time.Time
}

// Repository owns the canonical snapshot of dispatch records and its cache
// policy. It is safe for concurrent use.
type Repository struct {
	source  RecordSource
	ttl     time.Duration
	logger  *zap.Logger
	metrics *RepositoryMetrics
	now     func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	records  []DispatchRecord
	loadedAt time.Time
	loaded   bool
	// generation advances on Invalidate; a load started under an older
	// generation does not publish its snapshot.
	generation uint64
}

// NewRepository wraps source with an explicit cache.
func NewRepository(source RecordSource, opts RepositoryOptions) *Repository {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Repository{
		source:  source,
		ttl:     opts.TTL,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
}

// Records returns the snapshot, loading it on first use or after expiry.
// Concurrent callers share a single load that ignores their cancellation.
// Each caller stops waiting when its own ctx ends. Failed loads are not
// cached.
func (r *Repository) Records(ctx context.Context) ([]DispatchRecord, error) {
	if records, ok := r.cached(); ok {
		r.metrics.hit()
		return records, nil
	}
	r.metrics.miss()

	gen := r.currentGeneration()
	loadCtx := context.WithoutCancel(ctx)
	result := r.group.DoChan(snapshotKeyPrefix+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		if records, ok := r.cached(); ok {
			return records, nil
		}
		return r.load(loadCtx, gen)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]DispatchRecord), nil
	}
}

// FilterValues returns the distinct (month, depot, week) triples of the snapshot.
func (r *Repository) FilterValues(ctx context.Context) ([]FilterValue, error) {
	records, err := r.Records(ctx)
	if err != nil {
		return nil, err
	}
	return DistinctFilterValues(records), nil
}

// Invalidate drops the snapshot so the next read reloads it. Loads already in
// flight finish for their waiters but are not cached, and later readers start
// a fresh load.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	r.records = nil
	r.loaded = false
	r.generation++
	r.mu.Unlock()
	r.logger.Info("dispatch snapshot invalidated")
}

// LoadedAt reports when the current snapshot was loaded. The zero time means
// nothing is cached.
func (r *Repository) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return time.Time{}
	}
	return r.loadedAt
}

func (r *Repository) currentGeneration() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

func (r *Repository) cached() ([]DispatchRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return nil, false
	}
	if r.ttl > 0 && r.now().Sub(r.loadedAt) >= r.ttl {
		return nil, false
	}
	return r.records, true
}

func (r *Repository) load(ctx context.Context, gen uint64) ([]DispatchRecord, error) {
	if r.source == nil {
		return nil, errMissingSource
	}
	started := r.now()
	raw, err := r.source.Load(ctx)
	if err != nil {
		r.logger.Error("dispatch snapshot load failed", zap.Error(err))
		return nil, err
	}
	records := Snapshot(raw)
	elapsed := r.now().Sub(started)

	r.mu.Lock()
	if r.generation != gen {
		r.mu.Unlock()
		r.logger.Info("dispatch snapshot discarded after invalidation", zap.Int("records", len(records)))
		return records, nil
	}
	r.records = records
	r.loadedAt = r.now()
	r.loaded = true
	r.mu.Unlock()

	r.metrics.loaded(len(records), elapsed)
	r.logger.Info("dispatch snapshot loaded",
		zap.Int("rows", len(raw)),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", elapsed),
	)
	return records, nil
}

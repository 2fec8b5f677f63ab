package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls   atomic.Int32
	records []DispatchRecord
	err     error
	delay   time.Duration
}

func (s *countingSource) Load(ctx context.Context) ([]DispatchRecord, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func snapshotRecords() []DispatchRecord {
	canonical := rec("1_a", 7, 10, 9)
	stale := rec("1_a", 7, 99, 99)
	stale.TimeValue = 12
	return []DispatchRecord{canonical, stale}
}

func TestRepositoryCachesSnapshot(t *testing.T) {
	source := &countingSource{records: snapshotRecords()}
	repo := NewRepository(source, RepositoryOptions{})

	first, err := repo.Records(context.Background())
	require.NoError(t, err)
	second, err := repo.Records(context.Background())
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), source.calls.Load())
	assert.False(t, repo.LoadedAt().IsZero())
}

func TestRepositoryTTLExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	source := &countingSource{records: snapshotRecords()}
	repo := NewRepository(source, RepositoryOptions{TTL: time.Minute, Now: clock})

	_, err := repo.Records(context.Background())
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	_, err = repo.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestRepositoryInvalidate(t *testing.T) {
	source := &countingSource{records: snapshotRecords()}
	repo := NewRepository(source, RepositoryOptions{})

	_, err := repo.Records(context.Background())
	require.NoError(t, err)
	repo.Invalidate()
	assert.True(t, repo.LoadedAt().IsZero())

	_, err = repo.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestRepositoryDoesNotCacheFailures(t *testing.T) {
	boom := errors.New("boom")
	source := &countingSource{err: boom}
	repo := NewRepository(source, RepositoryOptions{})

	_, err := repo.Records(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = repo.Records(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestRepositorySharesConcurrentLoads(t *testing.T) {
	source := &countingSource{records: snapshotRecords(), delay: 20 * time.Millisecond}
	repo := NewRepository(source, RepositoryOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Records(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestRepositoryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewRepositoryMetrics(reg)
	require.NoError(t, err)
	repo := NewRepository(NewStaticSource(snapshotRecords()), RepositoryOptions{Metrics: metrics})

	_, err = repo.Records(context.Background())
	require.NoError(t, err)
	_, err = repo.FilterValues(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.records))

	again, err := NewRepositoryMetrics(reg)
	require.NoError(t, err)
	assert.Equal(t, metrics.hits, again.hits)
}

func TestRepositoryWithoutSource(t *testing.T) {
	repo := NewRepository(nil, RepositoryOptions{})
	_, err := repo.Records(context.Background())
	assert.ErrorIs(t, err, errMissingSource)
}

// gatedSource blocks every load until release is closed and fails with the
// load context's error if that ends first.
type gatedSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	batches [][]DispatchRecord
}

func newGatedSource(batches ...[]DispatchRecord) *gatedSource {
	return &gatedSource{
		started: make(chan struct{}, len(batches)+1),
		release: make(chan struct{}),
		batches: batches,
	}
}

func (s *gatedSource) Load(ctx context.Context) ([]DispatchRecord, error) {
	call := int(s.calls.Add(1)) - 1
	s.started <- struct{}{}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.release:
	}
	if call >= len(s.batches) {
		call = len(s.batches) - 1
	}
	return s.batches[call], nil
}

func TestRepositorySharedLoadSurvivesCancelledCaller(t *testing.T) {
	source := newGatedSource(snapshotRecords())
	repo := NewRepository(source, RepositoryOptions{})

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := repo.Records(leaderCtx)
		leaderErr <- err
	}()
	<-source.started

	type outcome struct {
		records []DispatchRecord
		err     error
	}
	follower := make(chan outcome, 1)
	go func() {
		records, err := repo.Records(context.Background())
		follower <- outcome{records, err}
	}()

	cancel()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	time.Sleep(10 * time.Millisecond)
	close(source.release)

	got := <-follower
	require.NoError(t, got.err)
	assert.Len(t, got.records, 1)
	assert.Equal(t, int32(1), source.calls.Load())
	assert.False(t, repo.LoadedAt().IsZero())
}

func TestRepositoryInvalidateDuringLoadStartsFreshLoad(t *testing.T) {
	stale := []DispatchRecord{rec("1_a", 7, 10, 9)}
	fresh := []DispatchRecord{rec("1_a", 7, 10, 9), rec("2_a", 14, 10, 10)}
	source := newGatedSource(stale, fresh)
	repo := NewRepository(source, RepositoryOptions{})

	first := make(chan []DispatchRecord, 1)
	go func() {
		records, err := repo.Records(context.Background())
		assert.NoError(t, err)
		first <- records
	}()
	<-source.started

	repo.Invalidate()

	second := make(chan []DispatchRecord, 1)
	go func() {
		records, err := repo.Records(context.Background())
		assert.NoError(t, err)
		second <- records
	}()
	<-source.started
	close(source.release)

	assert.Len(t, <-first, 1)
	assert.Len(t, <-second, 2)

	cached, err := repo.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 2)
	assert.Equal(t, int32(2), source.calls.Load())
}

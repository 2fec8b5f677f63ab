package dispatch

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RepositoryMetrics observes snapshot cache behaviour. A nil value records nothing.
type RepositoryMetrics struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	duration prometheus.Histogram
	records  prometheus.Gauge
}

// NewRepositoryMetrics registers the repository collectors with reg, reusing
// collectors that are already registered.
func NewRepositoryMetrics(reg prometheus.Registerer) (*RepositoryMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &RepositoryMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_dataset_cache_hits_total",
			Help: "Number of dataset reads served from the cached snapshot.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_dataset_cache_misses_total",
			Help: "Number of dataset reads that required a load.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_dataset_load_duration_seconds",
			Help:    "Duration of spreadsheet loads.",
			Buckets: prometheus.DefBuckets,
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_dataset_records",
			Help: "Number of canonical records in the current snapshot.",
		}),
	}

	if err := register(reg, &m.hits); err != nil {
		return nil, err
	}
	if err := register(reg, &m.misses); err != nil {
		return nil, err
	}
	if err := register(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := register(reg, &m.records); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, collector *C) error {
	err := reg.Register(*collector)
	if err == nil {
		return nil
	}
	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		return err
	}
	existing, ok := already.ExistingCollector.(C)
	if !ok {
		return err
	}
	*collector = existing
	return nil
}

func (m *RepositoryMetrics) hit() {
	if m == nil {
		return
	}
	m.hits.Inc()
}

func (m *RepositoryMetrics) miss() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

func (m *RepositoryMetrics) loaded(records int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(elapsed.Seconds())
	m.records.Set(float64(records))
}

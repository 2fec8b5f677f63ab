package dispatch

import (
	"context"

	"github.com/samber/lo"
)

// Snapshot keeps the canonical rows (time_value 9999, no_free_routes 0).
func Snapshot(records []DispatchRecord) []DispatchRecord {
	return lo.Filter(records, func(r DispatchRecord, _ int) bool {
		return r.TimeValue == SnapshotTimeValue && r.NoFreeRoutes == SnapshotNoFreeRoutes
	})
}

// NewStaticSource returns a source that always serves a copy of records.
func NewStaticSource(records []DispatchRecord) RecordSource {
	return staticSource{records: records}
}

type staticSource struct {
	records []DispatchRecord
}

func (s staticSource) Load(_ context.Context) ([]DispatchRecord, error) {
	out := make([]DispatchRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

package dispatch

import (
	"context"
	"errors"
	"time"
)

// FleetType is the value of the "вид_парка" column.
type FleetType string

const (
	FleetBus         FleetType = "Автобусный"
	FleetElectricBus FleetType = "Электробусный"
)

// Fleets lists the fleets rendered on the dashboard, in display order.
func Fleets() []FleetType {
	return []FleetType{FleetBus, FleetElectricBus}
}

// Code returns a stable ASCII identifier for the fleet.
func (f FleetType) Code() string {
	switch f {
	case FleetBus:
		return "bus"
	case FleetElectricBus:
		return "electric_bus"
	default:
		return string(f)
	}
}

// ParseFleet accepts either the ASCII code or the spreadsheet label.
func ParseFleet(value string) (FleetType, bool) {
	for _, fleet := range Fleets() {
		if value == fleet.Code() || value == string(fleet) {
			return fleet, true
		}
	}
	return "", false
}

// Canonical snapshot markers. Only rows carrying both values are reported.
const (
	SnapshotTimeValue    = 9999
	SnapshotNoFreeRoutes = 0
)

// DispatchRecord is one spreadsheet row. Records are read-only once loaded.
type DispatchRecord struct {
	TimeValue    int       `json:"time_value"`
	NoFreeRoutes int       `json:"no_free_routes"`
	Month        string    `json:"month"`
	Depot        string    `json:"dsc"`
	WeekName     string    `json:"week_name"`
	EndWeek      time.Time `json:"end_week"`
	Fleet        FleetType `json:"fleet"`
	Plan         float64   `json:"plan"`
	Fact         float64   `json:"fact"`
}

// Category tags an aggregated value as planned or actual releases.
type Category string

const (
	CategoryPlan Category = "plan"
	CategoryFact Category = "fact"
)

// AggregatedRow is a long-form (week, category, value) triple. WeekName is empty
// once rows have been summed by category.
type AggregatedRow struct {
	WeekName string   `json:"week_name,omitempty"`
	Category Category `json:"category"`
	Value    float64  `json:"value"`
}

// FilterValue is a distinct (month, depot, week) combination present in the data.
type FilterValue struct {
	Month    string `json:"month"`
	Depot    string `json:"dsc"`
	WeekName string `json:"week_name"`
}

// Selection carries the requested filter values. A nil slice means "use the
// stage default"; an empty non-nil slice selects nothing.
type Selection struct {
	Depots []string `json:"depots"`
	Months []string `json:"months"`
	Weeks  []string `json:"weeks"`
}

// RecordSource loads raw dispatch records.
type RecordSource interface {
	Load(ctx context.Context) ([]DispatchRecord, error)
}

// RecordSourceFunc adapts a function into a RecordSource.
type RecordSourceFunc func(ctx context.Context) ([]DispatchRecord, error)

// Load calls f.
func (f RecordSourceFunc) Load(ctx context.Context) ([]DispatchRecord, error) {
	return f(ctx)
}

var (
	// ErrNoRecords is returned when a computation needs at least one row.
	ErrNoRecords = errors.New("dispatch: no records")
	// ErrMalformedWeek is returned for week names without a numeric leading token.
	ErrMalformedWeek = errors.New("dispatch: malformed week name")
	// ErrMissingColumn is returned when the spreadsheet lacks a required column.
	ErrMissingColumn = errors.New("dispatch: missing column")
)

package dispatch

import (
	"fmt"
	"strings"
)

// DeltaScope selects which rows feed the week-over-week delta.
type DeltaScope string

const (
	// DeltaScopeFleet computes the delta over every row of the fleet, ignoring
	// the depot/month/week selection.
	DeltaScopeFleet DeltaScope = "fleet"
	// DeltaScopeSelection computes the delta over the selected rows only.
	DeltaScopeSelection DeltaScope = "selection"
)

// ParseDeltaScope maps a config value to a scope. Empty means DeltaScopeFleet.
func ParseDeltaScope(value string) (DeltaScope, error) {
	switch DeltaScope(strings.ToLower(strings.TrimSpace(value))) {
	case "", DeltaScopeFleet:
		return DeltaScopeFleet, nil
	case DeltaScopeSelection:
		return DeltaScopeSelection, nil
	default:
		return "", fmt.Errorf("dispatch: unknown delta scope %q", value)
	}
}

// ReportOptions tunes BuildReport.
type ReportOptions struct {
	DeltaScope DeltaScope
}

// FleetReport holds everything the dashboard shows for one fleet.
type FleetReport struct {
	Fleet       FleetType       `json:"fleet"`
	Code        string          `json:"code"`
	Bars        []AggregatedRow `json:"bars"`
	Ratio       float64         `json:"-"`
	Deviation   string          `json:"deviation"`
	Fulfillment string          `json:"fulfillment"`
	Delta       WeekDelta       `json:"delta"`
	DeltaLabel  string          `json:"delta_label"`
	Rows        int             `json:"rows"`
}

// Report is the per-request dashboard model.
type Report struct {
	Filters FilterStages  `json:"filters"`
	Fleets  []FleetReport `json:"fleets"`
}

// Fleet returns the report of fleet.
func (r Report) Fleet(fleet FleetType) (FleetReport, bool) {
	for _, f := range r.Fleets {
		if f.Fleet == fleet {
			return f, true
		}
	}
	return FleetReport{}, false
}

// BuildReport narrows the filters, aggregates each fleet and derives its metrics.
func BuildReport(records []DispatchRecord, requested Selection, opts ReportOptions) (Report, error) {
	scope := opts.DeltaScope
	if scope == "" {
		scope = DeltaScopeFleet
	}
	report := Report{
		Filters: NarrowFilters(DistinctFilterValues(records), requested),
	}
	selection := report.Filters.Selection()

	for _, fleet := range Fleets() {
		selected := Apply(records, fleet, selection)
		bars := SumByCategory(ReleaseFactOnPlan(selected))
		ratio := CalcFactOnPlan(bars)

		deltaRows := OfFleet(records, fleet)
		if scope == DeltaScopeSelection {
			deltaRows = selected
		}
		delta, err := WeeklyDelta(deltaRows)
		if err != nil {
			return Report{}, fmt.Errorf("dispatch: weekly delta for %s: %w", fleet.Code(), err)
		}

		report.Fleets = append(report.Fleets, FleetReport{
			Fleet:       fleet,
			Code:        fleet.Code(),
			Bars:        bars,
			Ratio:       ratio,
			Deviation:   FormatPercent((ratio - 1) * 100),
			Fulfillment: FormatPercent(ratio * 100),
			Delta:       delta,
			DeltaLabel:  delta.String(),
			Rows:        len(selected),
		})
	}
	return report, nil
}

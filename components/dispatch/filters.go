package dispatch

import (
	"sort"
	"strconv"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterStage is the option list offered at one step of the cascade together
// with the values in effect after applying the request.
type FilterStage struct {
	Options  []string `json:"options"`
	Defaults []string `json:"defaults"`
	Selected []string `json:"selected"`
}

// FilterStages is the depot -> month -> week cascade.
type FilterStages struct {
	Depot FilterStage `json:"depot"`
	Month FilterStage `json:"month"`
	Week  FilterStage `json:"week"`
}

// Selection returns the effective selection after narrowing.
func (s FilterStages) Selection() Selection {
	return Selection{
		Depots: s.Depot.Selected,
		Months: s.Month.Selected,
		Weeks:  s.Week.Selected,
	}
}

// DistinctFilterValues returns the unique (month, depot, week) triples in
// first-seen order.
func DistinctFilterValues(records []DispatchRecord) []FilterValue {
	return lo.Uniq(lo.Map(records, func(r DispatchRecord, _ int) FilterValue {
		return FilterValue{Month: r.Month, Depot: r.Depot, WeekName: r.WeekName}
	}))
}

// NarrowFilters runs the cascade. Each stage only offers values reachable from
// the previous stage's selection.
func NarrowFilters(values []FilterValue, requested Selection) FilterStages {
	var stages FilterStages

	depots := lo.Uniq(lo.Map(values, func(v FilterValue, _ int) string { return v.Depot }))
	stages.Depot = FilterStage{
		Options:  sortCollated(depots),
		Defaults: depots,
	}
	stages.Depot.Selected = resolveStage(stages.Depot, requested.Depots)
	byDepot := lo.Filter(values, func(v FilterValue, _ int) bool {
		return lo.Contains(stages.Depot.Selected, v.Depot)
	})

	months := lo.Uniq(lo.Map(byDepot, func(v FilterValue, _ int) string { return v.Month }))
	stages.Month = FilterStage{Options: sortDescending(months)}
	if len(stages.Month.Options) > 0 {
		stages.Month.Defaults = []string{stages.Month.Options[0]}
	}
	stages.Month.Selected = resolveStage(stages.Month, requested.Months)
	byMonth := lo.Filter(byDepot, func(v FilterValue, _ int) bool {
		return lo.Contains(stages.Month.Selected, v.Month)
	})

	weeks := lo.Uniq(lo.Map(byMonth, func(v FilterValue, _ int) string { return v.WeekName }))
	stages.Week = FilterStage{
		Options:  sortDescending(weeks),
		Defaults: weeks,
	}
	stages.Week.Selected = resolveStage(stages.Week, requested.Weeks)
	return stages
}

// Apply keeps the records of fleet that match the selection.
func Apply(records []DispatchRecord, fleet FleetType, selection Selection) []DispatchRecord {
	return lo.Filter(records, func(r DispatchRecord, _ int) bool {
		return r.Fleet == fleet &&
			lo.Contains(selection.Depots, r.Depot) &&
			lo.Contains(selection.Months, r.Month) &&
			lo.Contains(selection.Weeks, r.WeekName)
	})
}

// OfFleet keeps the records of fleet regardless of any selection.
func OfFleet(records []DispatchRecord, fleet FleetType) []DispatchRecord {
	return lo.Filter(records, func(r DispatchRecord, _ int) bool { return r.Fleet == fleet })
}

func resolveStage(stage FilterStage, requested []string) []string {
	if requested == nil {
		return append([]string{}, stage.Defaults...)
	}
	return lo.Filter(lo.Uniq(requested), func(v string, _ int) bool {
		return lo.Contains(stage.Options, v)
	})
}

func sortCollated(values []string) []string {
	out := append([]string{}, values...)
	collate.New(language.Russian).SortStrings(out)
	return out
}

// sortDescending orders numerically when every value is an integer, otherwise
// lexically.
func sortDescending(values []string) []string {
	out := append([]string{}, values...)
	numbers := make(map[string]int, len(out))
	for _, v := range out {
		n, err := strconv.Atoi(v)
		if err != nil {
			sort.Sort(sort.Reverse(sort.StringSlice(out)))
			return out
		}
		numbers[v] = n
	}
	sort.SliceStable(out, func(i, j int) bool { return numbers[out[i]] > numbers[out[j]] })
	return out
}

package dispatch

import (
	"sort"

	"github.com/samber/lo"
)

type weekTotals struct {
	week string
	plan float64
	fact float64
}

// ReleaseFactOnPlan sums plan and fact per week and reshapes the totals into
// long form: every plan triple in week order followed by every fact triple.
func ReleaseFactOnPlan(rows []DispatchRecord) []AggregatedRow {
	totals := sumByWeek(rows)
	out := make([]AggregatedRow, 0, len(totals)*2)
	for _, t := range totals {
		out = append(out, AggregatedRow{WeekName: t.week, Category: CategoryPlan, Value: t.plan})
	}
	for _, t := range totals {
		out = append(out, AggregatedRow{WeekName: t.week, Category: CategoryFact, Value: t.fact})
	}
	return out
}

// SumByCategory collapses long-form rows into one row per category, sorted by
// category name. The result is stable under repeated application.
func SumByCategory(rows []AggregatedRow) []AggregatedRow {
	groups := lo.GroupBy(rows, func(row AggregatedRow) Category { return row.Category })
	categories := lo.Keys(groups)
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	out := make([]AggregatedRow, 0, len(categories))
	for _, category := range categories {
		out = append(out, AggregatedRow{
			Category: category,
			Value:    lo.SumBy(groups[category], func(row AggregatedRow) float64 { return row.Value }),
		})
	}
	return out
}

// CategoryValue returns the first value tagged with category.
func CategoryValue(rows []AggregatedRow, category Category) (float64, bool) {
	row, ok := lo.Find(rows, func(row AggregatedRow) bool { return row.Category == category })
	return row.Value, ok
}

func sumByWeek(rows []DispatchRecord) []weekTotals {
	groups := lo.GroupBy(rows, func(r DispatchRecord) string { return r.WeekName })
	weeks := lo.Keys(groups)
	sort.Strings(weeks)

	out := make([]weekTotals, 0, len(weeks))
	for _, week := range weeks {
		group := groups[week]
		out = append(out, weekTotals{
			week: week,
			plan: lo.SumBy(group, func(r DispatchRecord) float64 { return r.Plan }),
			fact: lo.SumBy(group, func(r DispatchRecord) float64 { return r.Fact }),
		})
	}
	return out
}

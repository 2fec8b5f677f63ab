package dispatch

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// WeeksPerYear is used when the week before week 1 is needed.
const WeeksPerYear = 52

// CalcFactOnPlan returns fact/plan for a category-summed aggregation. When
// either category is missing (nothing selected) the ratio is 0.
func CalcFactOnPlan(rows []AggregatedRow) float64 {
	fact, okFact := CategoryValue(rows, CategoryFact)
	plan, okPlan := CategoryValue(rows, CategoryPlan)
	if !okFact || !okPlan {
		return 0
	}
	return fact / plan
}

// DeltaKind distinguishes a computed week-over-week delta from the no-data case.
type DeltaKind int

const (
	// DeltaNoData means the previous week's ratio is undefined.
	DeltaNoData DeltaKind = iota
	// DeltaPoints means Points holds the delta in percentage points.
	DeltaPoints
)

// WeekDelta is the week-over-week change of the fact/plan ratio.
type WeekDelta struct {
	Kind          DeltaKind `json:"kind"`
	CurrentWeek   int       `json:"current_week"`
	PreviousWeek  int       `json:"previous_week"`
	CurrentRatio  float64   `json:"-"`
	PreviousRatio float64   `json:"-"`
	Points        float64   `json:"-"`
}

// HasData reports whether the delta carries a value.
func (d WeekDelta) HasData() bool {
	return d.Kind == DeltaPoints
}

// String renders the delta the way the dashboard shows it: a right-aligned
// one-decimal value with a " pp" suffix, or "0" when there is no data.
func (d WeekDelta) String() string {
	if d.Kind != DeltaPoints {
		return "0"
	}
	return FormatPoints(d.Points)
}

// WeeklyDelta compares the fact/plan ratio of the most recent week (by
// end_week) with the week before it. Week 1 is compared with week 52.
func WeeklyDelta(rows []DispatchRecord) (WeekDelta, error) {
	if len(rows) == 0 {
		return WeekDelta{}, ErrNoRecords
	}
	numbers := make([]int, len(rows))
	for i, row := range rows {
		n, err := WeekNumber(row.WeekName)
		if err != nil {
			return WeekDelta{}, err
		}
		numbers[i] = n
	}

	latest := 0
	for i := range rows {
		if rows[i].EndWeek.After(rows[latest].EndWeek) {
			latest = i
		}
	}
	current := numbers[latest]
	previous := current - 1
	if current == 1 {
		previous = WeeksPerYear
	}

	delta := WeekDelta{
		CurrentWeek:   current,
		PreviousWeek:  previous,
		CurrentRatio:  bestWeekRatio(rows, numbers, current),
		PreviousRatio: bestWeekRatio(rows, numbers, previous),
	}
	if math.IsNaN(delta.PreviousRatio) {
		delta.Kind = DeltaNoData
		return delta, nil
	}
	delta.Kind = DeltaPoints
	delta.Points = (delta.CurrentRatio - delta.PreviousRatio) * 100
	return delta, nil
}

// WeekNumber parses the leading "<n>_" token of a week name.
func WeekNumber(weekName string) (int, error) {
	token, _, _ := strings.Cut(weekName, "_")
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedWeek, weekName)
	}
	return n, nil
}

// bestWeekRatio returns the highest fact/plan ratio among the week_name groups
// mapping to week. Undefined (NaN) group ratios are skipped; no groups yields NaN.
func bestWeekRatio(rows []DispatchRecord, numbers []int, week int) float64 {
	matching := lo.Filter(rows, func(_ DispatchRecord, i int) bool { return numbers[i] == week })
	best := math.NaN()
	for _, totals := range sumByWeek(matching) {
		ratio := totals.fact / totals.plan
		if math.IsNaN(ratio) {
			continue
		}
		if math.IsNaN(best) || ratio > best {
			best = ratio
		}
	}
	return best
}

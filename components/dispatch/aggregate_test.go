package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(week string, endWeek int, plan, fact float64) DispatchRecord {
	return DispatchRecord{
		TimeValue: SnapshotTimeValue,
		Month:     "1",
		Depot:     "Парк 1",
		WeekName:  week,
		EndWeek:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, endWeek),
		Fleet:     FleetBus,
		Plan:      plan,
		Fact:      fact,
	}
}

func TestReleaseFactOnPlanLongForm(t *testing.T) {
	rows := []DispatchRecord{
		rec("2_b", 14, 10, 8),
		rec("1_a", 7, 5, 5),
		rec("2_b", 14, 20, 19),
	}

	out := ReleaseFactOnPlan(rows)

	assert.Equal(t, []AggregatedRow{
		{WeekName: "1_a", Category: CategoryPlan, Value: 5},
		{WeekName: "2_b", Category: CategoryPlan, Value: 30},
		{WeekName: "1_a", Category: CategoryFact, Value: 5},
		{WeekName: "2_b", Category: CategoryFact, Value: 27},
	}, out)
}

func TestReleaseFactOnPlanEmpty(t *testing.T) {
	assert.Empty(t, ReleaseFactOnPlan(nil))
	assert.Empty(t, SumByCategory(ReleaseFactOnPlan(nil)))
}

func TestSumByCategoryTotals(t *testing.T) {
	rows := []DispatchRecord{
		rec("1_a", 7, 100, 80),
		rec("2_a", 14, 50, 45),
		rec("3_a", 21, 25, 30),
	}

	summed := SumByCategory(ReleaseFactOnPlan(rows))

	require.Len(t, summed, 2)
	assert.Equal(t, AggregatedRow{Category: CategoryFact, Value: 155}, summed[0])
	assert.Equal(t, AggregatedRow{Category: CategoryPlan, Value: 175}, summed[1])
}

func TestSumByCategoryIsStable(t *testing.T) {
	rows := []DispatchRecord{rec("1_a", 7, 3, 2), rec("2_a", 14, 4, 4)}
	once := SumByCategory(ReleaseFactOnPlan(rows))
	twice := SumByCategory(once)
	assert.Equal(t, once, twice)
}

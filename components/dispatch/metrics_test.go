package dispatch

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcFactOnPlan(t *testing.T) {
	t.Run("ratio", func(t *testing.T) {
		rows := []AggregatedRow{
			{Category: CategoryFact, Value: 87},
			{Category: CategoryPlan, Value: 100},
		}
		assert.InDelta(t, 0.87, CalcFactOnPlan(rows), 1e-12)
	})
	t.Run("no rows", func(t *testing.T) {
		assert.Equal(t, 0.0, CalcFactOnPlan(nil))
	})
	t.Run("missing plan", func(t *testing.T) {
		assert.Equal(t, 0.0, CalcFactOnPlan([]AggregatedRow{{Category: CategoryFact, Value: 3}}))
	})
	t.Run("zero plan", func(t *testing.T) {
		rows := []AggregatedRow{
			{Category: CategoryFact, Value: 3},
			{Category: CategoryPlan, Value: 0},
		}
		assert.True(t, math.IsInf(CalcFactOnPlan(rows), 1))
	})
}

func TestWeeklyDelta(t *testing.T) {
	rows := []DispatchRecord{
		rec("5_A", 10, 100, 90),
		rec("4_B", 5, 100, 80),
	}

	delta, err := WeeklyDelta(rows)
	require.NoError(t, err)

	assert.Equal(t, DeltaPoints, delta.Kind)
	assert.Equal(t, 5, delta.CurrentWeek)
	assert.Equal(t, 4, delta.PreviousWeek)
	assert.InDelta(t, 10.0, delta.Points, 1e-9)
	assert.Equal(t, "      10.0 pp", delta.String())
}

func TestWeeklyDeltaWrapsToWeek52(t *testing.T) {
	rows := []DispatchRecord{
		rec("1_jan", 30, 10, 10),
		rec("52_dec", 23, 10, 5),
	}

	delta, err := WeeklyDelta(rows)
	require.NoError(t, err)

	assert.Equal(t, 1, delta.CurrentWeek)
	assert.Equal(t, 52, delta.PreviousWeek)
	assert.Equal(t, "      50.0 pp", delta.String())
}

func TestWeeklyDeltaTakesBestGroupPerWeek(t *testing.T) {
	rows := []DispatchRecord{
		rec("7_jan", 40, 10, 5),
		rec("7_feb", 40, 10, 9),
		rec("6_jan", 33, 10, 7),
	}

	delta, err := WeeklyDelta(rows)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, delta.CurrentRatio, 1e-12)
	assert.InDelta(t, 0.7, delta.PreviousRatio, 1e-12)
}

func TestWeeklyDeltaNoPreviousWeek(t *testing.T) {
	delta, err := WeeklyDelta([]DispatchRecord{rec("9_x", 10, 10, 9)})
	require.NoError(t, err)

	assert.Equal(t, DeltaNoData, delta.Kind)
	assert.False(t, delta.HasData())
	assert.Equal(t, "0", delta.String())
}

func TestWeeklyDeltaUndefinedPreviousRatio(t *testing.T) {
	rows := []DispatchRecord{
		rec("9_x", 10, 10, 9),
		rec("8_x", 3, 0, 0),
	}

	delta, err := WeeklyDelta(rows)
	require.NoError(t, err)
	assert.Equal(t, DeltaNoData, delta.Kind)
}

func TestWeeklyDeltaErrors(t *testing.T) {
	_, err := WeeklyDelta(nil)
	assert.True(t, errors.Is(err, ErrNoRecords))

	_, err = WeeklyDelta([]DispatchRecord{rec("week_one", 1, 1, 1)})
	assert.True(t, errors.Is(err, ErrMalformedWeek))
}

func TestWeekNumber(t *testing.T) {
	n, err := WeekNumber("12_2024-03")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = WeekNumber("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = WeekNumber("_3")
	assert.Error(t, err)
}

func TestHumanFormat(t *testing.T) {
	cases := map[float64]string{
		0:         "0.0",
		999:       "999.0",
		1500:      "1.5K",
		2_300_000: "2.3M",
		-1500:     "-1.5K",
		4.2e18:    "4200.0P",
		1e6:       "1.0M",
		0.5:       "0.5",
		0.04:      "0.0",
		-0.5:      "-0.5",
	}
	for input, want := range cases {
		assert.Equal(t, want, HumanFormat(input), "input %v", input)
	}
}

func TestFormatPointsNonFinite(t *testing.T) {
	assert.Equal(t, "       nan pp", FormatPoints(math.NaN()))
	assert.Equal(t, "      -inf pp", FormatPoints(math.Inf(-1)))
	assert.Equal(t, "-100.0%", FormatPercent(-100))
}

package dispatch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "vipusk.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var workbookHeader = []any{"time_value", "no_free_routes", "month", "dsc", "week_name", "end_week", "вид_парка", "plan", "fact"}

func TestExcelSourceLoad(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		workbookHeader,
		{9999, 0, 1, "Парк 1", "1_01", "2024-01-07", "Автобусный", 100, 95},
		{9999, 1, 1, "Парк 1", "1_01", "2024-01-07", "Электробусный", 10, 9},
		{},
		{15, 0, 1, "Парк 2", "2_01", "2024-01-14", "Автобусный", 50, 48.5},
	})

	records, err := NewExcelSource(path, "").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, 9999, first.TimeValue)
	assert.Equal(t, "1", first.Month)
	assert.Equal(t, "Парк 1", first.Depot)
	assert.Equal(t, FleetBus, first.Fleet)
	assert.Equal(t, 100.0, first.Plan)
	assert.Equal(t, 95.0, first.Fact)
	assert.Equal(t, time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC), first.EndWeek)
	assert.Equal(t, 48.5, records[2].Fact)

	assert.Len(t, Snapshot(records), 1)
}

func TestExcelSourceMissingColumn(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"time_value", "no_free_routes", "month"},
		{9999, 0, 1},
	})

	_, err := NewExcelSource(path, "").Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestExcelSourceRejectsNonNumericPlan(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		workbookHeader,
		{9999, 0, 1, "Парк 1", "1_01", "2024-01-07", "Автобусный", "много", 95},
	})

	_, err := NewExcelSource(path, "").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan")
}

func TestParseDateSerial(t *testing.T) {
	got, err := parseDate("45292")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseDate("soon")
	assert.Error(t, err)
}

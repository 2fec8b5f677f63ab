package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet column headers.
const (
	ColumnTimeValue    = "time_value"
	ColumnNoFreeRoutes = "no_free_routes"
	ColumnMonth        = "month"
	ColumnDepot        = "dsc"
	ColumnWeekName     = "week_name"
	ColumnEndWeek      = "end_week"
	ColumnFleet        = "вид_парка"
	ColumnPlan         = "plan"
	ColumnFact         = "fact"
)

var requiredColumns = []string{
	ColumnTimeValue, ColumnNoFreeRoutes, ColumnMonth, ColumnDepot, ColumnWeekName,
	ColumnEndWeek, ColumnFleet, ColumnPlan, ColumnFact,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02.01.2006",
	"01-02-06",
}

// ExcelSource reads dispatch records from an .xlsx workbook.
type ExcelSource struct {
	path  string
	sheet string
}

// NewExcelSource reads path. An empty sheet selects the first worksheet.
func NewExcelSource(path, sheet string) *ExcelSource {
	return &ExcelSource{path: path, sheet: sheet}
}

// Load parses every data row of the worksheet.
func (s *ExcelSource) Load(ctx context.Context) ([]DispatchRecord, error) {
	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("dispatch: open workbook %s: %w", s.path, err)
	}
	defer func() { _ = file.Close() }()

	sheet := s.sheet
	if sheet == "" {
		sheet = file.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("dispatch: workbook %s has no worksheet", s.path)
	}
	rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("dispatch: read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dispatch: sheet %s is empty", sheet)
	}

	idx := indexMap(rows[0])
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w %s in sheet %s", ErrMissingColumn, col, sheet)
		}
	}

	records := make([]DispatchRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(row) {
			continue
		}
		record, err := parseRecord(row, idx)
		if err != nil {
			return nil, fmt.Errorf("dispatch: sheet %s row %d: %w", sheet, i+2, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRecord(row []string, idx map[string]int) (DispatchRecord, error) {
	cell := func(col string) string {
		pos := idx[col]
		if pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	var (
		rec DispatchRecord
		err error
	)
	if rec.TimeValue, err = parseInt(cell(ColumnTimeValue)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColumnTimeValue, err)
	}
	if rec.NoFreeRoutes, err = parseInt(cell(ColumnNoFreeRoutes)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColumnNoFreeRoutes, err)
	}
	if rec.Plan, err = parseNumber(cell(ColumnPlan)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColumnPlan, err)
	}
	if rec.Fact, err = parseNumber(cell(ColumnFact)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColumnFact, err)
	}
	if rec.EndWeek, err = parseDate(cell(ColumnEndWeek)); err != nil {
		return rec, fmt.Errorf("%s: %w", ColumnEndWeek, err)
	}
	rec.Month = normalizeCategorical(cell(ColumnMonth))
	rec.Depot = cell(ColumnDepot)
	rec.WeekName = cell(ColumnWeekName)
	rec.Fleet = FleetType(cell(ColumnFleet))
	return rec, nil
}

func indexMap(headers []string) map[string]int {
	m := map[string]int{}
	for i, h := range headers {
		m[strings.TrimSpace(strings.ToLower(h))] = i
	}
	return m
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseInt(value string) (int, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", value)
	}
	return int(f), nil
}

// parseNumber treats an empty cell as zero.
func parseNumber(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", value)
	}
	return f, nil
}

// parseDate accepts an Excel serial date or one of dateLayouts.
func parseDate(value string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a date: %q", value)
}

// normalizeCategorical turns "3.0" style raw values into "3".
func normalizeCategorical(value string) string {
	if f, err := strconv.ParseFloat(value, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return value
}

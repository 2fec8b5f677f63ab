package dispatch

import (
	"fmt"
	"math"
	"strings"
)

var magnitudeUnits = []string{"", "K", "M", "G", "T", "P"}

// HumanFormat scales number by powers of 1000 and prints it with one decimal
// and a unit suffix, e.g. 1500 -> "1.5K".
func HumanFormat(number float64) string {
	magnitude := 0
	scaled := number
	for math.Abs(scaled) >= 1000 && magnitude < len(magnitudeUnits)-1 {
		scaled /= 1000
		magnitude++
	}
	return formatFixed(scaled, 1, 0) + magnitudeUnits[magnitude]
}

// FormatPoints renders a percentage-point delta as "%10.1f pp".
func FormatPoints(points float64) string {
	return formatFixed(points, 1, 10) + " pp"
}

// FormatPercent renders value with one decimal and a "%" suffix.
func FormatPercent(value float64) string {
	return formatFixed(value, 1, 0) + "%"
}

// formatFixed is %*.*f with lowercase nan/inf spellings.
func formatFixed(value float64, precision, width int) string {
	var s string
	switch {
	case math.IsNaN(value):
		s = "nan"
	case math.IsInf(value, 1):
		s = "inf"
	case math.IsInf(value, -1):
		s = "-inf"
	default:
		s = fmt.Sprintf("%.*f", precision, value)
	}
	if pad := width - len(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}

package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

var (
	// ErrFleetNotConfigured is returned when a widget instance lacks a fleet.
	ErrFleetNotConfigured = errors.New("dashboard: widget fleet is not configured")
	// ErrFleetNotInReport is returned when the report has no section for the fleet.
	ErrFleetNotInReport = errors.New("dashboard: fleet missing from report")
)

// defaultProviders wires the dispatch widgets. chart renders the bar widget;
// nil uses NewEChartsProvider with defaults.
func defaultProviders(chart *EChartsProvider) map[string]Provider {
	if chart == nil {
		chart = NewEChartsProvider()
	}
	return map[string]Provider{
		WidgetReleaseBars:      chart,
		WidgetReleaseDeviation: ProviderFunc(fetchDeviation),
		WidgetPlanFulfillment:  ProviderFunc(fetchFulfillment),
	}
}

// fetchDeviation renders (fact/plan - 1) for the fleet as a percentage.
func fetchDeviation(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	fleet, report, err := fleetReport(meta)
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"label": localizedLabel(ctx, meta.Translator, KeyDeviationLabel, meta.Viewer.Locale),
		"value": report.Deviation,
		"ratio": report.Ratio,
		"fleet": fleet.Code(),
		"rows":  report.Rows,
	}, nil
}

// fetchFulfillment renders fact/plan with the week-over-week delta.
func fetchFulfillment(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	fleet, report, err := fleetReport(meta)
	if err != nil {
		return nil, err
	}
	locale := meta.Viewer.Locale
	data := WidgetData{
		"label":       localizedLabel(ctx, meta.Translator, KeyFulfillmentLabel, locale),
		"value":       report.Fulfillment,
		"delta":       report.DeltaLabel,
		"delta_label": localizedLabel(ctx, meta.Translator, KeyDeltaLabel, locale),
		"has_delta":   report.Delta.HasData(),
		"fleet":       fleet.Code(),
	}
	if report.Delta.HasData() {
		data["trend"] = trendOf(report.Delta.Points)
		data["current_week"] = report.Delta.CurrentWeek
		data["previous_week"] = report.Delta.PreviousWeek
	}
	return data, nil
}

func trendOf(points float64) string {
	switch {
	case points > 0:
		return "up"
	case points < 0:
		return "down"
	default:
		return "flat"
	}
}

// fleetReport resolves the configured fleet and its report section.
func fleetReport(meta WidgetContext) (dispatch.FleetType, dispatch.FleetReport, error) {
	code := stringValue(meta.Instance.Configuration["fleet"], "")
	if code == "" {
		return "", dispatch.FleetReport{}, ErrFleetNotConfigured
	}
	fleet, ok := dispatch.ParseFleet(code)
	if !ok {
		return "", dispatch.FleetReport{}, fmt.Errorf("dashboard: unknown fleet %q", code)
	}
	report, ok := meta.Report.Fleet(fleet)
	if !ok {
		return "", dispatch.FleetReport{}, fmt.Errorf("%w: %s", ErrFleetNotInReport, fleet.Code())
	}
	return fleet, report, nil
}

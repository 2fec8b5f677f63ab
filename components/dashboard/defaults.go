package dashboard

import (
	"github.com/samber/lo"

	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

// Widget definition codes.
const (
	WidgetReleaseBars      = "dispatch.widget.release_bars"
	WidgetReleaseDeviation = "dispatch.widget.release_deviation"
	WidgetPlanFulfillment  = "dispatch.widget.plan_fulfillment"
)

// Area codes, one column per fleet.
const (
	AreaBus         = "dispatch.dashboard.bus"
	AreaElectricBus = "dispatch.dashboard.electric_bus"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{
		Code:          AreaBus,
		Name:          "Автобусный парк",
		NameLocalized: map[string]string{"en": "Bus fleet"},
		Fleet:         dispatch.FleetBus,
	},
	{
		Code:          AreaElectricBus,
		Name:          "Электробусный парк",
		NameLocalized: map[string]string{"en": "Electric bus fleet"},
		Fleet:         dispatch.FleetElectricBus,
	},
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code:                 WidgetReleaseBars,
		Name:                 "План и факт выпуска",
		NameLocalized:        map[string]string{"en": "Planned vs actual releases"},
		Description:          "Horizontal plan/fact bars for the selected depots, months and weeks",
		DescriptionLocalized: map[string]string{"ru": "Горизонтальные столбцы план/факт по выбранным паркам, месяцам и неделям"},
		Category:             "charts",
		Schema:               fleetWidgetSchema(map[string]any{"title": map[string]any{"type": "string"}, "theme": map[string]any{"type": "string"}}),
	},
	{
		Code:          WidgetReleaseDeviation,
		Name:          "Отклонение от плана",
		NameLocalized: map[string]string{"en": "Deviation from plan"},
		Description:   "Relative deviation of actual releases from plan",
		Category:      "metrics",
		Schema:        fleetWidgetSchema(nil),
	},
	{
		Code:          WidgetPlanFulfillment,
		Name:          "Выполнение плана выпуска",
		NameLocalized: map[string]string{"en": "Release plan fulfilment"},
		Description:   "Plan fulfilment with the change against the previous week",
		Category:      "metrics",
		Schema:        fleetWidgetSchema(nil),
	},
}

func fleetWidgetSchema(extra map[string]any) map[string]any {
	properties := map[string]any{
		"fleet": map[string]any{
			"type": "string",
			"enum": lo.Map(dispatch.Fleets(), func(f dispatch.FleetType, _ int) string { return f.Code() }),
		},
	}
	for key, value := range extra {
		properties[key] = value
	}
	return map[string]any{
		"type":                 "object",
		"required":             []string{"fleet"},
		"properties":           properties,
		"additionalProperties": false,
	}
}

// DefaultAreaDefinitions returns copies of built-in area definitions.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// DefaultWidgetDefinitions returns copies of built-in widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultWidgetInstances seeds every area with the bars, deviation and
// fulfilment widgets of its fleet, in display order.
func DefaultWidgetInstances() []WidgetInstance {
	var out []WidgetInstance
	for _, area := range defaultAreaDefinitions {
		for _, code := range []string{WidgetReleaseBars, WidgetReleaseDeviation, WidgetPlanFulfillment} {
			out = append(out, WidgetInstance{
				ID:            area.Fleet.Code() + "." + code,
				DefinitionID:  code,
				AreaCode:      area.Code,
				Configuration: map[string]any{"fleet": area.Fleet.Code()},
			})
		}
	}
	return out
}

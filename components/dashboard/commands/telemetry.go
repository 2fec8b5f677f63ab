package commands

import (
	"context"

	dashboard "github.com/goliatone/go-dispatch-dashboard/components/dashboard"
)

// Telemetry is the dashboard event sink; commands share it with the service.
type Telemetry = dashboard.Telemetry

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

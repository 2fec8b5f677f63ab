package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dispatch-dashboard/components/dashboard"
)

// ReloadDatasetInput requests a fresh spreadsheet load. Reason is recorded
// with the telemetry event.
type ReloadDatasetInput struct {
	Reason string
	// Result receives the reload summary when non-nil.
	Result *dashboard.ReloadResult
}

type reloader interface {
	Reload(ctx context.Context) (dashboard.ReloadResult, error)
}

// ReloadDatasetCommand drops the cached snapshot and loads it again.
type ReloadDatasetCommand struct {
	service   reloader
	telemetry Telemetry
}

// NewReloadDatasetCommand creates the command.
func NewReloadDatasetCommand(service reloader, telemetry Telemetry) *ReloadDatasetCommand {
	return &ReloadDatasetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReloadDatasetInput] = (*ReloadDatasetCommand)(nil)

// Execute reloads the dataset.
func (c *ReloadDatasetCommand) Execute(ctx context.Context, msg ReloadDatasetInput) error {
	if c.service == nil {
		return errors.New("reload command requires service")
	}
	result, err := c.service.Reload(ctx)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	reason := msg.Reason
	if reason == "" {
		reason = "manual"
	}
	c.telemetry.Record(ctx, "dispatch.dataset.reload", map[string]any{
		"reason":  reason,
		"records": result.Records,
	})
	return nil
}

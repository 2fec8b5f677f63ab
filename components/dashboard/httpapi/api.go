package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dispatch-dashboard/components/dashboard"
	"github.com/goliatone/go-dispatch-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

// Handlers exposes net/http endpoints backed by shared queries and commands.
type Handlers struct {
	Report  gocommand.Querier[dispatch.Selection, dispatch.Report]
	Filters gocommand.Querier[dispatch.Selection, dispatch.FilterStages]
	Reload  gocommand.Commander[commands.ReloadDatasetInput]
}

// HandleReport writes the JSON report for the query-string selection.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	sel, err := SelectionFromValues(r.URL.Query())
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	report, err := h.Report.Query(r.Context(), sel)
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleFilters writes the JSON filter stages for the query-string selection.
func (h *Handlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	sel, err := SelectionFromValues(r.URL.Query())
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	stages, err := h.Filters.Query(r.Context(), sel)
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stages)
}

// HandleReload reloads the dataset. Only POST is accepted.
func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	var result dashboard.ReloadResult
	if err := h.Reload.Execute(r.Context(), commands.ReloadDatasetInput{Reason: "http", Result: &result}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Executor is the transport-neutral surface used by router integrations.
type Executor interface {
	Report(ctx context.Context, sel dispatch.Selection) (dispatch.Report, error)
	Filters(ctx context.Context, sel dispatch.Selection) (dispatch.FilterStages, error)
	Reload(ctx context.Context, input commands.ReloadDatasetInput) error
}

// CommandExecutor adapts go-command queries and commands to Executor.
type CommandExecutor struct {
	ReportQuerier  gocommand.Querier[dispatch.Selection, dispatch.Report]
	FiltersQuerier gocommand.Querier[dispatch.Selection, dispatch.FilterStages]
	ReloadCommand  gocommand.Commander[commands.ReloadDatasetInput]
}

var errNotConfigured = errors.New("httpapi: executor not configured")

// Report runs the report query.
func (e *CommandExecutor) Report(ctx context.Context, sel dispatch.Selection) (dispatch.Report, error) {
	if e.ReportQuerier == nil {
		return dispatch.Report{}, errNotConfigured
	}
	return e.ReportQuerier.Query(ctx, sel)
}

// Filters runs the filters query.
func (e *CommandExecutor) Filters(ctx context.Context, sel dispatch.Selection) (dispatch.FilterStages, error) {
	if e.FiltersQuerier == nil {
		return dispatch.FilterStages{}, errNotConfigured
	}
	return e.FiltersQuerier.Query(ctx, sel)
}

// Reload runs the reload command.
func (e *CommandExecutor) Reload(ctx context.Context, input commands.ReloadDatasetInput) error {
	if e.ReloadCommand == nil {
		return errNotConfigured
	}
	return e.ReloadCommand.Execute(ctx, input)
}

// StatusFor maps domain errors to HTTP status codes. Data problems in the
// spreadsheet are server-side failures.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrBadSelection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorBody{Error: err.Error()})
}

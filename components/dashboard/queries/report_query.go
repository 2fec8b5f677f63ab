package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

type reportService interface {
	Report(ctx context.Context, sel dispatch.Selection) (dispatch.Report, error)
}

// ReportQuery builds the per-fleet report for a selection.
type ReportQuery struct {
	service reportService
}

// NewReportQuery builds the query.
func NewReportQuery(service reportService) *ReportQuery {
	return &ReportQuery{service: service}
}

var _ gocommand.Querier[dispatch.Selection, dispatch.Report] = (*ReportQuery)(nil)

// Query returns the report for sel.
func (q *ReportQuery) Query(ctx context.Context, sel dispatch.Selection) (dispatch.Report, error) {
	return q.service.Report(ctx, sel)
}

type filtersService interface {
	Filters(ctx context.Context, sel dispatch.Selection) (dispatch.FilterStages, error)
}

// FiltersQuery resolves the depot -> month -> week cascade.
type FiltersQuery struct {
	service filtersService
}

// NewFiltersQuery builds the query.
func NewFiltersQuery(service filtersService) *FiltersQuery {
	return &FiltersQuery{service: service}
}

var _ gocommand.Querier[dispatch.Selection, dispatch.FilterStages] = (*FiltersQuery)(nil)

// Query returns the filter stages for sel.
func (q *FiltersQuery) Query(ctx context.Context, sel dispatch.Selection) (dispatch.FilterStages, error) {
	return q.service.Filters(ctx, sel)
}

package dashboard

import (
	"context"
	"errors"
	"io"

	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

// DefaultTemplate is the page template name within the embedded set.
const DefaultTemplate = "dashboard.html"

var errMissingRenderer = errors.New("dashboard: renderer not configured")

// PageResolver is the subset of Service used by the controller.
type PageResolver interface {
	Page(ctx context.Context, viewer ViewerContext, sel dispatch.Selection) (Page, error)
}

// ControllerOptions wires a controller.
type ControllerOptions struct {
	Service  PageResolver
	Renderer Renderer
	Template string
	// BasePath prefixes links emitted by the template (filters form, reload).
	BasePath string
}

// Controller renders the dashboard page through a template renderer.
type Controller struct {
	service  PageResolver
	renderer Renderer
	template string
	basePath string
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	tpl := opts.Template
	if tpl == "" {
		tpl = DefaultTemplate
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: tpl,
		basePath: opts.BasePath,
	}
}

// Page resolves the page model without rendering it.
func (c *Controller) Page(ctx context.Context, viewer ViewerContext, sel dispatch.Selection) (Page, error) {
	if c.service == nil {
		return Page{}, errors.New("dashboard: service not configured")
	}
	return c.service.Page(ctx, viewer, sel)
}

// RenderTemplate resolves the page for viewer and writes the HTML to out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, sel dispatch.Selection, out io.Writer) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	page, err := c.Page(ctx, viewer, sel)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, c.PagePayload(page, viewer), out)
	return err
}

// PagePayload flattens a page into the template context.
func (c *Controller) PagePayload(page Page, viewer ViewerContext) map[string]any {
	return map[string]any{
		"title":          page.Title,
		"caveat":         page.Caveat,
		"filters_header": page.Labels[KeyFiltersHeader],
		"apply":          page.Labels[KeyApply],
		"reload":         page.Labels[KeyReload],
		"filters":        filterPayload(page.Filters, page.Labels),
		"areas":          areaPayload(page.Areas),
		"locale":         viewer.Locale,
		"request_id":     viewer.RequestID,
		"base_path":      c.basePath,
	}
}

func filterPayload(stages dispatch.FilterStages, labels map[string]string) []map[string]any {
	stage := func(name, labelKey string, s dispatch.FilterStage) map[string]any {
		selected := make(map[string]bool, len(s.Selected))
		for _, v := range s.Selected {
			selected[v] = true
		}
		options := make([]map[string]any, 0, len(s.Options))
		for _, v := range s.Options {
			options = append(options, map[string]any{"value": v, "selected": selected[v]})
		}
		return map[string]any{"name": name, "label": labels[labelKey], "options": options}
	}
	return []map[string]any{
		stage("depot", KeyFilterDepot, stages.Depot),
		stage("month", KeyFilterMonth, stages.Month),
		stage("week", KeyFilterWeek, stages.Week),
	}
}

func areaPayload(areas []Area) []map[string]any {
	out := make([]map[string]any, 0, len(areas))
	for _, area := range areas {
		widgets := make([]map[string]any, 0, len(area.Widgets))
		for _, w := range area.Widgets {
			widgets = append(widgets, map[string]any{
				"id":         w.ID,
				"dom_id":     w.Metadata["dom_id"],
				"definition": w.DefinitionID,
				"kind":       widgetKind(w.DefinitionID),
				"data":       w.Metadata["data"],
			})
		}
		out = append(out, map[string]any{"code": area.Code, "title": area.Title, "widgets": widgets})
	}
	return out
}

// widgetKind maps a definition to the template partial that draws it.
func widgetKind(definitionID string) string {
	switch definitionID {
	case WidgetReleaseBars:
		return "chart"
	case WidgetPlanFulfillment:
		return "delta"
	default:
		return "metric"
	}
}

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ettle/strcase"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

var (
	errMissingRecords = errors.New("dashboard: record store not configured")
	// ErrUnknownWidget is returned when an instance references an unregistered definition.
	ErrUnknownWidget = errors.New("dashboard: unknown widget definition")
)

// Options configures the dashboard Service. Collaborators are interfaces so
// applications can swap the data source, providers or telemetry sink.
type Options struct {
	Records         RecordStore
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	Telemetry       Telemetry
	Translator      TranslationService
	Logger          *zap.Logger
	Areas           []WidgetAreaDefinition
	Widgets         []WidgetInstance
	ReportOptions   dispatch.ReportOptions
	DefaultLocale   string
}

// Service builds dashboard pages from the dispatch snapshot.
type Service struct {
	opts   Options
	logger *zap.Logger
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Providers == nil {
		opts.Providers = NewRegistry(nil)
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.Translator == nil {
		opts.Translator = NewCatalogTranslator(DefaultLocale)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if len(opts.Areas) == 0 {
		opts.Areas = DefaultAreaDefinitions()
	}
	if opts.Widgets == nil {
		opts.Widgets = DefaultWidgetInstances()
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = DefaultLocale
	}
	return &Service{opts: opts, logger: opts.Logger.Named("dashboard")}
}

// Validate checks every configured widget instance against its definition.
func (s *Service) Validate() error {
	return ValidateInstances(s.opts.Providers, s.opts.ConfigValidator, s.opts.Widgets)
}

// Report loads the snapshot and builds the report for sel.
func (s *Service) Report(ctx context.Context, sel dispatch.Selection) (dispatch.Report, error) {
	records, err := s.records(ctx)
	if err != nil {
		return dispatch.Report{}, err
	}
	started := time.Now()
	report, err := dispatch.BuildReport(records, sel, s.opts.ReportOptions)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.report.error", map[string]any{"error": err.Error()})
		return dispatch.Report{}, err
	}
	s.logger.Debug("report built",
		zap.Int("records", len(records)),
		zap.Strings("depots", report.Filters.Depot.Selected),
		zap.Strings("months", report.Filters.Month.Selected),
		zap.Strings("weeks", report.Filters.Week.Selected),
		zap.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}

// Filters returns the cascaded filter stages for sel without building the
// fleet sections.
func (s *Service) Filters(ctx context.Context, sel dispatch.Selection) (dispatch.FilterStages, error) {
	records, err := s.records(ctx)
	if err != nil {
		return dispatch.FilterStages{}, err
	}
	return dispatch.NarrowFilters(dispatch.DistinctFilterValues(records), sel), nil
}

// ReloadResult summarizes a dataset reload.
type ReloadResult struct {
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Reload drops the cached snapshot and loads it again.
func (s *Service) Reload(ctx context.Context) (ReloadResult, error) {
	if s.opts.Records == nil {
		return ReloadResult{}, errMissingRecords
	}
	s.opts.Records.Invalidate()
	records, err := s.opts.Records.Records(ctx)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.dataset.reload_error", map[string]any{"error": err.Error()})
		return ReloadResult{}, fmt.Errorf("dashboard: reload dataset: %w", err)
	}
	result := ReloadResult{Records: len(records), LoadedAt: s.opts.Records.LoadedAt().UTC()}
	s.recordTelemetry(ctx, "dashboard.dataset.reload", map[string]any{"records": result.Records})
	return result, nil
}

// Page resolves the whole dashboard for viewer. A report failure aborts the
// page; a widget failure is recorded and the widget is skipped.
func (s *Service) Page(ctx context.Context, viewer ViewerContext, sel dispatch.Selection) (Page, error) {
	if viewer.Locale == "" {
		viewer.Locale = s.opts.DefaultLocale
	}
	report, err := s.Report(ctx, sel)
	if err != nil {
		return Page{}, err
	}
	tr := s.opts.Translator
	page := Page{
		Title:   localizedLabel(ctx, tr, KeyPageTitle, viewer.Locale),
		Caveat:  localizedLabel(ctx, tr, KeyPageCaveat, viewer.Locale),
		Filters: report.Filters,
		Labels:  s.labels(ctx, viewer.Locale),
		Report:  report,
	}
	for _, area := range s.opts.Areas {
		widgets := lo.Filter(s.opts.Widgets, func(w WidgetInstance, _ int) bool {
			return w.AreaCode == area.Code
		})
		page.Areas = append(page.Areas, Area{
			Code:    area.Code,
			Title:   s.areaTitle(ctx, area, viewer.Locale),
			Widgets: s.attachProviderData(ctx, viewer, report, widgets),
		})
	}
	s.recordTelemetry(ctx, "dashboard.page.resolve", map[string]any{
		"request_id": viewer.RequestID,
		"locale":     viewer.Locale,
		"areas":      len(page.Areas),
	})
	return page, nil
}

func (s *Service) records(ctx context.Context) ([]dispatch.DispatchRecord, error) {
	if s.opts.Records == nil {
		return nil, errMissingRecords
	}
	return s.opts.Records.Records(ctx)
}

func (s *Service) labels(ctx context.Context, locale string) map[string]string {
	keys := []string{KeyFiltersHeader, KeyFilterDepot, KeyFilterMonth, KeyFilterWeek, KeyApply, KeyReload}
	return lo.SliceToMap(keys, func(key string) (string, string) {
		return key, localizedLabel(ctx, s.opts.Translator, key, locale)
	})
}

func (s *Service) areaTitle(ctx context.Context, area WidgetAreaDefinition, locale string) string {
	if title := ResolveLocalizedValue(area.NameLocalized, locale, ""); title != "" {
		return title
	}
	switch area.Fleet {
	case dispatch.FleetBus:
		return localizedLabel(ctx, s.opts.Translator, KeyAreaBus, locale)
	case dispatch.FleetElectricBus:
		return localizedLabel(ctx, s.opts.Translator, KeyAreaElectricBus, locale)
	default:
		return area.NameForLocale(locale)
	}
}

func (s *Service) attachProviderData(ctx context.Context, viewer ViewerContext, report dispatch.Report, widgets []WidgetInstance) []WidgetInstance {
	enriched := make([]WidgetInstance, 0, len(widgets))
	for _, inst := range widgets {
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			s.recordTelemetry(ctx, "dashboard.widget.provider_missing", map[string]any{
				"definition_id": inst.DefinitionID,
				"error":         ErrUnknownWidget.Error(),
			})
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{
			Instance:   inst,
			Viewer:     viewer,
			Report:     report,
			Translator: s.opts.Translator,
		})
		if err != nil {
			s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
				"definition_id": inst.DefinitionID,
				"widget_id":     inst.ID,
				"error":         err.Error(),
			})
			continue
		}
		meta := make(map[string]any, len(inst.Metadata)+2)
		for key, value := range inst.Metadata {
			meta[key] = value
		}
		meta["data"] = data
		meta["dom_id"] = "widget-" + strcase.ToKebab(inst.ID)
		inst.Metadata = meta
		enriched = append(enriched, inst)
	}
	return enriched
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// Package dashboard assembles the dispatch dashboard from a config.Config.
package dashboard

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	core "github.com/goliatone/go-dispatch-dashboard/components/dashboard"
	"github.com/goliatone/go-dispatch-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-dispatch-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-dispatch-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
	"github.com/goliatone/go-dispatch-dashboard/pkg/config"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options overrides collaborators that New would otherwise build from the
// config. Zero values are fine.
type Options struct {
	Logger     *zap.Logger
	Registerer prometheus.Registerer
	// Source replaces the spreadsheet reader.
	Source dispatch.RecordSource
	// Redis replaces the client built from cache.redis_addr.
	Redis redis.Cmdable
}

// App holds the wired components. Close releases the redis client when New
// created one.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Repository *dispatch.Repository
	Service    *Service
	Controller *core.Controller
	Executor   *httpapi.CommandExecutor
	Handlers   *httpapi.Handlers
	Page       *queries.PageQuery

	closers []func() error
}

// New wires repository, chart cache, widget registry, service, controller and
// the query/command surface.
func New(cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{Config: cfg, Logger: logger}

	metrics, err := dispatch.NewRepositoryMetrics(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("dashboard: metrics: %w", err)
	}
	source := opts.Source
	if source == nil {
		source = dispatch.NewExcelSource(cfg.Data.Path, cfg.Data.Sheet)
	}
	app.Repository = dispatch.NewRepository(source, dispatch.RepositoryOptions{
		TTL:     cfg.Data.CacheTTL,
		Logger:  logger,
		Metrics: metrics,
	})

	areas, widgets, err := layout(cfg.LayoutFile)
	if err != nil {
		return nil, err
	}

	telemetry := core.NewZapTelemetry(logger)
	chartOpts := []core.EChartsProviderOption{core.WithChartCache(app.chartCache(cfg.Cache, opts.Redis))}
	if cfg.Chart.Height != "" {
		chartOpts = append(chartOpts, core.WithChartHeight(cfg.Chart.Height))
	}
	if cfg.Chart.Theme != "" {
		chartOpts = append(chartOpts, core.WithChartTheme(cfg.Chart.Theme))
	}
	chart := core.NewEChartsProvider(chartOpts...)
	app.Service = core.NewService(core.Options{
		Records:       app.Repository,
		Providers:     core.NewRegistry(chart),
		Telemetry:     telemetry,
		Translator:    core.NewCatalogTranslator(cfg.Locale),
		Logger:        logger,
		Areas:         areas,
		Widgets:       widgets,
		ReportOptions: cfg.ReportOptions(),
		DefaultLocale: cfg.Locale,
	})
	if err := app.Service.Validate(); err != nil {
		_ = app.Close()
		return nil, err
	}

	renderer, err := core.NewTemplateRenderer()
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("dashboard: templates: %w", err)
	}
	app.Controller = core.NewController(core.ControllerOptions{
		Service:  app.Service,
		Renderer: renderer,
		BasePath: cfg.BasePath,
	})

	report := queries.NewReportQuery(app.Service)
	filters := queries.NewFiltersQuery(app.Service)
	reload := commands.NewReloadDatasetCommand(app.Service, telemetry)
	app.Executor = &httpapi.CommandExecutor{
		ReportQuerier:  report,
		FiltersQuerier: filters,
		ReloadCommand:  reload,
	}
	app.Handlers = &httpapi.Handlers{Report: report, Filters: filters, Reload: reload}
	app.Page = queries.NewPageQuery(app.Service)
	return app, nil
}

// Close releases resources owned by the app.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) chartCache(cfg config.CacheConfig, client redis.Cmdable) core.RenderCache {
	if cfg.Backend != config.CacheRedis {
		return core.NewChartCache(cfg.ChartTTL)
	}
	if client == nil {
		owned := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, owned.Close)
		client = owned
	}
	return core.NewRedisChartCache(client, cfg.ChartTTL, cfg.RedisPrefix, a.Logger)
}

func layout(path string) ([]core.WidgetAreaDefinition, []core.WidgetInstance, error) {
	if path == "" {
		return core.DefaultAreaDefinitions(), core.DefaultWidgetInstances(), nil
	}
	doc, err := core.ReadManifest(path)
	if err != nil {
		return nil, nil, err
	}
	return doc.AreaDefinitions(), doc.WidgetInstances(), nil
}

package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/samber/lo"

	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

const defaultChartHeight = "220px"

var sharedChartCache = NewChartCache(DefaultChartCacheTTL)

type chartRenderContext struct {
	Viewer ViewerContext
	Theme  string
}

// ThemeResolver selects a chart theme per viewer.
type ThemeResolver func(ViewerContext) string

// EChartsProvider renders the plan/fact release bars of one fleet as
// server-side chart HTML.
type EChartsProvider struct {
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
	height        string
}

// EChartsProviderOption customizes provider behavior.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache injects a render cache. nil disables caching.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per viewer.
func WithChartThemeResolver(resolver ThemeResolver) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.assetsHost = host
	}
}

// WithChartHeight overrides the chart height (CSS length).
func WithChartHeight(height string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.height = height
	}
}

// NewEChartsProvider builds the release bar provider.
func NewEChartsProvider(opts ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{
		cache:      sharedChartCache,
		theme:      types.ThemeWesteros,
		assetsHost: DefaultEChartsAssetsHost(),
		height:     defaultChartHeight,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type barChartKey struct {
	Fleet  string                   `json:"fleet"`
	Bars   []dispatch.AggregatedRow `json:"bars"`
	Labels []string                 `json:"labels"`
	Title  string                   `json:"title"`
	Theme  string                   `json:"theme"`
	Height string                   `json:"height"`
}

// Fetch renders the configured fleet's bars from the request report.
func (p *EChartsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	fleet, report, err := fleetReport(meta)
	if err != nil {
		return nil, err
	}
	locale := meta.Viewer.Locale
	title := localizedLabel(ctx, meta.Translator, KeyChartTitle, locale)
	if cfgTitle := stringValue(meta.Instance.Configuration["title"], ""); cfgTitle != "" {
		title = cfgTitle
	}

	labels := lo.Map(report.Bars, func(row dispatch.AggregatedRow, _ int) string {
		return categoryLabel(ctx, meta, row.Category)
	})
	renderCtx := chartRenderContext{
		Viewer: meta.Viewer,
		Theme:  p.resolveTheme(meta.Viewer),
	}
	if override := strings.TrimSpace(stringValue(meta.Instance.Configuration["theme"], "")); override != "" {
		renderCtx.Theme = override
	}

	renderFn := func() (string, error) {
		return p.renderBars(title, labels, report.Bars, renderCtx)
	}

	var html string
	if p.cache != nil {
		key := fmt.Sprintf("%s:%s:%s", meta.Instance.DefinitionID, fleet.Code(), configHash(barChartKey{
			Fleet:  fleet.Code(),
			Bars:   report.Bars,
			Labels: labels,
			Title:  title,
			Theme:  renderCtx.Theme,
			Height: p.height,
		}))
		html, err = p.cache.GetOrRender(ctx, key, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return nil, err
	}

	return WidgetData{
		"chart_html": html,
		"chart_type": "bar",
		"title":      title,
		"theme":      renderCtx.Theme,
		"fleet":      fleet.Code(),
		"empty":      len(report.Bars) == 0,
	}, nil
}

// renderBars draws one horizontal bar per category with its value printed
// to the right of the bar.
func (p *EChartsProvider) renderBars(title string, labels []string, rows []dispatch.AggregatedRow, ctx chartRenderContext) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalChartOptions(title, ctx)...)
	bar.SetXAxis(labels)
	bar.AddSeries(title, lo.Map(rows, func(row dispatch.AggregatedRow, i int) opts.BarData {
		return opts.BarData{Name: labels[i], Value: row.Value}
	}))
	bar.SetSeriesOptions(charts.WithLabelOpts(opts.Label{
		Show:     opts.Bool(true),
		Position: "right",
	}))
	bar.XYReversal()
	return renderChart(bar)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *EChartsProvider) globalChartOptions(title string, ctx chartRenderContext) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  ctx.Theme,
		Width:  "100%",
		Height: p.height,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Subtitle: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func (p *EChartsProvider) resolveTheme(viewer ViewerContext) string {
	if p.themeResolver != nil {
		if theme := p.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if p.theme != "" {
		return p.theme
	}
	return types.ThemeWesteros
}

func categoryLabel(ctx context.Context, meta WidgetContext, category dispatch.Category) string {
	switch category {
	case dispatch.CategoryPlan:
		return translateOrFallback(ctx, meta.Translator, KeyCategoryPlan, meta.Viewer.Locale, string(category), nil)
	case dispatch.CategoryFact:
		return translateOrFallback(ctx, meta.Translator, KeyCategoryFact, meta.Viewer.Locale, string(category), nil)
	default:
		return string(category)
	}
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

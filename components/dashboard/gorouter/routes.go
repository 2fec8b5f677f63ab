package gorouter

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/goliatone/go-dispatch-dashboard/components/dashboard"
	"github.com/goliatone/go-dispatch-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-dispatch-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

// DefaultBasePath prefixes every dashboard route when Config.BasePath is empty.
const DefaultBasePath = "/dispatch"

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the dispatch controller and JSON API.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML    string
	Report  string
	Filters string
	Reload  string
}

// Register mounts the dashboard page, the JSON report and filter endpoints and
// the reload action on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = DefaultBasePath
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = DefaultViewerResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		sel, err := selectionFromContext(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), viewerResolver(ctx), sel, &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, base, routes)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, base string, routes RouteConfig) {
	r.Get(routes.Report, router.WrapHandler(func(ctx router.Context) error {
		sel, err := selectionFromContext(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		report, err := api.Report(ctx.Context(), sel)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, report)
	}))

	r.Get(routes.Filters, router.WrapHandler(func(ctx router.Context) error {
		sel, err := selectionFromContext(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		stages, err := api.Filters(ctx.Context(), sel)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, stages)
	}))

	r.Post(routes.Reload, router.WrapHandler(func(ctx router.Context) error {
		var result dashboard.ReloadResult
		input := commands.ReloadDatasetInput{Reason: "http", Result: &result}
		if err := api.Reload(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		// The page form posts here; send the browser back to the page.
		if isFormPost(ctx.Header("Content-Type")) {
			ctx.SetHeader("Location", base+routes.HTML)
			return ctx.JSON(http.StatusSeeOther, result)
		}
		return ctx.JSON(http.StatusOK, result)
	}))
}

// DefaultViewerResolver picks the locale from locals, the query string or
// Accept-Language and tags the request with an id.
func DefaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var local string
	if v, ok := ctx.Locals("locale").(string); ok {
		local = v
	}
	requestID := strings.TrimSpace(ctx.Header("X-Request-ID"))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return dashboard.ViewerContext{
		Locale:    resolveLocale(local, ctx.Query("locale"), ctx.Header("Accept-Language")),
		RequestID: requestID,
	}
}

func selectionFromContext(ctx router.Context) (dispatch.Selection, error) {
	return httpapi.SelectionFromLookup(queryLookup(func(key string) string {
		return ctx.Query(key)
	}))
}

// queryLookup adapts a single-value query accessor. Repeated parameters are
// not visible through it, so multiple values travel comma separated.
func queryLookup(query func(string) string) func(string) []string {
	return func(key string) []string {
		raw := query(key)
		if raw == "" {
			return nil
		}
		return []string{raw}
	}
}

func resolveLocale(local, query, acceptLanguage string) string {
	if local = strings.TrimSpace(local); local != "" {
		return strings.ToLower(local)
	}
	if query = strings.TrimSpace(query); query != "" {
		return strings.ToLower(query)
	}
	return parseAcceptLanguage(acceptLanguage)
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = strings.TrimSpace(token[:idx])
		}
		if token != "" && token != "*" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func isFormPost(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/x-www-form-urlencoded")
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), httpapi.ErrorBody{Error: err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Report == "" {
		routes.Report = "/dashboard/_report"
	}
	if routes.Filters == "" {
		routes.Filters = "/dashboard/_filters"
	}
	if routes.Reload == "" {
		routes.Reload = "/dashboard/reload"
	}
	return routes
}

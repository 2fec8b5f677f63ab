package dashboard

import (
	"context"
	"time"

	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

// RecordStore supplies the canonical dispatch snapshot. *dispatch.Repository
// satisfies it.
type RecordStore interface {
	Records(ctx context.Context) ([]dispatch.DispatchRecord, error)
	Invalidate()
	// LoadedAt reports when the cached snapshot was loaded; zero when none is.
	LoadedAt() time.Time
}

// ProviderRegistry stores widget definitions and their providers.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// WidgetAreaDefinition models a dashboard column.
type WidgetAreaDefinition struct {
	Code          string
	Name          string
	NameLocalized map[string]string
	Fleet         dispatch.FleetType
}

// WidgetDefinition describes a widget and its configuration schema.
type WidgetDefinition struct {
	Code                 string
	Name                 string
	NameLocalized        map[string]string
	Description          string
	DescriptionLocalized map[string]string
	Schema               map[string]any
	Category             string
}

// WidgetInstance is a configured widget placed in an area.
type WidgetInstance struct {
	ID            string         `json:"id"`
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// ViewerContext carries per-request presentation settings.
type ViewerContext struct {
	Locale    string
	RequestID string
}

// Area is a resolved column of widgets.
type Area struct {
	Code    string           `json:"code"`
	Title   string           `json:"title"`
	Widgets []WidgetInstance `json:"widgets"`
}

// Page is everything needed to render the dashboard once.
type Page struct {
	Title   string                `json:"title"`
	Caveat  string                `json:"caveat"`
	Filters dispatch.FilterStages `json:"filters"`
	Labels  map[string]string     `json:"labels"`
	Areas   []Area                `json:"areas"`
	Report  dispatch.Report       `json:"report"`
}

package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current layout manifest version for tooling.
	ManifestVersion = manifestVersionV1
)

// LayoutManifest describes which widgets appear in which fleet column. It
// replaces the built-in layout when supplied.
type LayoutManifest struct {
	Version string         `json:"version" yaml:"version"`
	Areas   []ManifestArea `json:"areas" yaml:"areas"`
	Source  string         `json:"-" yaml:"-"`
}

// ManifestArea is one column of the dashboard.
type ManifestArea struct {
	Code    string            `json:"code" yaml:"code"`
	Fleet   string            `json:"fleet" yaml:"fleet"`
	Name    string            `json:"name,omitempty" yaml:"name,omitempty"`
	Names   map[string]string `json:"names,omitempty" yaml:"names,omitempty"`
	Widgets []ManifestWidget  `json:"widgets" yaml:"widgets"`
}

// ManifestWidget places a widget definition in an area. Configuration is
// merged over the area's fleet.
type ManifestWidget struct {
	ID            string         `json:"id,omitempty" yaml:"id,omitempty"`
	Definition    string         `json:"definition" yaml:"definition"`
	Configuration map[string]any `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// ReadManifest loads a layout manifest from disk.
func ReadManifest(path string) (*LayoutManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*LayoutManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc LayoutManifest
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *LayoutManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	if len(doc.Areas) == 0 {
		return fmt.Errorf("dashboard: manifest declares no areas")
	}
	areas := make(map[string]struct{}, len(doc.Areas))
	ids := map[string]struct{}{}
	for idx, area := range doc.Areas {
		if area.Code == "" {
			return fmt.Errorf("dashboard: manifest area at index %d is missing code", idx)
		}
		if _, exists := areas[area.Code]; exists {
			return fmt.Errorf("dashboard: manifest duplicates area %s", area.Code)
		}
		areas[area.Code] = struct{}{}
		if _, ok := dispatch.ParseFleet(area.Fleet); !ok {
			return fmt.Errorf("dashboard: manifest area %s has unknown fleet %q", area.Code, area.Fleet)
		}
		for widx, widget := range area.Widgets {
			if widget.Definition == "" {
				return fmt.Errorf("dashboard: manifest area %s widget %d is missing definition", area.Code, widx)
			}
			id := widget.instanceID(area)
			if _, exists := ids[id]; exists {
				return fmt.Errorf("dashboard: manifest duplicates widget id %s", id)
			}
			ids[id] = struct{}{}
		}
	}
	return nil
}

// AreaDefinitions converts the manifest areas, in order.
func (doc *LayoutManifest) AreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, 0, len(doc.Areas))
	for _, area := range doc.Areas {
		fleet, _ := dispatch.ParseFleet(area.Fleet)
		name := area.Name
		if name == "" {
			name = string(fleet)
		}
		out = append(out, WidgetAreaDefinition{
			Code:          area.Code,
			Name:          name,
			NameLocalized: normalizeLocaleMap(area.Names),
			Fleet:         fleet,
		})
	}
	return out
}

// WidgetInstances converts the manifest widgets, in order. Each instance's
// configuration carries the area fleet unless it sets one itself.
func (doc *LayoutManifest) WidgetInstances() []WidgetInstance {
	var out []WidgetInstance
	for _, area := range doc.Areas {
		fleet, _ := dispatch.ParseFleet(area.Fleet)
		for _, widget := range area.Widgets {
			cfg := map[string]any{"fleet": fleet.Code()}
			for key, value := range widget.Configuration {
				cfg[key] = value
			}
			out = append(out, WidgetInstance{
				ID:            widget.instanceID(area),
				DefinitionID:  widget.Definition,
				AreaCode:      area.Code,
				Configuration: cfg,
			})
		}
	}
	return out
}

func (w ManifestWidget) instanceID(area ManifestArea) string {
	if w.ID != "" {
		return w.ID
	}
	fleet, _ := dispatch.ParseFleet(area.Fleet)
	return fleet.Code() + "." + w.Definition
}

// DefaultManifest describes the built-in layout, one area per fleet with its
// three widgets. Editing its output is the usual way to start a layout file.
func DefaultManifest() *LayoutManifest {
	doc := &LayoutManifest{Version: ManifestVersion}
	instances := DefaultWidgetInstances()
	for _, def := range defaultAreaDefinitions {
		area := ManifestArea{
			Code:  def.Code,
			Fleet: def.Fleet.Code(),
			Name:  def.Name,
			Names: normalizeLocaleMap(def.NameLocalized),
		}
		for _, inst := range instances {
			if inst.AreaCode == def.Code {
				area.Widgets = append(area.Widgets, ManifestWidget{Definition: inst.DefinitionID})
			}
		}
		doc.Areas = append(doc.Areas, area)
	}
	return doc
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dispatch-dashboard/components/dashboard"
)

type layoutCmd struct {
	Write layoutWriteCmd `cmd:"" help:"Write the built-in layout as a manifest to start editing from."`
	Check layoutCheckCmd `cmd:"" help:"Validate a layout manifest against the widget schemas."`
}

type layoutWriteCmd struct {
	Out       string `required:"" type:"path" help:"Manifest file to create."`
	Overwrite bool   `help:"Replace an existing file."`
}

func (cmd *layoutWriteCmd) Run() error {
	if _, err := os.Stat(cmd.Out); err == nil && !cmd.Overwrite {
		return fmt.Errorf("dispatchctl: %s already exists (use --overwrite)", cmd.Out)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("dispatchctl: stat %s: %w", cmd.Out, err)
	}
	if err := os.MkdirAll(filepath.Dir(cmd.Out), 0o755); err != nil {
		return fmt.Errorf("dispatchctl: mkdir %s: %w", filepath.Dir(cmd.Out), err)
	}
	file, err := os.Create(cmd.Out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dispatchctl: create %s: %w", cmd.Out, err)
	}
	defer file.Close()
	if err := writeManifest(file, dashboard.DefaultManifest()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", cmd.Out)
	return nil
}

type layoutCheckCmd struct {
	Path   string `arg:"" type:"existingfile" help:"Manifest to validate."`
	Locale string `default:"ru" help:"Locale for widget names and descriptions."`
}

func (cmd *layoutCheckCmd) Run() error {
	return cmd.run(os.Stdout)
}

func (cmd *layoutCheckCmd) run(w io.Writer) error {
	doc, err := dashboard.ReadManifest(cmd.Path)
	if err != nil {
		return err
	}
	registry := dashboard.NewRegistry(nil)
	widgets := doc.WidgetInstances()
	if err := dashboard.ValidateInstances(registry, dashboard.NewJSONSchemaValidator(), widgets); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d areas, %d widgets\n", cmd.Path, len(doc.Areas), len(widgets))
	return writeDefinitions(w, registry.Definitions(), widgets, cmd.Locale)
}

// writeDefinitions lists every known widget with how often the layout uses it.
func writeDefinitions(w io.Writer, defs []dashboard.WidgetDefinition, widgets []dashboard.WidgetInstance, locale string) error {
	uses := lo.CountValuesBy(widgets, func(inst dashboard.WidgetInstance) string { return inst.DefinitionID })
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, def := range defs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", def.Code, uses[def.Code], def.NameForLocale(locale), def.DescriptionForLocale(locale))
	}
	return tw.Flush()
}

func writeManifest(w io.Writer, doc *dashboard.LayoutManifest) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("dispatchctl: encode manifest: %w", err)
	}
	return encoder.Close()
}

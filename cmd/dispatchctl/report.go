package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
	dashboardpkg "github.com/goliatone/go-dispatch-dashboard/pkg/dashboard"
	"github.com/goliatone/go-dispatch-dashboard/pkg/logging"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type reportCmd struct {
	selectionFlags
	Format string `enum:"text,json" default:"text" help:"Output format (text, json)."`
}

func (cmd *reportCmd) Run(ctx context.Context, g *Globals) error {
	app, sel, err := openApp(g, cmd.selectionFlags)
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Executor.Report(ctx, sel)
	if err != nil {
		return err
	}
	if cmd.Format == formatJSON {
		return writeJSON(os.Stdout, report)
	}
	return writeReportText(os.Stdout, report)
}

type optionsCmd struct {
	selectionFlags
	Format string `enum:"text,json" default:"text" help:"Output format (text, json)."`
}

func (cmd *optionsCmd) Run(ctx context.Context, g *Globals) error {
	app, sel, err := openApp(g, cmd.selectionFlags)
	if err != nil {
		return err
	}
	defer app.Close()

	stages, err := app.Executor.Filters(ctx, sel)
	if err != nil {
		return err
	}
	if cmd.Format == formatJSON {
		return writeJSON(os.Stdout, stages)
	}
	return writeFiltersText(os.Stdout, stages)
}

func openApp(g *Globals, flags selectionFlags) (*dashboardpkg.App, dispatch.Selection, error) {
	sel, err := flags.selection()
	if err != nil {
		return nil, dispatch.Selection{}, err
	}
	cfg, err := g.load()
	if err != nil {
		return nil, dispatch.Selection{}, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, dispatch.Selection{}, err
	}
	app, err := dashboardpkg.New(cfg, dashboardpkg.Options{Logger: logger, Registerer: prometheus.NewRegistry()})
	if err != nil {
		return nil, dispatch.Selection{}, err
	}
	return app, sel, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReportText(w io.Writer, report dispatch.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "fleet\tplan\tfact\tdeviation\tfulfillment\tweek delta")
	for _, fleet := range report.Fleets {
		plan, fact := barValues(fleet.Bars)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			fleet.Fleet,
			dispatch.HumanFormat(plan),
			dispatch.HumanFormat(fact),
			fleet.Deviation,
			fleet.Fulfillment,
			strings.TrimSpace(fleet.DeltaLabel),
		)
	}
	return tw.Flush()
}

func writeFiltersText(w io.Writer, stages dispatch.FilterStages) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "stage\tselected\toptions")
	for _, row := range []struct {
		name  string
		stage dispatch.FilterStage
	}{
		{"depot", stages.Depot},
		{"month", stages.Month},
		{"week", stages.Week},
	} {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.name, strings.Join(row.stage.Selected, ", "), strings.Join(row.stage.Options, ", "))
	}
	return tw.Flush()
}

func barValues(rows []dispatch.AggregatedRow) (plan, fact float64) {
	for _, row := range rows {
		switch row.Category {
		case dispatch.CategoryPlan:
			plan += row.Value
		case dispatch.CategoryFact:
			fact += row.Value
		}
	}
	return plan, fact
}

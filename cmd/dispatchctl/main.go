package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-dispatch-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
	"github.com/goliatone/go-dispatch-dashboard/pkg/config"
)

type cli struct {
	Globals

	Serve   serveCmd   `cmd:"" help:"Serve the dashboard and the metrics listener."`
	Report  reportCmd  `cmd:"" help:"Print the fleet report for a selection."`
	Options optionsCmd `cmd:"" help:"Print the depot, month and week filter stages."`
	Layout  layoutCmd  `cmd:"" help:"Write or check a layout manifest."`
}

// Globals are flags shared by every command.
type Globals struct {
	Config string `type:"path" env:"DISPATCH_CONFIG" help:"YAML configuration file."`
}

func (g *Globals) load() (config.Config, error) {
	return config.Load(g.Config)
}

// selectionFlags mirror the page query parameters. Values are comma separated;
// "-" selects nothing.
type selectionFlags struct {
	Depot []string `help:"Depots to include."`
	Month []string `help:"Months to include."`
	Week  []string `help:"Week names to include."`
}

func (f selectionFlags) selection() (dispatch.Selection, error) {
	return httpapi.SelectionFromLookup(func(key string) []string {
		switch key {
		case httpapi.ParamDepot:
			return f.Depot
		case httpapi.ParamMonth:
			return f.Month
		case httpapi.ParamWeek:
			return f.Week
		}
		return nil
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("dispatchctl"),
		kong.Description("Fleet release dashboard over the dispatch spreadsheet."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&app.Globals)
	kctx.FatalIfErrorf(err)
}

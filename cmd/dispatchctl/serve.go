package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-dispatch-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-dispatch-dashboard/components/dashboard/httpapi"
	dashboardpkg "github.com/goliatone/go-dispatch-dashboard/pkg/dashboard"
	"github.com/goliatone/go-dispatch-dashboard/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	Addr        string `help:"Override the dashboard listen address."`
	MetricsAddr string `help:"Override the metrics listen address. Empty config value disables it."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Addr = cmd.Addr
	}
	if cmd.MetricsAddr != "" {
		cfg.MetricsAddr = cmd.MetricsAddr
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := dashboardpkg.New(cfg, dashboardpkg.Options{Logger: logger, Registerer: reg})
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close app", zap.Error(err))
		}
	}()

	if records, err := app.Repository.Records(ctx); err != nil {
		logger.Warn("initial dataset load failed", zap.String("path", cfg.Data.Path), zap.Error(err))
	} else {
		logger.Info("dataset loaded", zap.String("path", cfg.Data.Path), zap.Int("records", len(records)))
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: app.Controller,
		API:        app.Executor,
		BasePath:   cfg.BasePath,
	}); err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting dashboard server", zap.String("addr", cfg.Addr), zap.String("base_path", cfg.BasePath))
		return server.Serve(cfg.Addr)
	})

	var admin *http.Server
	if cfg.MetricsAddr != "" {
		admin = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           adminHandler(reg, app.Handlers),
			ReadHeaderTimeout: 5 * time.Second,
		}
		group.Go(func() error {
			logger.Info("starting metrics server", zap.String("addr", cfg.MetricsAddr))
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		if admin != nil {
			errs = append(errs, admin.Shutdown(shutdownCtx))
		}
		errs = append(errs, server.Shutdown(shutdownCtx))
		return errors.Join(errs...)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// adminHandler serves Prometheus metrics, a liveness probe and the JSON API
// on the internal listener.
func adminHandler(gatherer prometheus.Gatherer, api *httpapi.Handlers) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/report", api.HandleReport)
	mux.HandleFunc("/api/filters", api.HandleFilters)
	mux.HandleFunc("/api/reload", api.HandleReload)
	return mux
}

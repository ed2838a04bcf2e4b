package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/vrpbench/internal/config"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"github.com/specialistvlad/vrpbench/internal/metrics"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	metrics    *metrics.Metrics
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It builds the App's
// own logger and metrics registry and loads the sweep files named in cfg.
// A sweep file that cannot be loaded is a fatal startup error and panics.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loadModel(ctx, coreLoaders, cfg.ConfigPaths)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Sweep files loaded.", "files", len(cfg.ConfigPaths), "params", len(model.Params))

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		model:   model,
		metrics: metrics.New(),
	}
}

// Metrics returns the application's collectors. This is primarily for testing.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Package app wires configuration, logging and metrics around the
// accumulator for the undocalc commands.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dshills/undocalc/internal/config"
	"github.com/dshills/undocalc/internal/engine/history"
	"github.com/dshills/undocalc/internal/metrics"
)

// Options configures the application. Non-empty strings and a non-nil
// MaxEntries override the configuration file and environment.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogFormat selects "text" or "json" log output.
	LogFormat string

	// MaxEntries caps the undo history; 0 is unbounded and nil leaves the
	// configured value.
	MaxEntries *int

	// MetricsAddr enables the metrics endpoint on this address.
	MetricsAddr string

	// LogOutput receives log records. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Application holds the shared components of one undocalc invocation.
type Application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Collector
	server  *http.Server
}

// New loads configuration and builds the logger and metrics collector.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	if opts.MaxEntries != nil {
		cfg.History.MaxEntries = *opts.MaxEntries
	}
	if opts.MetricsAddr != "" {
		cfg.Metrics.Addr = opts.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	logger := NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: opts.LogOutput,
	})
	logger.Debug("configuration loaded",
		"path", opts.ConfigPath,
		"max_entries", cfg.History.MaxEntries,
		"metrics_addr", cfg.Metrics.Addr)

	return &Application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}, nil
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger {
	return app.logger
}

// Metrics returns the metrics collector.
func (app *Application) Metrics() *metrics.Collector {
	return app.metrics
}

// NewAccumulator creates an accumulator configured from the application.
func (app *Application) NewAccumulator() *history.Accumulator {
	return history.New(
		history.WithMaxEntries(app.config.History.MaxEntries),
		history.WithLogger(WithComponent(app.logger, "history")),
		history.WithObserver(app.metrics),
	)
}

// StartMetrics serves the metrics endpoint in the background.
// It returns the bound address, or ErrMetricsDisabled when no address is configured.
func (app *Application) StartMetrics() (string, error) {
	addr := app.config.Metrics.Addr
	if addr == "" {
		return "", ErrMetricsDisabled
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", &InitError{Component: "metrics", Err: err}
	}

	app.server = &http.Server{
		Handler:           app.metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log := WithComponent(app.logger, "metrics")
	go func() {
		if err := app.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", "error", err)
		}
	}()

	log.Info("metrics endpoint listening", "addr", ln.Addr().String())
	return ln.Addr().String(), nil
}

// Shutdown stops the metrics endpoint if it is running.
func (app *Application) Shutdown(ctx context.Context) error {
	if app.server == nil {
		return nil
	}
	err := app.server.Shutdown(ctx)
	app.server = nil
	return err
}

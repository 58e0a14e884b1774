package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/textparser/internal/config"
	httpserver "github.com/fyrsmithlabs/textparser/internal/http"
	"github.com/fyrsmithlabs/textparser/internal/logging"
	"github.com/fyrsmithlabs/textparser/internal/parser"
	"github.com/fyrsmithlabs/textparser/internal/store"
	"github.com/fyrsmithlabs/textparser/internal/telemetry"
)

const instrumentationName = "github.com/fyrsmithlabs/textparser"

func newServeCmd(opts *globalOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse API over HTTP",
		Long: `Start the HTTP API. Templates are loaded once at startup; with --watch
the templates directory is watched and reloaded on change, otherwise
POST /api/v1/templates/reload reloads it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				cfg.Templates.Watch = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "reload templates when the directory changes")

	return cmd
}

// runServer wires the parser, telemetry and HTTP API and blocks until ctx is
// cancelled.
func runServer(ctx context.Context, cfg *config.Config) error {
	tel, err := telemetry.New(ctx, &cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger, err := newLogger(cfg, tel.LoggerProvider())
	if err != nil {
		_ = tel.Shutdown(context.Background())
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Shutdown.Timeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, "telemetry shutdown failed", zap.Error(err))
		}
	}()
	if health := tel.Health(); !health.Healthy || health.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.Strings("problems", health.Problems))
	}

	mode, err := cfg.SelectionMode()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := parser.MultiRecorder{
		parser.NewLogRecorder(logger),
		parser.NewMetricsRecorder(reg),
	}

	p, dir, err := newParser(ctx, cfg, logger,
		parser.WithRecorder(recorder),
		parser.WithTracer(tel.Tracer(instrumentationName)),
	)
	if err != nil {
		return err
	}

	if cfg.Templates.Watch {
		watcher, err := store.NewWatcher(dir, store.WithWatchLogger(logger))
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
		go reloadOnChange(ctx, watcher, p, logger)
	}

	srv, err := httpserver.NewServer(p, logger, &httpserver.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		DefaultMode: mode,
		BodyLimit:   cfg.Server.BodyLimit,
		RateLimit:   cfg.Server.RateLimit,
		RateBurst:   cfg.Server.RateBurst,
		Gatherer:    reg,
		Metrics:     httpserver.NewHTTPMetrics(tel.Meter(instrumentationName), logger),
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "starting textparser",
		zap.String("version", version),
		zap.String("templates", dir.Path()),
		zap.Int("templates.loaded", len(p.Templates())),
		zap.Bool("templates.watch", cfg.Templates.Watch),
		zap.Stringer("mode", mode),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

// reloadOnChange reloads p each time the watcher reports a change.
func reloadOnChange(ctx context.Context, w *store.Watcher, p *parser.Parser, logger *logging.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Changes():
			if !ok {
				return
			}
			if err := p.Reload(ctx); err != nil {
				logger.Error(ctx, "template reload failed", zap.Error(err))
			}
		}
	}
}

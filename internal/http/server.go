// Package http provides the HTTP API for textparser.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/textparser/internal/logging"
	"github.com/fyrsmithlabs/textparser/internal/parser"
	"github.com/fyrsmithlabs/textparser/internal/selector"
	"github.com/fyrsmithlabs/textparser/internal/template"
)

// Parser is the part of parser.Parser the server needs.
type Parser interface {
	Parse(ctx context.Context, text string, mode selector.Mode) (*parser.Result, error)
	Reload(ctx context.Context) error
	Templates() []*template.Template
	Skipped() []parser.SkippedTemplate
}

// Server provides HTTP endpoints for textparser.
type Server struct {
	echo   *echo.Echo
	parser Parser
	logger *logging.Logger
	config *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
	// DefaultMode applies when a parse request names no mode.
	DefaultMode selector.Mode
	// BodyLimit caps request bodies, in echo's size syntax ("1M").
	BodyLimit string
	// RateLimit is requests per second per client IP on /api/v1. Zero
	// disables limiting.
	RateLimit float64
	RateBurst int
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Metrics records request metrics. Nil disables them.
	Metrics *HTTPMetrics
}

// NewServer creates a new HTTP server.
func NewServer(p Parser, logger *logging.Logger, cfg *Config) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("parser cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "127.0.0.1",
			Port: 9090,
		}
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = "1M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.Metrics != nil {
		e.Use(cfg.Metrics.MetricsMiddleware())
	}
	e.Use(requestLogger(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	s := &Server{
		echo:   e,
		parser: p,
		logger: logger,
		config: cfg,
	}
	s.registerRoutes()

	return s, nil
}

// requestLogger stores the request ID in the request context and logs each
// request once it completes.
func requestLogger(logger *logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			ctx := logging.WithRequestID(c.Request().Context(), requestID)
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
			logger.Info(ctx, "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	if s.config.Gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.echo.Group("/api/v1")
	if s.config.RateLimit > 0 {
		burst := s.config.RateBurst
		if burst <= 0 {
			burst = int(s.config.RateLimit) + 1
		}
		v1.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.config.RateLimit),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			},
		)))
	}
	v1.POST("/parse", s.handleParse)
	v1.GET("/templates", s.handleTemplates)
	v1.POST("/templates/reload", s.handleReload)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}

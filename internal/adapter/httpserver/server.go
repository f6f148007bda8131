// Package httpserver exposes the collector's read-only status, round history, health
// probes and metrics over HTTP.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/tradesbychat/internal/adapter/metrics"
	"github.com/pscheid92/tradesbychat/internal/domain"
	"github.com/pscheid92/tradesbychat/internal/platform/config"
	"github.com/pscheid92/tradesbychat/internal/vote"
)

type statusSource interface {
	Status() vote.Status
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	status       statusSource
	history      domain.RoundHistory
	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics
	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer wires routes. history is nil when round history is disabled; registry and
// httpMetrics may be nil in tests.
func NewServer(cfg *config.Config, status statusSource, history domain.RoundHistory, registry *prometheus.Registry, httpMetrics *metrics.HTTPMetrics, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		status:       status,
		history:      history,
		registry:     registry,
		httpMetrics:  httpMetrics,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()
	return srv
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

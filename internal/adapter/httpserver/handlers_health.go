package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/tradesbychat/internal/platform/version"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second
	checkPassed           = "ok"
)

// HealthCheck is a named dependency probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.handleStartup)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

// handleStartup passes once the collector has begun its first round and every
// dependency answers.
func (s *Server) handleStartup(c echo.Context) error {
	if !s.status.Status().Started {
		return writeJSON(c, http.StatusServiceUnavailable, healthReport{Status: "starting"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), startupProbeTimeout)
	defer cancel()
	return s.reportHealth(ctx, c)
}

// handleLiveness only proves the process serves requests. Dependencies are not probed.
func (s *Server) handleLiveness(c echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
		"round":  s.status.Status().Round,
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
	defer cancel()
	return s.reportHealth(ctx, c)
}

// reportHealth runs every check and lists each result, so one probe shows all failing
// dependencies at once.
func (s *Server) reportHealth(ctx context.Context, c echo.Context) error {
	report := healthReport{Status: "ready", Checks: make(map[string]string, len(s.healthChecks))}

	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			report.Status = "unhealthy"
			report.Checks[hc.Name] = err.Error()
			slog.WarnContext(ctx, "Health check failed", "check", hc.Name, "error", err)
			continue
		}
		report.Checks[hc.Name] = checkPassed
	}

	code := http.StatusOK
	if report.Status != "ready" {
		code = http.StatusServiceUnavailable
	}
	return writeJSON(c, code, report)
}

func (s *Server) handleVersion(c echo.Context) error {
	return writeJSON(c, http.StatusOK, version.Get())
}

func writeJSON(c echo.Context, code int, body any) error {
	if err := c.JSON(code, body); err != nil {
		return fmt.Errorf("failed to write %s response: %w", c.Path(), err)
	}
	return nil
}

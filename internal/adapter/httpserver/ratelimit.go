package httpserver

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/tradesbychat/internal/adapter/metrics"
	apperrors "github.com/pscheid92/tradesbychat/internal/platform/errors"
	"golang.org/x/time/rate"
)

// idle client buckets are dropped after this long
const rateLimiterExpiry = 5 * time.Minute

type rateLimit struct {
	PerSecond float64
	Burst     int
}

// enabled is false for a non-positive rate, which turns limiting off.
func (r rateLimit) enabled() bool { return r.PerSecond > 0 }

// retryAfter is the whole number of seconds until one token refills.
func (r rateLimit) retryAfter() string {
	return strconv.Itoa(int(math.Ceil(1 / r.PerSecond)))
}

// newRateLimiter limits requests per client IP and answers 429 with a Retry-After hint.
func newRateLimiter(limit rateLimit, m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	if !limit.enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(limit.PerSecond),
		Burst:     limit.Burst,
		ExpiresIn: rateLimiterExpiry,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, client string, _ error) error {
			m.ObserveRateLimited(c.Path())
			slog.DebugContext(c.Request().Context(), "API request rate limited", "client", client, "route", c.Path())

			c.Response().Header().Set("Retry-After", limit.retryAfter())
			return c.JSON(http.StatusTooManyRequests, apperrors.Response{
				Error: "rate limit exceeded",
				Type:  "rate_limited",
			})
		},
	})
}

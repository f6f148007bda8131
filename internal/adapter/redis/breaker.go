package redis

import (
	"log/slog"
	"time"

	"github.com/pscheid92/tradesbychat/internal/adapter/metrics"
	"github.com/sony/gobreaker"
)

// newBreaker trips after at least 5 requests with a 60% failure rate in a 10s window,
// and probes again with a single request after 30s.
func newBreaker(component string, m *metrics.RedisMetrics) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        component,
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			if m != nil {
				m.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
			}
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/tradesbychat/internal/domain"
)

// VoteMetrics holds Prometheus metrics for polling, classification and round resolution.
// All methods are safe on a nil receiver so the core can run without metrics.
type VoteMetrics struct {
	CommentsProcessed *prometheus.CounterVec
	VotesByDigit      *prometheus.CounterVec
	FeedFetches       *prometheus.CounterVec
	FeedFetchDuration prometheus.Histogram
	Decisions         *prometheus.CounterVec
	RoundVoters       prometheus.Histogram
	DispatchErrors    prometheus.Counter
}

// NewVoteMetrics creates and registers vote pipeline metrics on the given registry.
func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	m := &VoteMetrics{
		CommentsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_processed_total",
			Help:      "Total number of comments classified, by result.",
		}, []string{"result"}),
		VotesByDigit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_by_digit_total",
			Help:      "Total number of counted votes, by digit.",
		}, []string{"digit"}),
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetches_total",
			Help:      "Total number of comment feed fetches, by status.",
		}, []string{"status"}),
		FeedFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of comment feed fetches in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "decisions_total",
			Help:      "Total number of resolved rounds, by outcome and action.",
		}, []string{"outcome", "action"}),
		RoundVoters: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "voters",
			Help:      "Number of counted voters per resolved round.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		DispatchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "dispatch_errors_total",
			Help:      "Total number of decisions the dispatcher failed to handle.",
		}),
	}

	reg.MustRegister(m.CommentsProcessed, m.VotesByDigit, m.FeedFetches, m.FeedFetchDuration,
		m.Decisions, m.RoundVoters, m.DispatchErrors)
	return m
}

func (m *VoteMetrics) ObserveComment(result domain.VoteResult, digit int) {
	if m == nil {
		return
	}
	m.CommentsProcessed.WithLabelValues(result.String()).Inc()
	if result == domain.VoteApplied {
		m.VotesByDigit.WithLabelValues(domain.DigitLabel(digit)).Inc()
	}
}

func (m *VoteMetrics) ObserveFetch(err error, took time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.FeedFetches.WithLabelValues(status).Inc()
	m.FeedFetchDuration.Observe(took.Seconds())
}

func (m *VoteMetrics) ObserveDecision(d domain.Decision) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(d.Outcome.String(), d.Action.String()).Inc()
	m.RoundVoters.Observe(float64(d.Counts.Total()))
}

func (m *VoteMetrics) ObserveDispatchError() {
	if m == nil {
		return
	}
	m.DispatchErrors.Inc()
}

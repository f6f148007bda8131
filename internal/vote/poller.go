package vote

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/tradesbychat/internal/adapter/metrics"
	"github.com/pscheid92/tradesbychat/internal/domain"
	"github.com/pscheid92/tradesbychat/internal/platform/correlation"
)

const defaultPollDelay = 1 * time.Second

// Poller repeatedly fetches comments from the feed and folds them into the tally.
type Poller struct {
	feed    domain.CommentFeed
	tally   *Tally
	clock   clockwork.Clock
	delay   time.Duration
	metrics *metrics.VoteMetrics
}

func NewPoller(feed domain.CommentFeed, tally *Tally, clock clockwork.Clock, delay time.Duration, m *metrics.VoteMetrics) *Poller {
	if delay <= 0 {
		delay = defaultPollDelay
	}
	return &Poller{
		feed:    feed,
		tally:   tally,
		clock:   clock,
		delay:   delay,
		metrics: m,
	}
}

// Run polls until ctx is cancelled. Cancellation is observed between iterations, never
// in the middle of a batch. The delay between fetches is fixed regardless of how long the
// fetch took.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			slog.Info("Stopping vote collection")
			return
		}

		p.poll(ctx)

		select {
		case <-ctx.Done():
			slog.Info("Stopping vote collection")
			return
		case <-p.clock.After(p.delay):
		}
	}
}

// poll runs one fetch-and-classify iteration and returns the number of counted votes.
// A failed fetch is logged and skipped.
func (p *Poller) poll(ctx context.Context) int {
	pollCtx := correlation.WithID(ctx, correlation.NewID())

	start := p.clock.Now()
	comments, err := p.feed.Fetch(pollCtx)
	p.metrics.ObserveFetch(err, p.clock.Since(start))
	if err != nil {
		slog.ErrorContext(pollCtx, "Feed fetch failed, skipping iteration", "error", err)
		return 0
	}

	applied := 0
	for _, c := range comments {
		digit, result := Classify(pollCtx, c, p.tally)
		p.metrics.ObserveComment(result, digit)
		if result == domain.VoteApplied {
			applied++
		}
	}

	if len(comments) > 0 {
		slog.DebugContext(pollCtx, "Poll: batch processed", "comments", len(comments), "votes", applied)
	}
	return applied
}

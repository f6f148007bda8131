package vote

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/tradesbychat/internal/adapter/metrics"
	"github.com/pscheid92/tradesbychat/internal/domain"
	"github.com/pscheid92/tradesbychat/internal/platform/correlation"
	"github.com/pscheid92/tradesbychat/internal/platform/logging"
)

const defaultRoundInterval = 30 * time.Second

// DecisionCycle resolves the tally once per round and dispatches the winning action.
type DecisionCycle struct {
	tally      *Tally
	dispatcher domain.ActionDispatcher
	recorder   domain.RoundRecorder
	clock      clockwork.Clock
	interval   time.Duration
	metrics    *metrics.VoteMetrics

	mu         sync.Mutex
	roundStart time.Time
	round      int64
	roundID    uuid.UUID
	last       *domain.Decision
}

func NewDecisionCycle(tally *Tally, dispatcher domain.ActionDispatcher, recorder domain.RoundRecorder, clock clockwork.Clock, interval time.Duration, m *metrics.VoteMetrics) *DecisionCycle {
	if interval <= 0 {
		interval = defaultRoundInterval
	}
	return &DecisionCycle{
		tally:      tally,
		dispatcher: dispatcher,
		recorder:   recorder,
		clock:      clock,
		interval:   interval,
		metrics:    m,
	}
}

// Begin starts the first round.
func (d *DecisionCycle) Begin() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startRoundLocked(d.clock.Now())
}

func (d *DecisionCycle) startRoundLocked(now time.Time) {
	d.roundStart = now
	d.round++
	d.roundID = uuid.New()
}

// Run fires once per interval until ctx is cancelled. The interval restarts as soon as a
// round is resolved, before its action is dispatched.
func (d *DecisionCycle) Run(ctx context.Context) {
	timer := d.clock.NewTimer(d.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Decision cycle stopped")
			return
		case <-timer.Chan():
			decision := d.resolve()
			timer.Reset(d.interval)
			d.finish(ctx, decision)
		}
	}
}

// resolve drains the tally, resolves the round and starts the next one. The drain
// happens under d.mu so readers never see a round number paired with drained counts.
// Lock order is d.mu then the tally lock.
func (d *DecisionCycle) resolve() domain.Decision {
	d.mu.Lock()
	defer d.mu.Unlock()

	counts := d.tally.Drain()
	outcome, winner, action := Resolve(counts)

	now := d.clock.Now()
	decision := domain.Decision{
		RoundID:    d.roundID,
		Round:      d.round,
		Action:     action,
		Outcome:    outcome,
		Winner:     winner,
		Counts:     counts,
		ResolvedAt: now,
	}
	last := decision
	d.last = &last
	d.startRoundLocked(now)

	return decision
}

// finish logs, dispatches and records a resolved round. Errors are contained here so that
// the cycle keeps running.
func (d *DecisionCycle) finish(ctx context.Context, decision domain.Decision) {
	ctx = correlation.WithRound(ctx, correlation.RoundInfo{Number: decision.Round, ID: decision.RoundID})
	d.metrics.ObserveDecision(decision)
	logDecision(ctx, decision)

	if !decision.IsNoop() {
		if err := d.dispatcher.Dispatch(ctx, decision); err != nil {
			d.metrics.ObserveDispatchError()
			slog.ErrorContext(ctx, "Dispatch failed", "action", decision.Action.String(), "error", err)
		}
	}

	if d.recorder != nil {
		if err := d.recorder.RecordRound(ctx, decision); err != nil {
			slog.ErrorContext(ctx, "Failed to record round", "error", err)
		}
	}

	slog.InfoContext(ctx, "Counters have been reset")
}

func logDecision(ctx context.Context, decision domain.Decision) {
	counts := decision.Counts
	switch decision.Outcome {
	case domain.OutcomeTie:
		slog.InfoContext(ctx, "Vote tie, doing nothing", "total_votes", counts.Total())
	case domain.OutcomeNoPreference, domain.OutcomeUnmapped:
		slog.InfoContext(ctx, "No suitable vote", "winner", decision.Winner, "votes", counts[decision.Winner])
	case domain.OutcomeAction:
		logging.Trading(ctx, "Vote winner", "action", decision.Action.String(), "winner", decision.Winner,
			"buy_votes", counts[1], "sell_votes", counts[2], "flatten_votes", counts[3])
	}
}

// roundView is everything Status shows, read in one critical section.
type roundView struct {
	started   bool
	round     int64
	remaining time.Duration
	counts    domain.VoteCounts
	voters    int
	last      *domain.Decision
}

func (d *DecisionCycle) view() roundView {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := roundView{round: d.round}
	v.counts, v.voters = d.tally.Read()
	if !d.roundStart.IsZero() {
		v.started = true
		v.remaining = max(d.interval-d.clock.Since(d.roundStart), 0)
	}
	if d.last != nil {
		last := *d.last
		v.last = &last
	}
	return v
}

// Remaining returns the time left in the current round, or false before the first round.
func (d *DecisionCycle) Remaining() (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.roundStart.IsZero() {
		return 0, false
	}
	remaining := d.interval - d.clock.Since(d.roundStart)
	return max(remaining, 0), true
}

// Round returns the number of the round currently collecting votes.
func (d *DecisionCycle) Round() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.round
}

// LastDecision returns a copy of the most recently resolved round, if any.
func (d *DecisionCycle) LastDecision() (domain.Decision, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.last == nil {
		return domain.Decision{}, false
	}
	return *d.last, true
}

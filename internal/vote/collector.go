package vote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/tradesbychat/internal/adapter/metrics"
	"github.com/pscheid92/tradesbychat/internal/domain"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAlreadyStarted = errors.New("collector already started")
	ErrStopped        = errors.New("collector stopped")
)

type collectorState int

const (
	stateIdle collectorState = iota
	stateRunning
	stateStopped
)

// Option configures a Collector.
type Option func(*Collector)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Collector) { c.clock = clock }
}

// WithInterval sets the round length.
func WithInterval(d time.Duration) Option {
	return func(c *Collector) { c.interval = d }
}

// WithPollDelay sets the fixed pause between feed fetches.
func WithPollDelay(d time.Duration) Option {
	return func(c *Collector) { c.pollDelay = d }
}

func WithMetrics(m *metrics.VoteMetrics) Option {
	return func(c *Collector) { c.metrics = m }
}

// WithRecorder persists every resolved round. Optional.
func WithRecorder(r domain.RoundRecorder) Option {
	return func(c *Collector) { c.recorder = r }
}

// Collector owns the tally and runs the poller and the decision cycle side by side.
type Collector struct {
	feed       domain.CommentFeed
	dispatcher domain.ActionDispatcher
	recorder   domain.RoundRecorder
	clock      clockwork.Clock
	interval   time.Duration
	pollDelay  time.Duration
	metrics    *metrics.VoteMetrics

	tally  *Tally
	poller *Poller
	cycle  *DecisionCycle

	mu        sync.Mutex
	state     collectorState
	stopPoll  context.CancelFunc
	stopCycle context.CancelFunc
	group     *errgroup.Group
	stopOnce  sync.Once
}

// NewCollector validates its collaborators and builds an idle collector.
func NewCollector(feed domain.CommentFeed, dispatcher domain.ActionDispatcher, opts ...Option) (*Collector, error) {
	c := &Collector{
		feed:       feed,
		dispatcher: dispatcher,
		clock:      clockwork.NewRealClock(),
		interval:   defaultRoundInterval,
		pollDelay:  defaultPollDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.feed == nil:
		return nil, fmt.Errorf("%w: comment feed is required", domain.ErrInvalidConfig)
	case c.dispatcher == nil:
		return nil, fmt.Errorf("%w: action dispatcher is required", domain.ErrInvalidConfig)
	case c.clock == nil:
		return nil, fmt.Errorf("%w: clock is required", domain.ErrInvalidConfig)
	case c.interval <= 0:
		return nil, fmt.Errorf("%w: round interval must be positive, got %s", domain.ErrInvalidConfig, c.interval)
	case c.pollDelay <= 0:
		return nil, fmt.Errorf("%w: poll delay must be positive, got %s", domain.ErrInvalidConfig, c.pollDelay)
	}

	c.tally = NewTally()
	c.poller = NewPoller(c.feed, c.tally, c.clock, c.pollDelay, c.metrics)
	c.cycle = NewDecisionCycle(c.tally, c.dispatcher, c.recorder, c.clock, c.interval, c.metrics)
	return c, nil
}

// Start begins the first round and launches polling and resolution in the background.
// Both stop when ctx is cancelled or Stop is called.
func (c *Collector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateRunning:
		return ErrAlreadyStarted
	case stateStopped:
		return ErrStopped
	}

	pollCtx, stopPoll := context.WithCancel(ctx)
	cycleCtx, stopCycle := context.WithCancel(ctx)
	c.stopPoll, c.stopCycle = stopPoll, stopCycle

	c.cycle.Begin()
	slog.InfoContext(ctx, "Starting vote collection", "round_interval", c.interval, "poll_delay", c.pollDelay)

	c.group = &errgroup.Group{}
	c.group.Go(func() error {
		c.poller.Run(pollCtx)
		return nil
	})
	c.group.Go(func() error {
		c.cycle.Run(cycleCtx)
		return nil
	})

	c.state = stateRunning
	return nil
}

// Stop cancels polling and resolution and waits for both to return. Safe to call more
// than once and before Start.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		group := c.group
		if c.stopPoll != nil {
			c.stopPoll()
		}
		if c.stopCycle != nil {
			c.stopCycle()
		}
		c.state = stateStopped
		c.mu.Unlock()

		if group != nil {
			_ = group.Wait()
		}
		slog.Info("Vote collector stopped")
	})
}

// Status returns a copy-only view of the current round. Every field comes from the same
// instant, so counts and voters always belong to the reported round. It never fails;
// before Start it reports Started=false with zero counts.
func (c *Collector) Status() Status {
	v := c.cycle.view()

	return Status{
		Started:      v.started,
		Round:        v.round,
		Remaining:    v.remaining,
		Countdown:    FormatCountdown(v.remaining),
		Counts:       v.counts,
		Voters:       v.voters,
		BuyVotes:     v.counts[1],
		SellVotes:    v.counts[2],
		FlattenVotes: v.counts[3],
		LastDecision: v.last,
	}
}

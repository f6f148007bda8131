package vote

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/tradesbychat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector_Validation(t *testing.T) {
	feed := &mockFeed{}
	dispatcher := &mockDispatcher{}

	tests := []struct {
		name       string
		feed       domain.CommentFeed
		dispatcher domain.ActionDispatcher
		opts       []Option
	}{
		{name: "nil feed", dispatcher: dispatcher},
		{name: "nil dispatcher", feed: feed},
		{name: "zero interval", feed: feed, dispatcher: dispatcher, opts: []Option{WithInterval(0)}},
		{name: "negative poll delay", feed: feed, dispatcher: dispatcher, opts: []Option{WithPollDelay(-time.Second)}},
		{name: "nil clock", feed: feed, dispatcher: dispatcher, opts: []Option{WithClock(nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCollector(tt.feed, tt.dispatcher, tt.opts...)
			require.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Nil(t, c)
		})
	}
}

func TestCollector_StatusBeforeStart(t *testing.T) {
	c, err := NewCollector(&mockFeed{}, &mockDispatcher{}, WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	st := c.Status()
	assert.False(t, st.Started)
	assert.Equal(t, "00:00", st.Countdown)
	assert.Equal(t, domain.VoteCounts{}, st.Counts)
	assert.Nil(t, st.LastDecision)
}

func TestCollector_StartTwiceAndAfterStop(t *testing.T) {
	c, err := NewCollector(&mockFeed{}, &mockDispatcher{}, WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.ErrorIs(t, c.Start(ctx), ErrAlreadyStarted)

	c.Stop()
	c.Stop()
	assert.ErrorIs(t, c.Start(ctx), ErrStopped)
}

func TestCollector_StopBeforeStart(t *testing.T) {
	c, err := NewCollector(&mockFeed{}, &mockDispatcher{})
	require.NoError(t, err)

	c.Stop()
	assert.ErrorIs(t, c.Start(context.Background()), ErrStopped)
}

func TestCollector_EndToEndRound(t *testing.T) {
	clock := clockwork.NewFakeClock()
	feed := &mockFeed{}
	feed.push(
		comment("alice", "1"),
		comment("bob", "1"),
		comment("carol", "2"),
		comment("alice", "2"),
		comment("dave", "hello"),
	)
	dispatcher := &mockDispatcher{}
	recorder := &mockRecorder{}

	c, err := NewCollector(feed, dispatcher,
		WithClock(clock),
		WithInterval(10*time.Second),
		WithPollDelay(time.Second),
		WithRecorder(recorder),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	// poller delay and round timer
	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 2))

	st := c.Status()
	assert.True(t, st.Started)
	assert.Equal(t, int64(1), st.Round)
	assert.Equal(t, "00:10", st.Countdown)
	assert.Equal(t, 2, st.BuyVotes)
	assert.Equal(t, 1, st.SellVotes)
	assert.Equal(t, 0, st.FlattenVotes)
	assert.Equal(t, 3, st.Voters)

	clock.Advance(10 * time.Second)

	require.Eventually(t, func() bool {
		return len(recorder.getRounds()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	decisions := dispatcher.getDecisions()
	require.Len(t, decisions, 1)
	assert.Equal(t, domain.ActionBuy, decisions[0].Action)

	st = c.Status()
	assert.Equal(t, int64(2), st.Round)
	assert.Equal(t, 0, st.Voters)
	require.NotNil(t, st.LastDecision)
	assert.Equal(t, domain.ActionBuy, st.LastDecision.Action)
}

func TestCollector_StopJoinsGoroutines(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, err := NewCollector(&mockFeed{}, &mockDispatcher{}, WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

package correlation

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewHandler(inner))
}

func TestNewID_Length(t *testing.T) {
	assert.Len(t, NewID(), 8)
}

func TestNewID_Unique(t *testing.T) {
	ids := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		ids[NewID()] = struct{}{}
	}
	assert.Len(t, ids, 100)
}

func TestID_EmptyStringIsMissing(t *testing.T) {
	id, ok := ID(WithID(context.Background(), ""))
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestRound_Roundtrip(t *testing.T) {
	roundID := uuid.New()
	ctx := WithRound(context.Background(), RoundInfo{Number: 7, ID: roundID})

	round, ok := Round(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(7), round.Number)
	assert.Equal(t, roundID, round.ID)

	_, ok = Round(context.Background())
	assert.False(t, ok)
}

func TestHandler_AddsCorrelationAndRound(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	roundID := uuid.New()

	ctx := WithID(context.Background(), "test1234")
	ctx = WithRound(ctx, RoundInfo{Number: 3, ID: roundID})
	logger.InfoContext(ctx, "round resolved", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "correlation_id=test1234")
	assert.Contains(t, output, "round=3")
	assert.Contains(t, output, "round_id="+roundID.String())
	assert.Contains(t, output, "key=value")
}

func TestHandler_NoAttributesWhenMissing(t *testing.T) {
	var buf bytes.Buffer
	newTestLogger(&buf).InfoContext(context.Background(), "plain")

	output := buf.String()
	assert.NotContains(t, output, "correlation_id")
	assert.NotContains(t, output, "round_id")
}

func TestHandler_WithAttrs_PreservesCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf).With("component", "poller")

	logger.InfoContext(WithID(context.Background(), "attr1234"), "with attrs")

	output := buf.String()
	assert.Contains(t, output, "correlation_id=attr1234")
	assert.Contains(t, output, "component=poller")
}

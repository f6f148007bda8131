// Package correlation tags contexts with poll-iteration and round identifiers so that
// every log line emitted while handling them can be grouped.
package correlation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

type (
	idKey    struct{}
	roundKey struct{}
)

// RoundInfo identifies one voting round.
type RoundInfo struct {
	Number int64
	ID     uuid.UUID
}

// NewID generates an 8-character hex correlation ID (4 random bytes).
func NewID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithID returns a new context carrying the given correlation ID.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// ID extracts the correlation ID from ctx, returning ("", false) if not present.
func ID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idKey{}).(string)
	return id, ok && id != ""
}

// WithRound returns a new context carrying the round being resolved.
func WithRound(ctx context.Context, round RoundInfo) context.Context {
	return context.WithValue(ctx, roundKey{}, round)
}

// Round extracts the round from ctx.
func Round(ctx context.Context) (RoundInfo, bool) {
	r, ok := ctx.Value(roundKey{}).(RoundInfo)
	return r, ok
}

// Handler wraps an existing slog.Handler and adds "correlation_id", "round" and
// "round_id" attributes when the context carries them.
type Handler struct {
	inner slog.Handler
}

func NewHandler(inner slog.Handler) *Handler {
	return &Handler{inner: inner}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ID(ctx); ok {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	if round, ok := Round(ctx); ok {
		r.AddAttrs(slog.Int64("round", round.Number), slog.String("round_id", round.ID.String()))
	}
	if err := h.inner.Handle(ctx, r); err != nil {
		return fmt.Errorf("correlation handler: %w", err)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name)}
}

package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pscheid92/tradesbychat/internal/domain"
)

// Position is the net exposure the guard believes the account holds.
type Position int

const (
	Flat Position = iota
	Long
	Short
)

func (p Position) String() string {
	switch p {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// PositionGuard wraps a dispatcher and only opens a position from flat. Buy or Sell
// while a position is open is dropped whatever its side; the position is never reversed.
// Flatten is forwarded only when a position exists. The tracked position only moves
// when the wrapped dispatcher succeeds.
type PositionGuard struct {
	next domain.ActionDispatcher

	mu       sync.Mutex
	position Position
}

func NewPositionGuard(next domain.ActionDispatcher) *PositionGuard {
	return &PositionGuard{next: next}
}

func (g *PositionGuard) Dispatch(ctx context.Context, d domain.Decision) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	target, ok := targetPosition(d.Action)
	if !ok {
		return nil
	}

	switch {
	case target == g.position:
		slog.InfoContext(ctx, "Already in a position, skipping", "action", d.Action.String(), "position", g.position.String())
		return nil
	case target != Flat && g.position != Flat:
		slog.InfoContext(ctx, "Opposite position open, skipping", "action", d.Action.String(), "position", g.position.String())
		return nil
	}

	if err := g.next.Dispatch(ctx, d); err != nil {
		return fmt.Errorf("dispatch %s: %w", d.Action, err)
	}

	slog.DebugContext(ctx, "Position changed", "from", g.position.String(), "to", target.String())
	g.position = target
	return nil
}

// Position returns the currently tracked position.
func (g *PositionGuard) Position() Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func targetPosition(a domain.Action) (Position, bool) {
	switch a {
	case domain.ActionBuy:
		return Long, true
	case domain.ActionSell:
		return Short, true
	case domain.ActionFlatten:
		return Flat, true
	default:
		return Flat, false
	}
}

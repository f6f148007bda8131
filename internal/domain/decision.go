package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action is the trading intent a round resolves to.
type Action int

const (
	ActionNone Action = iota
	ActionBuy
	ActionSell
	ActionFlatten
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	case ActionFlatten:
		return "flatten"
	default:
		return "none"
	}
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	*a = ParseAction(string(text))
	return nil
}

// ParseAction converts a string produced by Action.String back, defaulting to none.
func ParseAction(s string) Action {
	switch s {
	case "buy":
		return ActionBuy
	case "sell":
		return ActionSell
	case "flatten":
		return ActionFlatten
	default:
		return ActionNone
	}
}

// Outcome explains how a round was resolved.
type Outcome int

const (
	OutcomeAction       Outcome = iota // A mapped digit won outright
	OutcomeTie                         // Top two digits share the highest count (includes no votes)
	OutcomeNoPreference                // Digit 0 won
	OutcomeUnmapped                    // A digit without an action won
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAction:
		return "action"
	case OutcomeTie:
		return "tie"
	case OutcomeNoPreference:
		return "no_preference"
	case OutcomeUnmapped:
		return "unmapped"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	*o = ParseOutcome(string(text))
	return nil
}

// ParseOutcome converts a string produced by Outcome.String back, defaulting to tie.
func ParseOutcome(s string) Outcome {
	switch s {
	case "action":
		return OutcomeAction
	case "no_preference":
		return OutcomeNoPreference
	case "unmapped":
		return OutcomeUnmapped
	default:
		return OutcomeTie
	}
}

// Decision is the resolution of one round.
type Decision struct {
	RoundID    uuid.UUID  `json:"round_id"`
	Round      int64      `json:"round"`
	Action     Action     `json:"action"`
	Outcome    Outcome    `json:"outcome"`
	Winner     int        `json:"winner"` // -1 when there is no single leader
	Counts     VoteCounts `json:"counts"`
	ResolvedAt time.Time  `json:"resolved_at"`
}

// IsNoop reports whether the decision carries no action for the dispatcher.
func (d Decision) IsNoop() bool {
	return d.Action == ActionNone
}

// ActionDispatcher executes resolved decisions. It receives at most one call per round and
// never for a no-op. Handling of repeated same-direction signals is its concern.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, decision Decision) error
}

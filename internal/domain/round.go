package domain

import (
	"context"

	"github.com/google/uuid"
)

// RoundRecorder persists resolved rounds for later inspection.
type RoundRecorder interface {
	RecordRound(ctx context.Context, decision Decision) error
}

// RoundHistory lists previously recorded rounds, newest first.
type RoundHistory interface {
	ListRecent(ctx context.Context, limit int) ([]Decision, error)
	GetByID(ctx context.Context, roundID uuid.UUID) (*Decision, error)
}

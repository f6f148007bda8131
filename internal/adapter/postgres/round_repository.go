package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/tradesbychat/internal/domain"
)

const maxListLimit = 500

// RoundRepo implements domain.RoundRecorder and domain.RoundHistory for one feed.
type RoundRepo struct {
	pool   *pgxpool.Pool
	feedID string
}

func NewRoundRepo(pool *pgxpool.Pool, feedID string) *RoundRepo {
	return &RoundRepo{pool: pool, feedID: feedID}
}

func (r *RoundRepo) RecordRound(ctx context.Context, d domain.Decision) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rounds (id, feed_id, round, outcome, action, winner, counts, total_votes, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		d.RoundID, r.feedID, d.Round, d.Outcome.String(), d.Action.String(), d.Winner,
		countsToArray(d.Counts), d.Counts.Total(), d.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert round %d: %w", d.Round, err)
	}
	return nil
}

// ListRecent returns up to limit rounds of this feed, newest first.
func (r *RoundRepo) ListRecent(ctx context.Context, limit int) ([]domain.Decision, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, round, outcome, action, winner, counts, resolved_at
		FROM rounds
		WHERE feed_id = $1
		ORDER BY resolved_at DESC, round DESC
		LIMIT $2`, r.feedID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}

	decisions, err := pgx.CollectRows(rows, scanDecision)
	if err != nil {
		return nil, fmt.Errorf("failed to scan rounds: %w", err)
	}
	return decisions, nil
}

func (r *RoundRepo) GetByID(ctx context.Context, roundID uuid.UUID) (*domain.Decision, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, round, outcome, action, winner, counts, resolved_at
		FROM rounds
		WHERE feed_id = $1 AND id = $2`, r.feedID, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDecision)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return &d, nil
}

func scanDecision(row pgx.CollectableRow) (domain.Decision, error) {
	var (
		d          domain.Decision
		outcome    string
		action     string
		winner     int16
		counts     []int32
		resolvedAt time.Time
	)
	if err := row.Scan(&d.RoundID, &d.Round, &outcome, &action, &winner, &counts, &resolvedAt); err != nil {
		return domain.Decision{}, err
	}

	d.Outcome = domain.ParseOutcome(outcome)
	d.Action = domain.ParseAction(action)
	d.Winner = int(winner)
	d.Counts = arrayToCounts(counts)
	d.ResolvedAt = resolvedAt.UTC()
	return d, nil
}

func countsToArray(c domain.VoteCounts) []int32 {
	out := make([]int32, len(c))
	for i, n := range c {
		out[i] = int32(n)
	}
	return out
}

func arrayToCounts(a []int32) domain.VoteCounts {
	var c domain.VoteCounts
	for i := 0; i < len(a) && i < len(c); i++ {
		c[i] = int(a[i])
	}
	return c
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/tradesbychat/internal/domain"
	"github.com/pscheid92/tradesbychat/internal/platform/retry"
	goredis "github.com/redis/go-redis/v9"
)

// DecisionMessage is the payload published for each dispatched decision.
type DecisionMessage struct {
	domain.Decision
	Symbol  string `json:"symbol"`
	Account string `json:"account"`
}

// DecisionPublisher implements domain.ActionDispatcher by publishing decisions on a
// Redis channel for a downstream order executor.
type DecisionPublisher struct {
	rdb     goredis.Cmdable
	channel string
	symbol  string
	account string
	policy  retry.Policy
}

func NewDecisionPublisher(rdb goredis.Cmdable, feedID, symbol, account string, clock clockwork.Clock) *DecisionPublisher {
	return &DecisionPublisher{
		rdb:     rdb,
		channel: decisionChannel(feedID),
		symbol:  symbol,
		account: account,
		policy: retry.Policy{
			MaxAttempts:    3,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     time.Second,
			Clock:          clock,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Warn("Publish decision failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
			},
		},
	}
}

func (p *DecisionPublisher) Dispatch(ctx context.Context, d domain.Decision) error {
	payload, err := json.Marshal(DecisionMessage{Decision: d, Symbol: p.symbol, Account: p.account})
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	receivers, err := retry.Do(ctx, p.policy, classifyPublishError, func(ctx context.Context) (int64, error) {
		return p.rdb.Publish(ctx, p.channel, payload).Result()
	})
	if err != nil {
		return fmt.Errorf("publish decision to %s: %w", p.channel, err)
	}

	if receivers == 0 {
		slog.WarnContext(ctx, "Decision published but no executor is subscribed", "channel", p.channel, "action", d.Action.String())
		return nil
	}
	slog.DebugContext(ctx, "Decision published", "channel", p.channel, "receivers", receivers)
	return nil
}

func classifyPublishError(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}
	return retry.Retry
}

func decisionChannel(feedID string) string {
	return "decisions:" + feedID
}

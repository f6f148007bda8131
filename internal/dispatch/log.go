package dispatch

import (
	"context"

	"github.com/pscheid92/tradesbychat/internal/domain"
	"github.com/pscheid92/tradesbychat/internal/platform/logging"
)

// LogDispatcher records decisions in the log and nothing else. Used when decisions are
// not published to a downstream executor.
type LogDispatcher struct {
	symbol  string
	account string
}

func NewLogDispatcher(symbol, account string) *LogDispatcher {
	return &LogDispatcher{symbol: symbol, account: account}
}

func (l *LogDispatcher) Dispatch(ctx context.Context, d domain.Decision) error {
	logging.Trading(ctx, "Order signal",
		"action", d.Action.String(),
		"symbol", l.symbol,
		"account", l.account,
		"round", d.Round,
	)
	return nil
}

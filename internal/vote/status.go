package vote

import (
	"fmt"
	"time"

	"github.com/pscheid92/tradesbychat/internal/domain"
)

// Status is a point-in-time view of the collector for display.
type Status struct {
	Started      bool              `json:"started"`
	Round        int64             `json:"round"`
	Remaining    time.Duration     `json:"-"`
	Countdown    string            `json:"countdown"`
	Counts       domain.VoteCounts `json:"counts"`
	Voters       int               `json:"voters"`
	BuyVotes     int               `json:"buy_votes"`
	SellVotes    int               `json:"sell_votes"`
	FlattenVotes int               `json:"flatten_votes"`
	LastDecision *domain.Decision  `json:"last_decision,omitempty"`
}

// FormatCountdown renders d as MM:SS. Partial seconds are dropped, so the display
// reaches 00:00 during the last second of a round.
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

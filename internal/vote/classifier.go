package vote

import (
	"context"
	"log/slog"

	"github.com/pscheid92/tradesbychat/internal/domain"
)

// ParseVote reports the digit a comment votes for. Only a text consisting of exactly one
// ASCII digit is a vote; surrounding whitespace or any other character disqualifies it.
func ParseVote(text string) (int, bool) {
	if len(text) != 1 {
		return 0, false
	}
	c := text[0]
	if c < '0' || c > '9' {
		return 0, false
	}
	return int(c - '0'), true
}

// Classify folds one comment into the tally. A voter's first qualifying comment in a round
// is authoritative; everything after it is ignored. Returns the counted digit (or -1) and
// why the comment was or wasn't counted.
func Classify(ctx context.Context, c domain.Comment, t *Tally) (int, domain.VoteResult) {
	digit, ok := ParseVote(c.Text)

	result := t.apply(c.VoterID, digit, ok)
	if result != domain.VoteApplied {
		return -1, result
	}

	slog.InfoContext(ctx, "Vote received", "voter", c.VoterName, "digit", digit)
	return digit, result
}

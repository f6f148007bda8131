package vote

import (
	"sync"

	"github.com/pscheid92/tradesbychat/internal/domain"
)

// Tally is the per-round vote aggregate shared by the poller and the decision cycle.
// A voter is in the seen set iff exactly one digit was incremented for them since the
// last drain; both are updated under the same lock.
type Tally struct {
	mu     sync.Mutex
	counts domain.VoteCounts
	seen   map[string]struct{}
}

func NewTally() *Tally {
	return &Tally{seen: make(map[string]struct{})}
}

// apply records a vote for voterID unless the voter already voted this round.
// valid=false means the comment text did not parse as a vote.
func (t *Tally) apply(voterID string, digit int, valid bool) domain.VoteResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, voted := t.seen[voterID]; voted {
		return domain.VoteDuplicate
	}
	if !valid || digit < 0 || digit >= domain.DigitCount {
		return domain.VoteNoMatch
	}

	t.seen[voterID] = struct{}{}
	t.counts[digit]++
	return domain.VoteApplied
}

// Snapshot returns a copy of the current counts.
func (t *Tally) Snapshot() domain.VoteCounts {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts
}

// Voters returns the number of voters counted this round.
func (t *Tally) Voters() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// Read returns the counts and the voter count from the same instant.
func (t *Tally) Read() (domain.VoteCounts, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts, len(t.seen)
}

// Drain returns the current counts and clears the tally in one critical section, so an
// increment lands either in the returned counts or in the next round, never in neither.
func (t *Tally) Drain() domain.VoteCounts {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := t.counts
	t.counts = domain.VoteCounts{}
	clear(t.seen)
	return counts
}

package vote

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pscheid92/tradesbychat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTally_DrainResetsCountsAndVoters(t *testing.T) {
	tally := NewTally()
	require.Equal(t, domain.VoteApplied, tally.apply("a", 1, true))
	require.Equal(t, domain.VoteApplied, tally.apply("b", 1, true))
	require.Equal(t, domain.VoteApplied, tally.apply("c", 2, true))

	counts := tally.Drain()
	assert.Equal(t, 2, counts[1])
	assert.Equal(t, 1, counts[2])

	assert.Equal(t, domain.VoteCounts{}, tally.Snapshot())
	assert.Equal(t, 0, tally.Voters())

	// a voter from the previous round may vote again
	assert.Equal(t, domain.VoteApplied, tally.apply("a", 2, true))
}

func TestTally_SnapshotIsACopy(t *testing.T) {
	tally := NewTally()
	tally.apply("a", 4, true)

	snap := tally.Snapshot()
	snap[4] = 100

	assert.Equal(t, 1, tally.Snapshot()[4])
}

func TestTally_RejectsOutOfRangeDigit(t *testing.T) {
	tally := NewTally()
	assert.Equal(t, domain.VoteNoMatch, tally.apply("a", 10, true))
	assert.Equal(t, domain.VoteNoMatch, tally.apply("a", -1, true))
	assert.Equal(t, 0, tally.Voters())
}

func TestTally_ConcurrentVotesNeverExceedVoters(t *testing.T) {
	tally := NewTally()
	const workers = 16
	const voters = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			// every worker submits the same voters with different digits
			for v := 0; v < voters; v++ {
				tally.apply(fmt.Sprintf("voter-%d", v), (v+w)%domain.DigitCount, true)
			}
		}()
	}
	wg.Wait()

	counts := tally.Snapshot()
	assert.Equal(t, voters, counts.Total())
	assert.Equal(t, voters, tally.Voters())
}

func TestTally_ConcurrentDrainLosesNothing(t *testing.T) {
	tally := NewTally()
	const workers = 8
	const perWorker = 500

	var applied atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if tally.apply(fmt.Sprintf("w%d-%d", w, i), i%domain.DigitCount, true) == domain.VoteApplied {
					applied.Add(1)
				}
			}
		}()
	}

	done := make(chan struct{})
	var drained int
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			drained += tally.Drain().Total()
		}
	}()

	wg.Wait()
	<-done
	drained += tally.Drain().Total()

	assert.Equal(t, int(applied.Load()), drained)
	assert.Equal(t, workers*perWorker, drained)
}

package vote

import (
	"testing"

	"github.com/pscheid92/tradesbychat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		counts  domain.VoteCounts
		outcome domain.Outcome
		winner  int
		action  domain.Action
	}{
		{
			name:    "no votes is a tie",
			counts:  domain.VoteCounts{},
			outcome: domain.OutcomeTie,
			winner:  -1,
			action:  domain.ActionNone,
		},
		{
			name:    "top two equal",
			counts:  domain.VoteCounts{1: 5, 2: 5},
			outcome: domain.OutcomeTie,
			winner:  -1,
			action:  domain.ActionNone,
		},
		{
			name:    "tie between buy and no preference",
			counts:  domain.VoteCounts{0: 3, 1: 3, 2: 1},
			outcome: domain.OutcomeTie,
			winner:  -1,
			action:  domain.ActionNone,
		},
		{
			name:    "single vote for buy",
			counts:  domain.VoteCounts{1: 1},
			outcome: domain.OutcomeAction,
			winner:  1,
			action:  domain.ActionBuy,
		},
		{
			name:    "sell majority",
			counts:  domain.VoteCounts{1: 2, 2: 7, 3: 1},
			outcome: domain.OutcomeAction,
			winner:  2,
			action:  domain.ActionSell,
		},
		{
			name:    "flatten majority",
			counts:  domain.VoteCounts{3: 4, 9: 1},
			outcome: domain.OutcomeAction,
			winner:  3,
			action:  domain.ActionFlatten,
		},
		{
			name:    "tie below the winner is irrelevant",
			counts:  domain.VoteCounts{1: 3, 2: 2, 3: 2},
			outcome: domain.OutcomeAction,
			winner:  1,
			action:  domain.ActionBuy,
		},
		{
			name:    "digit zero wins",
			counts:  domain.VoteCounts{0: 4, 1: 1},
			outcome: domain.OutcomeNoPreference,
			winner:  0,
			action:  domain.ActionNone,
		},
		{
			name:    "unmapped digit wins",
			counts:  domain.VoteCounts{1: 1, 7: 3},
			outcome: domain.OutcomeUnmapped,
			winner:  7,
			action:  domain.ActionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, winner, action := Resolve(tt.counts)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.winner, winner)
			assert.Equal(t, tt.action, action)
		})
	}
}

func TestResolve_DoesNotModifyCounts(t *testing.T) {
	counts := domain.VoteCounts{2: 3, 5: 1}
	Resolve(counts)
	assert.Equal(t, domain.VoteCounts{2: 3, 5: 1}, counts)
}

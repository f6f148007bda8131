package vote

import (
	"cmp"
	"slices"

	"github.com/pscheid92/tradesbychat/internal/domain"
)

var digitActions = map[int]domain.Action{
	1: domain.ActionBuy,
	2: domain.ActionSell,
	3: domain.ActionFlatten,
}

// Resolve turns a round's counts into an outcome. Digits are ranked by count, highest
// first; if the top two share a count the round is a tie (an empty round included).
// Digit 0 means "no preference" and never maps to an action. The winner is -1 on a tie.
func Resolve(counts domain.VoteCounts) (domain.Outcome, int, domain.Action) {
	ranked := rankDigits(counts)
	top, runnerUp := ranked[0], ranked[1]

	if counts[top] == counts[runnerUp] {
		return domain.OutcomeTie, -1, domain.ActionNone
	}
	if top == 0 {
		return domain.OutcomeNoPreference, top, domain.ActionNone
	}

	action, ok := digitActions[top]
	if !ok {
		return domain.OutcomeUnmapped, top, domain.ActionNone
	}
	return domain.OutcomeAction, top, action
}

func rankDigits(counts domain.VoteCounts) []int {
	digits := make([]int, domain.DigitCount)
	for i := range digits {
		digits[i] = i
	}
	slices.SortStableFunc(digits, func(a, b int) int {
		return cmp.Compare(counts[b], counts[a])
	})
	return digits
}

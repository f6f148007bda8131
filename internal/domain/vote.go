package domain

import "strconv"

// DigitCount is the number of distinct vote digits (0-9).
const DigitCount = 10

// VoteCounts holds the per-digit tally of one round. It is an array so that every copy
// is independent of the live tally.
type VoteCounts [DigitCount]int

// Total returns the sum over all digits.
func (c VoteCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// VoteResult describes why a comment was or wasn't counted.
type VoteResult int

const (
	VoteApplied   VoteResult = iota // Comment counted as a vote
	VoteNoMatch                     // Text is not exactly one digit
	VoteDuplicate                   // Voter already voted this round
)

func (r VoteResult) String() string {
	switch r {
	case VoteApplied:
		return "applied"
	case VoteNoMatch:
		return "no_match"
	case VoteDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// DigitLabel renders a digit for metric labels and log attributes.
func DigitLabel(digit int) string {
	return strconv.Itoa(digit)
}

// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (comment.go, vote.go, decision.go, round.go, errors.go) hold the
// shared value types and the contracts of the external collaborators: the comment feed,
// the action dispatcher and the round recorder. No implementation code, just contracts.
package domain

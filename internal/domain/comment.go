package domain

import "context"

// Comment is a single chat message as delivered by the feed. It is consumed once by the
// classifier and never retained.
type Comment struct {
	VoterID   string `json:"voter_id"`
	VoterName string `json:"voter_name"`
	Text      string `json:"text"`
}

// CommentFeed yields the comments that arrived since the previous call.
// An empty batch is valid. Implementations own transport, parsing and timeouts.
type CommentFeed interface {
	Fetch(ctx context.Context) ([]Comment, error)
}

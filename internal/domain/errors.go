package domain

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrFeedUnavailable = errors.New("comment feed unavailable")
	ErrRoundNotFound   = errors.New("round not found")
)

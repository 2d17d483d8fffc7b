package domain

import "errors"

var (
	// ErrCatalogUnavailable is returned when the catalog store cannot be
	// reached. This is the only error that aborts a whole comparison.
	ErrCatalogUnavailable = errors.New("catalog store unavailable")

	// ErrNormalization is returned when the AI expansion response is
	// malformed. Callers recover by treating the raw text as a single item.
	ErrNormalization = errors.New("malformed normalization response")

	// ErrMatchTimeout is returned when an AI matching call exceeds its
	// deadline. Callers recover by marking the pair unmatched.
	ErrMatchTimeout = errors.New("ai match call timed out")

	// ErrNoMatch is returned when no candidate clears the matching floor.
	ErrNoMatch = errors.New("no matching product")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrAIUnavailable is returned when the AI service request fails.
	ErrAIUnavailable = errors.New("ai service request failed")
)

package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrAggregateDrift marks a stored participant aggregate that no
	// longer equals the sum over its source records. Always recoverable
	// by recomputation, never by hand-patching.
	ErrAggregateDrift = errors.New("participant aggregate drift")
)

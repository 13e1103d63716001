package organization

import "errors"

var (
	ErrNotFound = errors.New("organization not found")

	// ErrSeatLimitReached is returned by the conditional seat write when
	// the advisory counter is already at the ceiling.
	ErrSeatLimitReached = errors.New("organization seat limit reached")
)

package entitlement

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/subman/plan"
)

var (
	// ErrSubscriptionNotActive is returned when an organization whose
	// subscription is canceled or expired tries to add users.
	ErrSubscriptionNotActive = errors.New("organization subscription is not active")

	// ErrCannotModifySelf is returned when a caller attempts to remove
	// their own account.
	ErrCannotModifySelf = errors.New("cannot modify your own account")
)

// SeatLimitError reports a denied seat admission, carrying the numbers
// clients display.
type SeatLimitError struct {
	Current  int64
	Max      int64
	PlanName plan.Name
}

func (e *SeatLimitError) Error() string {
	return fmt.Sprintf("user limit reached (%d/%d) on plan %s, upgrade to add more users", e.Current, e.Max, e.PlanName)
}

package subscription

import "errors"

var (
	// ErrReferenceNotFound is returned when a checkout completion event
	// carries correlation metadata that matches no local record. The
	// caller should reject the delivery so the provider retries it.
	ErrReferenceNotFound = errors.New("event references unknown organization or plan")

	// ErrEventAlreadyProcessed is returned by the ledger when an event ID
	// was already recorded. The delivery is acknowledged without effect.
	ErrEventAlreadyProcessed = errors.New("event already processed")

	ErrEmailTaken = errors.New("email address is already registered")
)

package subscription

import "context"

// EventLedger records processed webhook event IDs so redelivered events
// are acknowledged without being applied twice.
type EventLedger interface {
	// MarkProcessed records the event ID, returning
	// ErrEventAlreadyProcessed if it was recorded before. The insert is
	// atomic; concurrent deliveries of the same event see exactly one
	// success.
	MarkProcessed(ctx context.Context, eventID string) error

	// Forget removes a recorded event ID so a later redelivery can be
	// processed. Used when handling fails after the ID was recorded.
	Forget(ctx context.Context, eventID string) error
}

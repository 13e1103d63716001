package billing

import "time"

// EventType is the normalized billing event type. Provider-specific
// event names are mapped here by the gateway implementation.
type EventType string

const (
	EventCheckoutCompleted   EventType = "checkout_completed"
	EventSubscriptionUpdated EventType = "subscription_updated"
	EventSubscriptionDeleted EventType = "subscription_deleted"

	// EventIgnored marks event types this application does not process.
	// They are still acknowledged so the provider stops redelivering.
	EventIgnored EventType = "ignored"
)

// Event is a verified, normalized webhook event. Field presence depends
// on the event type: checkout completion carries the correlation
// metadata, subscription updates carry the provider's subscription
// state instead.
type Event struct {
	ID            string    // provider event ID, used for deduplication
	Type          EventType // normalized type
	ProviderEvent string    // original provider event name

	// Correlation metadata (checkout completion).
	OrganizationID string
	PlanID         string

	// Provider subscription state (all subscription events).
	SubscriptionID string
	Status         string // provider status string, verbatim
	PriceID        string
	PeriodEnd      time.Time
}

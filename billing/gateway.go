// Package billing is the boundary to the external billing provider.
// It owns customer provisioning, price lifecycle, checkout sessions,
// and webhook verification; all subscription state of record stays in
// the application's own store.
package billing

import (
	"context"
	"time"
)

// PriceMinter creates and retires price objects at the provider.
// Prices are immutable there: a price-affecting plan change mints a new
// price and deactivates the old one.
type PriceMinter interface {
	// CreatePlanPrice creates a product and price pair and returns the
	// provider's price ID.
	CreatePlanPrice(ctx context.Context, spec PriceSpec) (string, error)

	// DeactivatePrice archives a price so it can no longer be purchased.
	DeactivatePrice(ctx context.Context, priceID string) error
}

// Gateway defines the full billing provider surface the application
// depends on.
type Gateway interface {
	PriceMinter

	// CreateCustomer provisions a provider customer for an organization
	// and returns its ID.
	CreateCustomer(ctx context.Context, email, organizationID string) (string, error)

	// CreateCheckoutSession creates a hosted checkout session for a
	// subscription purchase. The session's metadata carries the
	// organization and plan IDs so the asynchronous completion event can
	// be correlated back.
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// GetSubscription fetches the provider's live view of a subscription.
	GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)

	// VerifyWebhook checks the event signature and returns the parsed,
	// normalized event. Verification failure returns
	// ErrSignatureVerification and nothing else may be trusted.
	VerifyWebhook(payload []byte, signatureHeader string) (*Event, error)
}

// PriceSpec describes the product and price to mint.
type PriceSpec struct {
	ProductName string
	Description string
	UnitAmount  int64  // smallest currency unit
	Interval    string // "month", "year", or "" for a one-off price
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	CustomerID     string
	PriceID        string
	OrganizationID string
	PlanID         string
	SuccessURL     string
	CancelURL      string
}

// CheckoutSession represents a hosted checkout session.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ProviderSubscription is the provider's live view of a subscription.
type ProviderSubscription struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	PriceID   string    `json:"priceId"`
	PeriodEnd time.Time `json:"periodEnd"`
}

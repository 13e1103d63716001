package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/price"
	"github.com/stripe/stripe-go/v82/product"
	stripesub "github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Metadata keys attached to customers and checkout sessions so
// asynchronous events can be correlated back to local records.
const (
	metadataOrganizationID = "organization_id"
	metadataPlanID         = "plan_id"
)

// StripeConfig holds the Stripe gateway configuration.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
	Currency      string `env:"STRIPE_CURRENCY" envDefault:"usd"`
}

// StripeGateway implements Gateway on top of the Stripe API.
type StripeGateway struct {
	webhookSecret string
	currency      string
}

// NewStripeGateway creates a Stripe-backed Gateway and wires the API
// key into the Stripe SDK.
func NewStripeGateway(cfg StripeConfig) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	stripe.Key = cfg.SecretKey

	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}

	return &StripeGateway{
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
	}, nil
}

// CreateCustomer provisions a Stripe customer tagged with the
// organization ID.
func (g *StripeGateway) CreateCustomer(_ context.Context, email, organizationID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			metadataOrganizationID: organizationID,
		},
	}

	c, err := customer.New(params)
	if err != nil {
		return "", errors.Join(ErrUpstream, fmt.Errorf("create customer: %w", err))
	}
	return c.ID, nil
}

// CreateCheckoutSession creates a subscription-mode checkout session.
// The correlation metadata rides on the session so the completion event
// can resolve the organization and plan.
func (g *StripeGateway) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(req.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata: map[string]string{
			metadataOrganizationID: req.OrganizationID,
			metadataPlanID:         req.PlanID,
		},
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("create checkout session: %w", err))
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// CreatePlanPrice creates a product and price pair. Prices are
// immutable at Stripe, so plan changes always mint a fresh one.
func (g *StripeGateway) CreatePlanPrice(_ context.Context, spec PriceSpec) (string, error) {
	prod, err := product.New(&stripe.ProductParams{
		Name:        stripe.String(spec.ProductName),
		Description: stripe.String(spec.Description),
	})
	if err != nil {
		return "", errors.Join(ErrUpstream, fmt.Errorf("create product: %w", err))
	}

	params := &stripe.PriceParams{
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(spec.UnitAmount),
		Currency:   stripe.String(g.currency),
	}
	if spec.Interval != "" {
		params.Recurring = &stripe.PriceRecurringParams{
			Interval: stripe.String(spec.Interval),
		}
	}

	p, err := price.New(params)
	if err != nil {
		return "", errors.Join(ErrUpstream, fmt.Errorf("create price: %w", err))
	}
	return p.ID, nil
}

// DeactivatePrice archives a Stripe price.
func (g *StripeGateway) DeactivatePrice(_ context.Context, priceID string) error {
	if _, err := price.Update(priceID, &stripe.PriceParams{Active: stripe.Bool(false)}); err != nil {
		return errors.Join(ErrUpstream, fmt.Errorf("deactivate price %s: %w", priceID, err))
	}
	return nil
}

// GetSubscription fetches Stripe's live view of a subscription.
func (g *StripeGateway) GetSubscription(_ context.Context, subscriptionID string) (*ProviderSubscription, error) {
	sub, err := stripesub.Get(subscriptionID, nil)
	if err != nil {
		return nil, errors.Join(ErrUpstream, fmt.Errorf("get subscription %s: %w", subscriptionID, err))
	}
	return newProviderSubscription(sub), nil
}

// VerifyWebhook authenticates the payload against the endpoint secret
// and maps the Stripe event to a normalized Event.
func (g *StripeGateway) VerifyWebhook(payload []byte, signatureHeader string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signatureHeader,
		g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, errors.Join(ErrSignatureVerification, err)
	}

	out := &Event{
		ID:            event.ID,
		ProviderEvent: string(event.Type),
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("billing: parse checkout session event: %w", err)
		}
		out.Type = EventCheckoutCompleted
		out.OrganizationID = sess.Metadata[metadataOrganizationID]
		out.PlanID = sess.Metadata[metadataPlanID]
		if sess.Subscription != nil {
			out.SubscriptionID = sess.Subscription.ID
		}

	case "customer.subscription.updated":
		sub, err := parseSubscription(event.Data.Raw)
		if err != nil {
			return nil, err
		}
		out.Type = EventSubscriptionUpdated
		fillSubscriptionFields(out, sub)

	case "customer.subscription.deleted":
		sub, err := parseSubscription(event.Data.Raw)
		if err != nil {
			return nil, err
		}
		out.Type = EventSubscriptionDeleted
		fillSubscriptionFields(out, sub)

	default:
		out.Type = EventIgnored
	}

	return out, nil
}

func parseSubscription(raw json.RawMessage) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, fmt.Errorf("billing: parse subscription event: %w", err)
	}
	return &sub, nil
}

func fillSubscriptionFields(out *Event, sub *stripe.Subscription) {
	out.SubscriptionID = sub.ID
	out.Status = string(sub.Status)
	if item := firstItem(sub); item != nil {
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
		if item.CurrentPeriodEnd > 0 {
			out.PeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		}
	}
}

func newProviderSubscription(sub *stripe.Subscription) *ProviderSubscription {
	out := &ProviderSubscription{
		ID:     sub.ID,
		Status: string(sub.Status),
	}
	if item := firstItem(sub); item != nil {
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
		if item.CurrentPeriodEnd > 0 {
			out.PeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		}
	}
	return out
}

func firstItem(sub *stripe.Subscription) *stripe.SubscriptionItem {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	return sub.Items.Data[0]
}

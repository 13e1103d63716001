// Package subscription implements the subscription lifecycle: trial
// registration, checkout initiation, and the webhook reconciler that
// folds billing provider events into the organization record. The local
// store is the state of record; provider events overwrite it at defined
// transitions.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/subman/billing"
	"github.com/dmitrymomot/subman/organization"
	"github.com/dmitrymomot/subman/pkg/logger"
	"github.com/dmitrymomot/subman/plan"
	"github.com/dmitrymomot/subman/user"
	"github.com/dmitrymomot/subman/validate"
)

const (
	trialWindow = 14 * 24 * time.Hour
	paidWindow  = 365 * 24 * time.Hour
)

// Reconciler owns subscription state transitions. All webhook handlers
// are idempotent full overwrites keyed by the event's correlation data,
// guarded by the event ledger for redelivery.
type Reconciler struct {
	orgs    organization.Store
	users   user.Store
	plans   plan.Store
	gateway billing.Gateway
	ledger  EventLedger
	logger  *slog.Logger
}

// NewReconciler creates the subscription reconciler.
func NewReconciler(
	orgs organization.Store,
	users user.Store,
	plans plan.Store,
	gateway billing.Gateway,
	ledger EventLedger,
	log *slog.Logger,
) *Reconciler {
	if orgs == nil || users == nil || plans == nil || gateway == nil || ledger == nil {
		panic("subscription: all dependencies are required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{
		orgs:    orgs,
		users:   users,
		plans:   plans,
		gateway: gateway,
		ledger:  ledger,
		logger:  log.With(logger.Component("subscription")),
	}
}

// RegisterInput carries the self-service signup fields.
type RegisterInput struct {
	OrganizationName string `json:"organizationName"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
}

// RegisterResult is the created organization and its admin user.
type RegisterResult struct {
	Organization *organization.Organization `json:"organization"`
	User         *user.User                 `json:"user"`
}

// Register performs self-service signup: a new organization on the
// Basic plan in a 14-day trial, with the registrant as its admin.
// Registration is refused outright when no Basic plan is configured.
func (r *Reconciler) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := validate.Apply(
		validate.Required("organizationName", in.OrganizationName),
		validate.Email("email", in.Email),
		validate.MinLen("password", in.Password, 8),
		validate.Required("firstName", in.FirstName),
		validate.Required("lastName", in.LastName),
	); err != nil {
		return nil, err
	}

	basic, err := r.plans.GetByName(ctx, plan.NameBasic)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			return nil, plan.ErrBasicNotSeeded
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	org := &organization.Organization{
		ID:                    uuid.NewString(),
		Name:                  in.OrganizationName,
		Email:                 in.Email,
		PlanID:                basic.ID,
		ActivePlan:            organization.NewPlanSnapshot(basic),
		SubscriptionStatus:    organization.StatusTrialing,
		SubscriptionStartDate: now,
		SubscriptionEndDate:   now.Add(trialWindow),
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := r.orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	admin := &user.User{
		ID:             uuid.NewString(),
		Email:          in.Email,
		PasswordHash:   hash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           user.RoleAdmin,
		OrganizationID: org.ID,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.users.Create(ctx, admin); err != nil {
		// Roll the organization back so a failed signup leaves nothing.
		if derr := r.orgs.Delete(ctx, org.ID); derr != nil {
			r.logger.ErrorContext(ctx, "failed to roll back organization after signup failure",
				logger.OrganizationID(org.ID), logger.Error(derr))
		}
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	r.logger.InfoContext(ctx, "organization registered",
		logger.OrganizationID(org.ID),
		logger.UserID(admin.ID),
	)

	return &RegisterResult{Organization: org, User: admin}, nil
}

// Subscribe starts a hosted checkout for the organization to purchase
// the given plan. The provider customer is created lazily on first
// checkout and reused afterwards.
func (r *Reconciler) Subscribe(ctx context.Context, organizationID, planID, successURL, cancelURL string) (*billing.CheckoutSession, error) {
	org, err := r.orgs.GetByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	p, err := r.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p.StripePriceID == "" {
		return nil, plan.ErrMissingPriceRef
	}

	if org.StripeCustomerID == "" {
		customerID, err := r.gateway.CreateCustomer(ctx, org.Email, org.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create billing customer: %w", err)
		}
		org.StripeCustomerID = customerID
		org.UpdatedAt = time.Now().UTC()
		if err := r.orgs.Update(ctx, org); err != nil {
			return nil, fmt.Errorf("failed to persist billing customer reference: %w", err)
		}
	}

	session, err := r.gateway.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		CustomerID:     org.StripeCustomerID,
		PriceID:        p.StripePriceID,
		OrganizationID: org.ID,
		PlanID:         p.ID,
		SuccessURL:     successURL,
		CancelURL:      cancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	r.logger.InfoContext(ctx, "checkout session created",
		logger.OrganizationID(org.ID),
		slog.String("plan", string(p.Name)),
		slog.String("session_id", session.ID),
	)

	return session, nil
}

// HandleEvent applies a verified billing event. Redeliveries of an
// already-processed event are acknowledged without effect; unresolved
// checkout references return ErrReferenceNotFound so the provider
// retries the delivery.
func (r *Reconciler) HandleEvent(ctx context.Context, ev *billing.Event) error {
	if ev.Type == billing.EventIgnored {
		r.logger.DebugContext(ctx, "ignoring billing event",
			logger.EventID(ev.ID), slog.String("provider_event", ev.ProviderEvent))
		return nil
	}

	if err := r.ledger.MarkProcessed(ctx, ev.ID); err != nil {
		if errors.Is(err, ErrEventAlreadyProcessed) {
			r.logger.InfoContext(ctx, "duplicate billing event acknowledged", logger.EventID(ev.ID))
			return nil
		}
		return fmt.Errorf("failed to record billing event: %w", err)
	}

	var err error
	switch ev.Type {
	case billing.EventCheckoutCompleted:
		err = r.handleCheckoutCompleted(ctx, ev)
	case billing.EventSubscriptionUpdated:
		err = r.handleSubscriptionUpdated(ctx, ev)
	case billing.EventSubscriptionDeleted:
		err = r.handleSubscriptionDeleted(ctx, ev)
	default:
		r.logger.WarnContext(ctx, "unhandled billing event type",
			logger.EventID(ev.ID), slog.String("type", string(ev.Type)))
		return nil
	}
	if err != nil {
		// Release the ledger entry so the provider's retry is not
		// swallowed by deduplication.
		if ferr := r.ledger.Forget(ctx, ev.ID); ferr != nil {
			r.logger.ErrorContext(ctx, "failed to release event ledger entry",
				logger.EventID(ev.ID), logger.Error(ferr))
		}
		return err
	}
	return nil
}

// handleCheckoutCompleted activates the subscription the completed
// checkout purchased: a full overwrite of plan reference, snapshot,
// status, window, and provider subscription reference.
func (r *Reconciler) handleCheckoutCompleted(ctx context.Context, ev *billing.Event) error {
	org, err := r.orgs.GetByID(ctx, ev.OrganizationID)
	if err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			return fmt.Errorf("%w: organization %q", ErrReferenceNotFound, ev.OrganizationID)
		}
		return err
	}
	p, err := r.plans.GetByID(ctx, ev.PlanID)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			return fmt.Errorf("%w: plan %q", ErrReferenceNotFound, ev.PlanID)
		}
		return err
	}

	now := time.Now().UTC()
	org.PlanID = p.ID
	org.ActivePlan = organization.NewPlanSnapshot(p)
	org.SubscriptionStatus = organization.StatusActive
	org.SubscriptionStartDate = now
	org.SubscriptionEndDate = now.Add(paidWindow)
	org.StripeSubscriptionID = ev.SubscriptionID
	org.UpdatedAt = now

	if err := r.orgs.Update(ctx, org); err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	r.logger.InfoContext(ctx, "subscription activated",
		logger.EventID(ev.ID),
		logger.OrganizationID(org.ID),
		slog.String("plan", string(p.Name)),
	)
	return nil
}

// handleSubscriptionUpdated folds the provider's subscription state into
// the organization record. An unknown subscription ID or an event price
// that maps to no local plan is acknowledged as a no-op: the provider
// may deliver updates for subscriptions or prices this deployment never
// created, and a partial write against an unresolved plan would leave a
// stale snapshot behind.
func (r *Reconciler) handleSubscriptionUpdated(ctx context.Context, ev *billing.Event) error {
	org, err := r.orgs.GetByStripeSubscriptionID(ctx, ev.SubscriptionID)
	if err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			r.logger.WarnContext(ctx, "subscription update for unknown subscription",
				logger.EventID(ev.ID), slog.String("subscription_id", ev.SubscriptionID))
			return nil
		}
		return err
	}

	var p *plan.Plan
	if ev.PriceID != "" {
		p, err = r.plans.GetByStripePriceID(ctx, ev.PriceID)
		if err != nil && !errors.Is(err, plan.ErrNotFound) {
			return err
		}
	}
	if p == nil {
		r.logger.WarnContext(ctx, "subscription update for unknown plan price",
			logger.EventID(ev.ID),
			logger.OrganizationID(org.ID),
			slog.String("price_id", ev.PriceID))
		return nil
	}

	org.PlanID = p.ID
	org.ActivePlan = organization.NewPlanSnapshot(p)
	org.SubscriptionStatus = organization.NormalizeProviderStatus(ev.Status)
	if !ev.PeriodEnd.IsZero() {
		org.SubscriptionEndDate = ev.PeriodEnd.UTC()
	}
	org.UpdatedAt = time.Now().UTC()
	if err := r.orgs.Update(ctx, org); err != nil {
		return fmt.Errorf("failed to apply subscription update: %w", err)
	}

	r.logger.InfoContext(ctx, "subscription updated",
		logger.EventID(ev.ID),
		logger.OrganizationID(org.ID),
		slog.String("status", string(org.SubscriptionStatus)),
	)
	return nil
}

// handleSubscriptionDeleted reverts the organization to the Basic plan
// in expired status. Without a configured Basic plan the deletion is
// acknowledged without local effect.
func (r *Reconciler) handleSubscriptionDeleted(ctx context.Context, ev *billing.Event) error {
	org, err := r.orgs.GetByStripeSubscriptionID(ctx, ev.SubscriptionID)
	if err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			r.logger.WarnContext(ctx, "subscription deletion for unknown subscription",
				logger.EventID(ev.ID), slog.String("subscription_id", ev.SubscriptionID))
			return nil
		}
		return err
	}

	basic, err := r.plans.GetByName(ctx, plan.NameBasic)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			r.logger.WarnContext(ctx, "subscription deleted but no basic plan to revert to",
				logger.EventID(ev.ID), logger.OrganizationID(org.ID))
			return nil
		}
		return err
	}

	org.PlanID = basic.ID
	org.ActivePlan = organization.NewPlanSnapshot(basic)
	org.SubscriptionStatus = organization.StatusExpired
	org.StripeSubscriptionID = ""
	org.UpdatedAt = time.Now().UTC()

	if err := r.orgs.Update(ctx, org); err != nil {
		return fmt.Errorf("failed to revert organization after subscription deletion: %w", err)
	}

	r.logger.InfoContext(ctx, "subscription deleted, organization reverted to basic",
		logger.EventID(ev.ID),
		logger.OrganizationID(org.ID),
	)
	return nil
}

// Details is the organization's subscription view: the local record,
// the live catalog plan, and the provider's live subscription when one
// exists and is reachable.
type Details struct {
	Organization *organization.Organization    `json:"organization"`
	Plan         *plan.Plan                    `json:"plan,omitempty"`
	Provider     *billing.ProviderSubscription `json:"providerSubscription,omitempty"`
}

// GetDetails assembles the subscription view. The provider lookup is
// best effort; an unreachable provider degrades the response rather
// than failing it.
func (r *Reconciler) GetDetails(ctx context.Context, organizationID string) (*Details, error) {
	org, err := r.orgs.GetByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	d := &Details{Organization: org}

	if p, perr := r.plans.GetByID(ctx, org.PlanID); perr == nil {
		d.Plan = p
	} else if !errors.Is(perr, plan.ErrNotFound) {
		return nil, perr
	}

	if org.StripeSubscriptionID != "" {
		sub, serr := r.gateway.GetSubscription(ctx, org.StripeSubscriptionID)
		if serr != nil {
			r.logger.WarnContext(ctx, "failed to fetch provider subscription",
				logger.OrganizationID(org.ID), logger.Error(serr))
		} else {
			d.Provider = sub
		}
	}

	return d, nil
}

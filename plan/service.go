package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subman/billing"
	"github.com/dmitrymomot/subman/pkg/logger"
	"github.com/dmitrymomot/subman/validate"
)

// Service manages the plan catalog. Catalog mutations are a superadmin
// surface; the role check happens at the HTTP boundary.
type Service struct {
	store  Store
	prices billing.PriceMinter
	logger *slog.Logger
}

// NewService creates a plan catalog service.
func NewService(store Store, prices billing.PriceMinter, log *slog.Logger) *Service {
	if store == nil {
		panic("plan: store is required")
	}
	if prices == nil {
		panic("plan: price minter is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, prices: prices, logger: log.With(logger.Component("plan"))}
}

// CreateInput carries the fields for a new plan.
type CreateInput struct {
	Name         Name         `json:"name"`
	Price        int64        `json:"price"`
	BillingCycle BillingCycle `json:"billingCycle"`
	TrialDays    int          `json:"trialDays"`
	Features     []string     `json:"features"`
	MaxUsers     int64        `json:"maxUsers"`
	StorageGB    int64        `json:"storage"`
}

func (in CreateInput) validate() error {
	return validate.Apply(
		validate.OneOf("name", in.Name, Names()...),
		validate.Min("price", in.Price, 0),
		validate.OneOf("billingCycle", in.BillingCycle, Cycles()...),
		validate.Min("trialDays", int64(in.TrialDays), 0),
		validate.NonEmptySlice("features", in.Features),
		validate.Min("maxUsers", in.MaxUsers, 1),
		validate.Min("storage", in.StorageGB, 1),
	)
}

// Create validates the input, mints the provider price first, and only
// then persists the plan. A provider failure leaves no local record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &Plan{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Price:        in.Price,
		BillingCycle: in.BillingCycle,
		TrialDays:    in.TrialDays,
		Features:     in.Features,
		MaxUsers:     in.MaxUsers,
		StorageGB:    in.StorageGB,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	priceID, err := s.prices.CreatePlanPrice(ctx, priceSpec(p))
	if err != nil {
		return nil, errors.Join(ErrPriceMintFailed, err)
	}
	p.StripePriceID = priceID

	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.logger.InfoContext(ctx, "plan created",
		slog.String("plan_id", p.ID),
		slog.String("name", string(p.Name)),
		slog.String("stripe_price_id", p.StripePriceID),
	)

	return p, nil
}

// UpdateInput patches a plan. Nil fields are left unchanged.
type UpdateInput struct {
	Name         *Name         `json:"name,omitempty"`
	Price        *int64        `json:"price,omitempty"`
	BillingCycle *BillingCycle `json:"billingCycle,omitempty"`
	TrialDays    *int          `json:"trialDays,omitempty"`
	Features     []string      `json:"features,omitempty"`
	MaxUsers     *int64        `json:"maxUsers,omitempty"`
	StorageGB    *int64        `json:"storage,omitempty"`
}

// priceAffecting reports whether the patch changes billing terms.
// Prices are immutable at the provider, so these changes rotate the
// price reference.
func (in UpdateInput) priceAffecting(current *Plan) bool {
	if in.Price != nil && *in.Price != current.Price {
		return true
	}
	if in.BillingCycle != nil && *in.BillingCycle != current.BillingCycle {
		return true
	}
	return false
}

// Update applies the patch. When billing terms change, a new provider
// price is minted and the previous one deactivated before the local
// record is written; provider failures leave the plan untouched.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Plan, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rotate := in.priceAffecting(p)

	if in.Name != nil {
		if err := validate.Apply(validate.OneOf("name", *in.Name, Names()...)); err != nil {
			return nil, err
		}
		p.Name = *in.Name
	}
	if in.Price != nil {
		if err := validate.Apply(validate.Min("price", *in.Price, 0)); err != nil {
			return nil, err
		}
		p.Price = *in.Price
	}
	if in.BillingCycle != nil {
		if err := validate.Apply(validate.OneOf("billingCycle", *in.BillingCycle, Cycles()...)); err != nil {
			return nil, err
		}
		p.BillingCycle = *in.BillingCycle
	}
	if in.TrialDays != nil {
		p.TrialDays = *in.TrialDays
	}
	if in.Features != nil {
		if err := validate.Apply(validate.NonEmptySlice("features", in.Features)); err != nil {
			return nil, err
		}
		p.Features = in.Features
	}
	if in.MaxUsers != nil {
		if err := validate.Apply(validate.Min("maxUsers", *in.MaxUsers, 1)); err != nil {
			return nil, err
		}
		p.MaxUsers = *in.MaxUsers
	}
	if in.StorageGB != nil {
		if err := validate.Apply(validate.Min("storage", *in.StorageGB, 1)); err != nil {
			return nil, err
		}
		p.StorageGB = *in.StorageGB
	}

	if rotate {
		oldPriceID := p.StripePriceID

		newPriceID, err := s.prices.CreatePlanPrice(ctx, priceSpec(p))
		if err != nil {
			return nil, errors.Join(ErrPriceMintFailed, err)
		}

		if oldPriceID != "" {
			if err := s.prices.DeactivatePrice(ctx, oldPriceID); err != nil {
				return nil, errors.Join(ErrPriceRotateStale, err)
			}
		}

		p.StripePriceID = newPriceID
		s.logger.InfoContext(ctx, "plan price rotated",
			slog.String("plan_id", p.ID),
			slog.String("old_price_id", oldPriceID),
			slog.String("new_price_id", newPriceID),
		)
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	return p, nil
}

// Deactivate soft-deletes a plan. Plans are never hard-deleted because
// organizations may still hold snapshots of them.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	p.IsActive = false
	p.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to deactivate plan: %w", err)
	}

	return nil
}

// Get returns a plan by ID.
func (s *Service) Get(ctx context.Context, id string) (*Plan, error) {
	return s.store.GetByID(ctx, id)
}

// List returns all plans, including deactivated ones.
func (s *Service) List(ctx context.Context) ([]Plan, error) {
	return s.store.List(ctx, false)
}

// ListPublic returns active plans only, for the unauthenticated catalog.
func (s *Service) ListPublic(ctx context.Context) ([]Plan, error) {
	return s.store.List(ctx, true)
}

// priceSpec maps a plan to the provider price to mint. Trial cycles
// produce a one-off price; monthly and yearly bill on an interval.
func priceSpec(p *Plan) billing.PriceSpec {
	interval := ""
	switch p.BillingCycle {
	case CycleMonthly:
		interval = "month"
	case CycleYearly:
		interval = "year"
	}

	return billing.PriceSpec{
		ProductName: fmt.Sprintf("%s Plan", p.Name),
		Description: fmt.Sprintf("%s Plan with %d users and %dGB storage", p.Name, p.MaxUsers, p.StorageGB),
		UnitAmount:  p.Price,
		Interval:    interval,
	}
}

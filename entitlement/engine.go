// Package entitlement implements the seat entitlement engine: it
// decides whether an organization may add another user under its plan's
// seat ceiling and keeps the advisory counter in step with membership.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/subman/organization"
	"github.com/dmitrymomot/subman/pkg/logger"
	"github.com/dmitrymomot/subman/plan"
	"github.com/dmitrymomot/subman/user"
)

// Engine computes seat usage and enforces the ceiling before any
// seat-consuming operation.
type Engine struct {
	orgs   organization.Store
	users  user.Store
	plans  plan.Store
	logger *slog.Logger
}

// NewEngine creates a seat entitlement engine.
func NewEngine(orgs organization.Store, users user.Store, plans plan.Store, log *slog.Logger) *Engine {
	if orgs == nil || users == nil || plans == nil {
		panic("entitlement: all stores are required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{orgs: orgs, users: users, plans: plans, logger: log.With(logger.Component("entitlement"))}
}

// CountActiveSeats returns the live count of seat-consuming users:
// active members with role "user". The organization's admin and any
// superadmin never occupy a seat.
func (e *Engine) CountActiveSeats(ctx context.Context, organizationID string) (int64, error) {
	count, err := e.users.CountActiveByRole(ctx, organizationID, user.RoleUser)
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

// SeatLimit resolves the ceiling governing the organization: the
// entitlement snapshot if present, otherwise the live plan as a
// fallback for records predating snapshots.
func (e *Engine) SeatLimit(ctx context.Context, org *organization.Organization) (int64, plan.Name, error) {
	if org.ActivePlan != nil {
		return org.ActivePlan.MaxUsers, org.ActivePlan.Name, nil
	}

	live, err := e.plans.GetByID(ctx, org.PlanID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to resolve plan for seat limit: %w", err)
	}
	return live.MaxUsers, live.Name, nil
}

// CheckCapacity reports whether one more seat-consuming user fits. It
// gates on subscription status first, then compares the live count to
// the ceiling. This is a read-only answer; admission itself goes
// through AcquireSeat.
func (e *Engine) CheckCapacity(ctx context.Context, org *organization.Organization) error {
	if !org.CanAddUsers() {
		return ErrSubscriptionNotActive
	}

	max, name, err := e.SeatLimit(ctx, org)
	if err != nil {
		return err
	}

	current, err := e.CountActiveSeats(ctx, org.ID)
	if err != nil {
		return err
	}

	if current >= max {
		return &SeatLimitError{Current: current, Max: max, PlanName: name}
	}
	return nil
}

// AcquireSeat admits one seat-consuming user via the store's atomic
// conditional increment, so concurrent admissions near the ceiling
// cannot overshoot it. Callers that fail to create the user afterwards
// must call ReleaseSeat.
func (e *Engine) AcquireSeat(ctx context.Context, org *organization.Organization) error {
	if !org.CanAddUsers() {
		return ErrSubscriptionNotActive
	}

	max, name, err := e.SeatLimit(ctx, org)
	if err != nil {
		return err
	}

	if err := e.orgs.AcquireSeat(ctx, org.ID, max); err != nil {
		if errors.Is(err, organization.ErrSeatLimitReached) {
			current, countErr := e.CountActiveSeats(ctx, org.ID)
			if countErr != nil {
				current = max
			}
			return &SeatLimitError{Current: current, Max: max, PlanName: name}
		}
		return fmt.Errorf("failed to acquire seat: %w", err)
	}

	return nil
}

// ReleaseSeat returns a previously acquired seat. Failures are logged
// and swallowed: the counter is advisory, and live counts stay correct.
func (e *Engine) ReleaseSeat(ctx context.Context, organizationID string) {
	if err := e.orgs.ReleaseSeat(ctx, organizationID); err != nil {
		e.logger.ErrorContext(ctx, "failed to release seat",
			logger.OrganizationID(organizationID),
			logger.Error(err),
		)
	}
}

package organization

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subman/pkg/logger"
	"github.com/dmitrymomot/subman/plan"
	"github.com/dmitrymomot/subman/user"
	"github.com/dmitrymomot/subman/validate"
)

// activeWindow is the subscription window granted to organizations
// created or upgraded outside the trial flow.
const activeWindow = 365 * 24 * time.Hour

// Service implements the superadmin administration surface: direct
// organization creation, patching, deactivation cascades, and permanent
// removal. Self-service registration lives in the subscription
// reconciler, not here.
type Service struct {
	orgs   Store
	users  user.Store
	plans  plan.Store
	logger *slog.Logger
}

// NewService creates the organization administration service.
func NewService(orgs Store, users user.Store, plans plan.Store, log *slog.Logger) *Service {
	if orgs == nil || users == nil || plans == nil {
		panic("organization: all stores are required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{orgs: orgs, users: users, plans: plans, logger: log.With(logger.Component("organization"))}
}

// WithStats is an organization with its live active-user count
// attached. The stored advisory counter is not used for display.
type WithStats struct {
	Organization
	LiveActiveUsers int64 `json:"liveActiveUsers"`
}

// CreateInput carries the fields for a superadmin-created organization.
type CreateInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	PlanID string `json:"planId"`
}

// Create provisions an organization directly in active status with a
// full-year window. No billing provider objects are created; those
// appear lazily when the organization first checks out.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Organization, error) {
	if err := validate.Apply(
		validate.Required("name", in.Name),
		validate.Email("email", in.Email),
		validate.Required("planId", in.PlanID),
	); err != nil {
		return nil, err
	}

	p, err := s.plans.GetByID(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	org := &Organization{
		ID:                    uuid.NewString(),
		Name:                  in.Name,
		Email:                 in.Email,
		PlanID:                p.ID,
		ActivePlan:            NewPlanSnapshot(p),
		SubscriptionStatus:    StatusActive,
		SubscriptionStartDate: now,
		SubscriptionEndDate:   now.Add(activeWindow),
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.logger.InfoContext(ctx, "organization created by superadmin",
		logger.OrganizationID(org.ID),
		slog.String("plan", string(p.Name)),
	)

	return org, nil
}

// Get returns an organization with its live active-user count.
func (s *Service) Get(ctx context.Context, id string) (*WithStats, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withStats(ctx, org)
}

// List returns all organizations with live active-user counts.
func (s *Service) List(ctx context.Context) ([]WithStats, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	out := make([]WithStats, 0, len(orgs))
	for i := range orgs {
		ws, err := s.withStats(ctx, &orgs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *ws)
	}
	return out, nil
}

// UpdateInput patches an organization. Nil fields are left unchanged.
type UpdateInput struct {
	Name                *string    `json:"name,omitempty"`
	Email               *string    `json:"email,omitempty"`
	PlanID              *string    `json:"planId,omitempty"`
	SubscriptionStatus  *Status    `json:"subscriptionStatus,omitempty"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate,omitempty"`
}

// Update applies the patch. A plan change is re-validated against the
// catalog and refreshes the entitlement snapshot.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := validate.Apply(validate.Required("name", *in.Name)); err != nil {
			return nil, err
		}
		org.Name = *in.Name
	}
	if in.Email != nil {
		if err := validate.Apply(validate.Email("email", *in.Email)); err != nil {
			return nil, err
		}
		org.Email = *in.Email
	}
	if in.PlanID != nil && *in.PlanID != org.PlanID {
		p, err := s.plans.GetByID(ctx, *in.PlanID)
		if err != nil {
			return nil, err
		}
		org.PlanID = p.ID
		org.ActivePlan = NewPlanSnapshot(p)
	}
	if in.SubscriptionStatus != nil {
		if err := validate.Apply(validate.OneOf("subscriptionStatus", *in.SubscriptionStatus, Statuses()...)); err != nil {
			return nil, err
		}
		org.SubscriptionStatus = *in.SubscriptionStatus
	}
	if in.SubscriptionEndDate != nil {
		org.SubscriptionEndDate = in.SubscriptionEndDate.UTC()
	}

	org.UpdatedAt = time.Now().UTC()
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}

// Deactivate turns the organization off and cascades the flag to every
// member user. The subscription status is untouched; this is the
// organization-level kill switch.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	org.IsActive = false
	org.UpdatedAt = time.Now().UTC()
	if err := s.orgs.Update(ctx, org); err != nil {
		return fmt.Errorf("failed to deactivate organization: %w", err)
	}

	if err := s.users.SetActiveByOrganization(ctx, org.ID, false); err != nil {
		return fmt.Errorf("failed to deactivate organization users: %w", err)
	}

	s.logger.InfoContext(ctx, "organization deactivated", logger.OrganizationID(org.ID))
	return nil
}

// ToggleStatus flips the organization's active flag and cascades the
// new value to every member user. Reactivation therefore also
// reactivates users who were individually deactivated beforehand; the
// cascade carries the organization flag, not per-user history.
func (s *Service) ToggleStatus(ctx context.Context, id string) (bool, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	org.IsActive = !org.IsActive
	org.UpdatedAt = time.Now().UTC()
	if err := s.orgs.Update(ctx, org); err != nil {
		return false, fmt.Errorf("failed to toggle organization status: %w", err)
	}

	if err := s.users.SetActiveByOrganization(ctx, org.ID, org.IsActive); err != nil {
		return false, fmt.Errorf("failed to cascade organization status to users: %w", err)
	}

	return org.IsActive, nil
}

// PermanentDelete removes the organization and hard-deletes every
// member user, leaving no dangling references.
func (s *Service) PermanentDelete(ctx context.Context, id string) error {
	if _, err := s.orgs.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.users.DeleteByOrganization(ctx, id); err != nil {
		return fmt.Errorf("failed to delete organization users: %w", err)
	}
	if err := s.orgs.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	s.logger.InfoContext(ctx, "organization permanently deleted", logger.OrganizationID(id))
	return nil
}

// ListUsers returns every user of the organization, active or not.
func (s *Service) ListUsers(ctx context.Context, id string) ([]user.User, error) {
	if _, err := s.orgs.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.users.ListByOrganization(ctx, id, false)
}

func (s *Service) withStats(ctx context.Context, org *Organization) (*WithStats, error) {
	count, err := s.users.CountActiveByRole(ctx, org.ID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to count organization users: %w", err)
	}
	return &WithStats{Organization: *org, LiveActiveUsers: count}, nil
}

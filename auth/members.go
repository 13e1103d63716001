package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/subman/entitlement"
	"github.com/dmitrymomot/subman/pkg/logger"
	"github.com/dmitrymomot/subman/plan"
	"github.com/dmitrymomot/subman/user"
	"github.com/dmitrymomot/subman/validate"
)

// SeatUsage reports the organization's seat consumption after a
// membership change.
type SeatUsage struct {
	CurrentUsers int64     `json:"currentUsers"`
	MaxUsers     int64     `json:"maxUsers"`
	PlanName     plan.Name `json:"planName"`
}

// RegisterUserInput carries the fields an admin submits to add a
// member. The role is not among them; members are always plain users.
type RegisterUserInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegisterUser adds a seat-consuming member to the actor's
// organization. The seat is acquired atomically before the user record
// is written and released again if the write fails, so the ceiling
// holds under concurrent admissions.
func (s *Service) RegisterUser(ctx context.Context, actor *user.User, in RegisterUserInput) (*user.User, *SeatUsage, error) {
	if err := validate.Apply(
		validate.Email("email", in.Email),
		validate.MinLen("password", in.Password, 8),
		validate.Required("firstName", in.FirstName),
		validate.Required("lastName", in.LastName),
	); err != nil {
		return nil, nil, err
	}

	org, err := s.orgs.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.seats.AcquireSeat(ctx, org); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.seats.ReleaseSeat(ctx, org.ID)
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	member := &user.User{
		ID:             uuid.NewString(),
		Email:          in.Email,
		PasswordHash:   hash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           user.RoleUser,
		OrganizationID: org.ID,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, member); err != nil {
		s.seats.ReleaseSeat(ctx, org.ID)
		return nil, nil, err
	}

	max, name, err := s.seats.SeatLimit(ctx, org)
	if err != nil {
		return member, nil, nil
	}
	current, err := s.seats.CountActiveSeats(ctx, org.ID)
	if err != nil {
		return member, nil, nil
	}

	s.logger.InfoContext(ctx, "member registered",
		logger.UserID(member.ID),
		logger.OrganizationID(org.ID),
	)

	return member, &SeatUsage{CurrentUsers: current, MaxUsers: max, PlanName: name}, nil
}

// ListMembers returns the active users of the actor's organization.
func (s *Service) ListMembers(ctx context.Context, actor *user.User) ([]user.User, error) {
	return s.users.ListByOrganization(ctx, actor.OrganizationID, true)
}

// UpdateMemberInput patches a member record. Role and organization are
// immutable through this path.
type UpdateMemberInput struct {
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// UpdateMember patches a member of the actor's organization. Lookups
// are scoped to the actor's organization, so a foreign user ID reads as
// not found.
func (s *Service) UpdateMember(ctx context.Context, actor *user.User, memberID string, in UpdateMemberInput) (*user.User, error) {
	member, err := s.memberOf(ctx, actor, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.applyPatch(member, in.Email, in.Password, in.FirstName, in.LastName); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return member, nil
}

// DeactivateMember turns a member's account off and releases their
// seat. Actors cannot deactivate themselves.
func (s *Service) DeactivateMember(ctx context.Context, actor *user.User, memberID string) error {
	member, err := s.memberOf(ctx, actor, memberID)
	if err != nil {
		return err
	}
	if member.ID == actor.ID {
		return entitlement.ErrCannotModifySelf
	}

	wasSeated := member.IsActive && member.Role == user.RoleUser
	if err := s.users.SetActive(ctx, member.ID, false); err != nil {
		return fmt.Errorf("failed to deactivate member: %w", err)
	}
	if wasSeated {
		s.seats.ReleaseSeat(ctx, member.OrganizationID)
	}

	s.logger.InfoContext(ctx, "member deactivated",
		logger.UserID(member.ID),
		logger.OrganizationID(member.OrganizationID),
	)
	return nil
}

// DeleteMember permanently removes a member record. Actors cannot
// delete themselves.
func (s *Service) DeleteMember(ctx context.Context, actor *user.User, memberID string) error {
	member, err := s.memberOf(ctx, actor, memberID)
	if err != nil {
		return err
	}
	if member.ID == actor.ID {
		return entitlement.ErrCannotModifySelf
	}

	wasSeated := member.IsActive && member.Role == user.RoleUser
	if err := s.users.Delete(ctx, member.ID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if wasSeated {
		s.seats.ReleaseSeat(ctx, member.OrganizationID)
	}

	s.logger.InfoContext(ctx, "member deleted",
		logger.UserID(member.ID),
		logger.OrganizationID(member.OrganizationID),
	)
	return nil
}

// Profile returns the actor's own record.
func (s *Service) Profile(ctx context.Context, actorID string) (*user.User, error) {
	return s.users.GetByID(ctx, actorID)
}

// UpdateProfile patches the actor's own record. Role and organization
// are never touched.
func (s *Service) UpdateProfile(ctx context.Context, actorID string, in UpdateMemberInput) (*user.User, error) {
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.applyPatch(u, in.Email, in.Password, in.FirstName, in.LastName); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// memberOf loads a user constrained to the actor's organization.
func (s *Service) memberOf(ctx context.Context, actor *user.User, memberID string) (*user.User, error) {
	member, err := s.users.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.OrganizationID != actor.OrganizationID {
		return nil, user.ErrNotFound
	}
	return member, nil
}

func (s *Service) applyPatch(u *user.User, email, password, firstName, lastName *string) error {
	if email != nil {
		if err := validate.Apply(validate.Email("email", *email)); err != nil {
			return err
		}
		u.Email = *email
	}
	if password != nil {
		if err := validate.Apply(validate.MinLen("password", *password, 8)); err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if firstName != nil {
		u.FirstName = *firstName
	}
	if lastName != nil {
		u.LastName = *lastName
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

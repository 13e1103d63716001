package user

import "context"

// Store defines user persistence. Email uniqueness is global and
// enforced by the store; Create returns ErrEmailTaken on conflict.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ListByOrganization returns an organization's users, optionally
	// only the active ones.
	ListByOrganization(ctx context.Context, organizationID string, onlyActive bool) ([]User, error)

	// CountActiveByRole counts an organization's active users holding
	// the given role. An empty role counts active users of all roles.
	CountActiveByRole(ctx context.Context, organizationID string, role Role) (int64, error)

	Update(ctx context.Context, u *User) error
	SetActive(ctx context.Context, id string, active bool) error

	// SetActiveByOrganization flips the active flag for every user in
	// the organization (deactivation/reactivation cascade).
	SetActiveByOrganization(ctx context.Context, organizationID string, active bool) error

	Delete(ctx context.Context, id string) error

	// DeleteByOrganization hard-deletes every user in the organization
	// (permanent organization removal cascade).
	DeleteByOrganization(ctx context.Context, organizationID string) error
}

package organization

import "context"

// Store defines organization persistence. Implementations return
// ErrNotFound when a lookup matches nothing.
type Store interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id string) (*Organization, error)
	GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	Update(ctx context.Context, org *Organization) error
	Delete(ctx context.Context, id string) error

	// AcquireSeat atomically increments the advisory seat counter only
	// while it is below max, returning ErrSeatLimitReached otherwise.
	// This is the single admission point for seat-consuming user
	// creation; concurrent callers cannot exceed the ceiling.
	AcquireSeat(ctx context.Context, id string, max int64) error

	// ReleaseSeat atomically decrements the advisory seat counter,
	// never below zero.
	ReleaseSeat(ctx context.Context, id string) error
}

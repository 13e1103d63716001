package plan

import "context"

// Store defines plan catalog persistence. Implementations return
// ErrNotFound when a lookup matches nothing.
type Store interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id string) (*Plan, error)
	GetByName(ctx context.Context, name Name) (*Plan, error)
	GetByStripePriceID(ctx context.Context, priceID string) (*Plan, error)
	List(ctx context.Context, onlyActive bool) ([]Plan, error)
	Update(ctx context.Context, p *Plan) error
}

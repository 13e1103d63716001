package plan_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/subman/billing"
	"github.com/dmitrymomot/subman/plan"
)

// MockStore is a mock implementation of plan.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, p *plan.Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockStore) GetByID(ctx context.Context, id string) (*plan.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Plan), args.Error(1)
}

func (m *MockStore) GetByName(ctx context.Context, name plan.Name) (*plan.Plan, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Plan), args.Error(1)
}

func (m *MockStore) GetByStripePriceID(ctx context.Context, priceID string) (*plan.Plan, error) {
	args := m.Called(ctx, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Plan), args.Error(1)
}

func (m *MockStore) List(ctx context.Context, onlyActive bool) ([]plan.Plan, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]plan.Plan), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, p *plan.Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockPriceMinter is a mock implementation of billing.PriceMinter.
type MockPriceMinter struct {
	mock.Mock
}

func (m *MockPriceMinter) CreatePlanPrice(ctx context.Context, spec billing.PriceSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *MockPriceMinter) DeactivatePrice(ctx context.Context, priceID string) error {
	args := m.Called(ctx, priceID)
	return args.Error(0)
}

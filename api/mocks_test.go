package api_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/subman/billing"
	"github.com/dmitrymomot/subman/organization"
	"github.com/dmitrymomot/subman/plan"
	"github.com/dmitrymomot/subman/user"
)

// MockOrganizationStore is a mock implementation of organization.Store.
type MockOrganizationStore struct {
	mock.Mock
}

func (m *MockOrganizationStore) Create(ctx context.Context, org *organization.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationStore) GetByID(ctx context.Context, id string) (*organization.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Organization), args.Error(1)
}

func (m *MockOrganizationStore) GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*organization.Organization, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Organization), args.Error(1)
}

func (m *MockOrganizationStore) List(ctx context.Context) ([]organization.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]organization.Organization), args.Error(1)
}

func (m *MockOrganizationStore) Update(ctx context.Context, org *organization.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrganizationStore) AcquireSeat(ctx context.Context, id string, max int64) error {
	args := m.Called(ctx, id, max)
	return args.Error(0)
}

func (m *MockOrganizationStore) ReleaseSeat(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserStore is a mock implementation of user.Store.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserStore) ListByOrganization(ctx context.Context, organizationID string, onlyActive bool) ([]user.User, error) {
	args := m.Called(ctx, organizationID, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserStore) CountActiveByRole(ctx context.Context, organizationID string, role user.Role) (int64, error) {
	args := m.Called(ctx, organizationID, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockUserStore) SetActiveByOrganization(ctx context.Context, organizationID string, active bool) error {
	args := m.Called(ctx, organizationID, active)
	return args.Error(0)
}

func (m *MockUserStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) DeleteByOrganization(ctx context.Context, organizationID string) error {
	args := m.Called(ctx, organizationID)
	return args.Error(0)
}

// MockPlanStore is a mock implementation of plan.Store.
type MockPlanStore struct {
	mock.Mock
}

func (m *MockPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPlanStore) GetByID(ctx context.Context, id string) (*plan.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Plan), args.Error(1)
}

func (m *MockPlanStore) GetByName(ctx context.Context, name plan.Name) (*plan.Plan, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Plan), args.Error(1)
}

func (m *MockPlanStore) GetByStripePriceID(ctx context.Context, priceID string) (*plan.Plan, error) {
	args := m.Called(ctx, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plan.Plan), args.Error(1)
}

func (m *MockPlanStore) List(ctx context.Context, onlyActive bool) ([]plan.Plan, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]plan.Plan), args.Error(1)
}

func (m *MockPlanStore) Update(ctx context.Context, p *plan.Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockGateway is a mock implementation of billing.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePlanPrice(ctx context.Context, spec billing.PriceSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) DeactivatePrice(ctx context.Context, priceID string) error {
	args := m.Called(ctx, priceID)
	return args.Error(0)
}

func (m *MockGateway) CreateCustomer(ctx context.Context, email, organizationID string) (string, error) {
	args := m.Called(ctx, email, organizationID)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

func (m *MockGateway) GetSubscription(ctx context.Context, subscriptionID string) (*billing.ProviderSubscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ProviderSubscription), args.Error(1)
}

func (m *MockGateway) VerifyWebhook(payload []byte, signatureHeader string) (*billing.Event, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Event), args.Error(1)
}

// MockEventLedger is a mock implementation of subscription.EventLedger.
type MockEventLedger struct {
	mock.Mock
}

func (m *MockEventLedger) MarkProcessed(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockEventLedger) Forget(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// Package organization defines the organization record: the tenant
// unit that holds a subscription, a denormalized entitlement snapshot
// of its plan, and the member users referencing it.
package organization

import (
	"time"

	"github.com/dmitrymomot/subman/plan"
)

// Status represents the subscription state of an organization.
type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// Statuses lists all valid subscription statuses.
func Statuses() []Status {
	return []Status{StatusTrialing, StatusActive, StatusCanceled, StatusExpired}
}

// NormalizeProviderStatus maps a billing provider status string onto
// the local status set. Provider "canceled" and "unpaid" are treated as
// expired entitlements; anything unrecognized passes through verbatim
// so unexpected provider states remain visible in the record.
func NormalizeProviderStatus(providerStatus string) Status {
	switch providerStatus {
	case "canceled", "unpaid":
		return StatusExpired
	default:
		return Status(providerStatus)
	}
}

// PlanSnapshot is the entitlement snapshot: a point-in-time copy of the
// plan terms the organization was granted. It governs entitlement until
// the next defined transition refreshes it; the live Plan record never
// does so implicitly.
type PlanSnapshot struct {
	Name         plan.Name         `bson:"name" json:"name"`
	MaxUsers     int64             `bson:"max_users" json:"maxUsers"`
	Features     []string          `bson:"features" json:"features"`
	Price        int64             `bson:"price" json:"price"`
	BillingCycle plan.BillingCycle `bson:"billing_cycle" json:"billingCycle"`
	StorageGB    int64             `bson:"storage_gb" json:"storage"`
}

// NewPlanSnapshot is the single place the snapshot shape is defined.
// Every transition that refreshes entitlement goes through it.
func NewPlanSnapshot(p *plan.Plan) *PlanSnapshot {
	return &PlanSnapshot{
		Name:         p.Name,
		MaxUsers:     p.MaxUsers,
		Features:     p.Features,
		Price:        p.Price,
		BillingCycle: p.BillingCycle,
		StorageGB:    p.StorageGB,
	}
}

// Organization is the tenant record.
type Organization struct {
	ID                    string        `bson:"_id" json:"id"`
	Name                  string        `bson:"name" json:"name"`
	Email                 string        `bson:"email" json:"email"`
	PlanID                string        `bson:"plan_id" json:"planId"`
	ActivePlan            *PlanSnapshot `bson:"active_plan,omitempty" json:"activePlan,omitempty"`
	SubscriptionStatus    Status        `bson:"subscription_status" json:"subscriptionStatus"`
	SubscriptionStartDate time.Time     `bson:"subscription_start_date" json:"subscriptionStartDate"`
	SubscriptionEndDate   time.Time     `bson:"subscription_end_date" json:"subscriptionEndDate"`
	StripeCustomerID      string        `bson:"stripe_customer_id,omitempty" json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID  string        `bson:"stripe_subscription_id,omitempty" json:"stripeSubscriptionId,omitempty"`

	// ActiveUsers is an advisory counter maintained atomically alongside
	// membership mutations. Authoritative counts are always live queries;
	// this field also backs the conditional seat-acquisition write.
	ActiveUsers int64 `bson:"active_users" json:"activeUsers"`

	IsActive  bool      `bson:"is_active" json:"isActive"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// CanAddUsers reports whether the subscription state admits new
// members. Canceled and expired organizations may not add users
// regardless of seat count.
func (o *Organization) CanAddUsers() bool {
	return o.SubscriptionStatus == StatusActive || o.SubscriptionStatus == StatusTrialing
}

// SeatLimit returns the seat ceiling and plan name from the
// entitlement snapshot, falling back to the live plan for organizations
// created before snapshots existed.
func (o *Organization) SeatLimit(live *plan.Plan) (int64, plan.Name) {
	if o.ActivePlan != nil {
		return o.ActivePlan.MaxUsers, o.ActivePlan.Name
	}
	if live != nil {
		return live.MaxUsers, live.Name
	}
	return 0, ""
}

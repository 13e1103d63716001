// Package plan implements the subscription plan catalog: the closed set
// of plans organizations can be entitled to, each mirrored by a price
// object at the billing provider.
package plan

import "time"

// Name identifies a plan tier. The set is closed.
type Name string

const (
	NameBasic    Name = "Basic"
	NameStandard Name = "Standard"
	NamePlus     Name = "Plus"
)

// Names lists all valid plan names.
func Names() []Name {
	return []Name{NameBasic, NameStandard, NamePlus}
}

// BillingCycle represents the billing frequency of a plan.
type BillingCycle string

const (
	CycleTrial   BillingCycle = "Trial"
	CycleMonthly BillingCycle = "Monthly"
	CycleYearly  BillingCycle = "Yearly"
)

// Cycles lists all valid billing cycles.
func Cycles() []BillingCycle {
	return []BillingCycle{CycleTrial, CycleMonthly, CycleYearly}
}

// Plan describes a subscription plan. StripePriceID points at the
// provider's immutable price object; price-affecting updates mint a new
// one and deactivate the old (see Service.Update).
type Plan struct {
	ID            string       `bson:"_id" json:"id"`
	Name          Name         `bson:"name" json:"name"`
	Price         int64        `bson:"price" json:"price"` // smallest currency unit
	BillingCycle  BillingCycle `bson:"billing_cycle" json:"billingCycle"`
	TrialDays     int          `bson:"trial_days" json:"trialDays"`
	Features      []string     `bson:"features" json:"features"`
	MaxUsers      int64        `bson:"max_users" json:"maxUsers"`
	StorageGB     int64        `bson:"storage_gb" json:"storage"`
	StripePriceID string       `bson:"stripe_price_id" json:"stripePriceId"`
	IsActive      bool         `bson:"is_active" json:"isActive"`
	CreatedAt     time.Time    `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time    `bson:"updated_at" json:"updatedAt"`
}

// Recurring reports whether the plan bills on an interval. Trial plans
// produce one-off prices at the provider.
func (p Plan) Recurring() bool {
	return p.BillingCycle == CycleMonthly || p.BillingCycle == CycleYearly
}

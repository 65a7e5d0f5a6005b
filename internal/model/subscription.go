package model

import (
	"time"
)

type Subscription struct {
	ID                     string     `db:"id"`
	UserID                 string     `db:"user_id"`
	PlanID                 PlanID     `db:"plan_id"`
	Status                 string     `db:"status"`
	Provider               string     `db:"provider"`
	ProviderCustomerID     *string    `db:"provider_customer_id"`
	ProviderSubscriptionID *string    `db:"provider_subscription_id"`
	CurrentPeriodEnd       *time.Time `db:"current_period_end"`
	CreatedAt              time.Time  `db:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at"`
}

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusPastDue   = "past_due"
)

func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

func (s *Subscription) IsPaid() bool {
	return s.PlanID != PlanFree && s.IsActive()
}

// Plan returns the effective plan for quota purposes. Inactive subscriptions
// fall back to the free tier.
func (s *Subscription) Plan() PlanID {
	if !s.IsActive() {
		return PlanFree
	}
	return s.PlanID
}

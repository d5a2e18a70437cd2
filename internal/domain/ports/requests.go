package ports

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smpconsole/subscription-tracker/internal/domain"
)

// CreateSubscriptionRequest carries the fields needed to create a
// subscription. OwnerID is optional; when nil the acting principal is
// stamped as owner. NextBillingDate is optional; when nil it is computed
// from the billing cycle and the start date.
type CreateSubscriptionRequest struct {
	StartDate       time.Time
	NextBillingDate *time.Time
	OwnerID         *uuid.UUID
	Name            string
	CostCurrency    string
	Notes           string
	Status          domain.SubscriptionStatus
	CostAmount      decimal.Decimal
	ProviderID      uuid.UUID
	BillingCycleID  uuid.UUID
}

// UpdateSubscriptionRequest carries a partial update; nil fields are left
// unchanged.
type UpdateSubscriptionRequest struct {
	Name             *string
	ProviderID       *uuid.UUID
	CostAmount       *decimal.Decimal
	CostCurrency     *string
	BillingCycleID   *uuid.UUID
	Status           *domain.SubscriptionStatus
	StartDate        *time.Time
	NextBillingDate  *time.Time
	CancellationDate *time.Time
	Notes            *string
	SubscriptionID   uuid.UUID
}

// CreateProviderRequest carries the fields needed to create a provider.
type CreateProviderRequest struct {
	OwnerID         *uuid.UUID
	Name            string
	Category        string
	Website         string
	CancellationURL string
}

// UpdateProviderRequest carries a partial provider update.
type UpdateProviderRequest struct {
	Name            *string
	Category        *string
	Website         *string
	CancellationURL *string
	ProviderID      uuid.UUID
}

// CreateBillingCycleRequest carries the fields needed to create a cycle.
type CreateBillingCycleRequest struct {
	OwnerID  *uuid.UUID
	Unit     domain.CycleUnit
	Interval int
}

// CreateNotificationRuleRequest carries the fields needed to create a rule.
type CreateNotificationRuleRequest struct {
	Timing         domain.NotificationTiming
	SubscriptionID uuid.UUID
	Enabled        bool
}

// UpdateNotificationRuleRequest carries a partial rule update.
type UpdateNotificationRuleRequest struct {
	Timing  *domain.NotificationTiming
	Enabled *bool
	RuleID  uuid.UUID
}

// CreateRenewalEventRequest carries the fields needed to record a renewal.
type CreateRenewalEventRequest struct {
	RenewalDate    time.Time
	Currency       string
	Amount         decimal.Decimal
	SubscriptionID uuid.UUID
	IsProcessed    bool
}

// UpdateRenewalEventRequest carries a partial renewal event update.
type UpdateRenewalEventRequest struct {
	RenewalDate *time.Time
	Amount      *decimal.Decimal
	Currency    *string
	IsProcessed *bool
	EventID     uuid.UUID
}

// CostSummary aggregates base-currency monthly and annual totals over a
// set of subscriptions.
type CostSummary struct {
	Currency     string
	MonthlyTotal decimal.Decimal
	AnnualTotal  decimal.Decimal
}

/// DashboardSummary is the per-principal overview: entity counts, the cost
// summary over active subscriptions, and the upcoming renewal window.
type DashboardSummary struct {
	UpcomingRenewals  []*domain.RenewalEvent
	BaseCurrency      string
	Costs             CostSummary
	Providers         int64
	Subscriptions     int64
	BillingCycles     int64
	NotificationRules int64
	PendingRenewals   int64
}

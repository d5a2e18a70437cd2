package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubscriptionStatus represents the subscription lifecycle state
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// IsValid returns true for one of the three lifecycle states
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusPaused, SubscriptionStatusCancelled:
		return true
	}
	return false
}

// Subscription is a recurring charge a user is tracking: what it costs,
// how often it renews, and where it is in its lifecycle.
//
// Cycle is always hydrated by the repository layer; the cost helpers
// assume it is non-nil.
type Subscription struct {
	StartDate        time.Time
	NextBillingDate  time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CancellationDate *time.Time
	OwnerID          *uuid.UUID
	Cycle            *BillingCycle
	Name             string
	CostCurrency     string
	Notes            string
	Status           SubscriptionStatus
	CostAmount       decimal.Decimal
	ID               uuid.UUID
	ProviderID       uuid.UUID
	BillingCycleID   uuid.UUID
}

// IsActive returns true if the subscription is currently active
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// IsPaused returns true if the subscription is paused
func (s *Subscription) IsPaused() bool {
	return s.Status == SubscriptionStatusPaused
}

// IsCancelled returns true if the subscription has been cancelled.
// Cancelled is terminal: no transition leads out of it.
func (s *Subscription) IsCancelled() bool {
	return s.Status == SubscriptionStatusCancelled
}

// MonthlyCost is the monthly-equivalent cost in the subscription's own currency.
func (s *Subscription) MonthlyCost() decimal.Decimal {
	return s.CostAmount.Mul(s.Cycle.MonthlyMultiplier())
}

// AnnualCost is the annual-equivalent cost in the subscription's own currency.
func (s *Subscription) AnnualCost() decimal.Decimal {
	return s.CostAmount.Mul(s.Cycle.AnnualMultiplier())
}

// MonthlyCostInBase converts the monthly-equivalent cost into the base currency.
func (s *Subscription) MonthlyCostInBase(conv *CurrencyConverter) (decimal.Decimal, error) {
	return conv.ToBase(s.MonthlyCost(), s.CostCurrency)
}

// AnnualCostInBase converts the annual-equivalent cost into the base currency.
func (s *Subscription) AnnualCostInBase(conv *CurrencyConverter) (decimal.Decimal, error) {
	return conv.ToBase(s.AnnualCost(), s.CostCurrency)
}

// ValidateSubscriptionFields checks the construction invariants shared by
// create and update: a name, a 3-letter currency, a known status and a
// non-negative cost. Referential checks (provider, cycle) happen against
// the caller's scope at the service layer.
func ValidateSubscriptionFields(name, currency string, status SubscriptionStatus, cost decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return NewDomainError(ErrorCodeValidationMissingField, "subscription name is required")
	}
	if len(strings.TrimSpace(currency)) != 3 {
		return NewDomainError(ErrorCodeValidationFailed, "cost currency must be a 3-letter code")
	}
	if !status.IsValid() {
		return NewDomainError(ErrorCodeValidationFailed, "unknown subscription status")
	}
	if cost.Sign() < 0 {
		return NewDomainError(ErrorCodeValidationFailed, "cost amount cannot be negative")
	}
	return nil
}

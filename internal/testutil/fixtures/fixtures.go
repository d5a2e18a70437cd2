// Package fixtures builds domain entities with sensible defaults for
// tests.
package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smpconsole/subscription-tracker/internal/domain"
)

// MonthlyCycle returns a 1-month billing cycle.
func MonthlyCycle() *domain.BillingCycle {
	return Cycle(1, domain.CycleUnitMonths)
}

// Cycle returns a billing cycle with no owner.
func Cycle(interval int, unit domain.CycleUnit) *domain.BillingCycle {
	now := time.Now().UTC()
	return &domain.BillingCycle{
		ID:        uuid.New(),
		Interval:  interval,
		Unit:      unit,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Subscription returns an active monthly subscription owned by ownerID.
// Override fields on the result as needed.
func Subscription(ownerID uuid.UUID) *domain.Subscription {
	now := time.Now().UTC()
	cycle := MonthlyCycle()
	start := now.AddDate(0, 0, -10)
	return &domain.Subscription{
		ID:              uuid.New(),
		OwnerID:         &ownerID,
		Name:            "Streaming Service",
		ProviderID:      uuid.New(),
		CostAmount:      decimal.RequireFromString("9.99"),
		CostCurrency:    "USD",
		BillingCycleID:  cycle.ID,
		Cycle:           cycle,
		Status:          domain.SubscriptionStatusActive,
		StartDate:       start,
		NextBillingDate: cycle.NextOccurrence(start),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Provider returns a provider owned by ownerID.
func Provider(ownerID uuid.UUID) *domain.Provider {
	now := time.Now().UTC()
	return &domain.Provider{
		ID:        uuid.New(),
		OwnerID:   &ownerID,
		Name:      "Acme Media",
		Category:  "entertainment",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RenewalEvent returns an unprocessed renewal event due in dueDays days.
func RenewalEvent(subscriptionID uuid.UUID, dueDays int) *domain.RenewalEvent {
	now := time.Now().UTC()
	return &domain.RenewalEvent{
		ID:             uuid.New(),
		SubscriptionID: subscriptionID,
		RenewalDate:    now.AddDate(0, 0, dueDays),
		Amount:         decimal.RequireFromString("9.99"),
		Currency:       "USD",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

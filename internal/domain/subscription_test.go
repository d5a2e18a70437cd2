package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubscription(t *testing.T, cost string, currency string, interval int, unit CycleUnit) *Subscription {
	t.Helper()
	cycle, err := NewBillingCycle(nil, interval, unit)
	require.NoError(t, err)
	return &Subscription{
		ID:             uuid.New(),
		Name:           "Test",
		ProviderID:     uuid.New(),
		CostAmount:     decimal.RequireFromString(cost),
		CostCurrency:   currency,
		BillingCycleID: cycle.ID,
		Cycle:          cycle,
		Status:         SubscriptionStatusActive,
	}
}

func TestSubscription_StatusPredicates(t *testing.T) {
	tests := []struct {
		status    SubscriptionStatus
		active    bool
		paused    bool
		cancelled bool
	}{
		{SubscriptionStatusActive, true, false, false},
		{SubscriptionStatusPaused, false, true, false},
		{SubscriptionStatusCancelled, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			sub := &Subscription{Status: tt.status}
			assert.Equal(t, tt.active, sub.IsActive())
			assert.Equal(t, tt.paused, sub.IsPaused())
			assert.Equal(t, tt.cancelled, sub.IsCancelled())
		})
	}
}

func TestSubscription_CostEquivalents(t *testing.T) {
	t.Run("monthly subscription", func(t *testing.T) {
		sub := testSubscription(t, "10.00", "USD", 1, CycleUnitMonths)
		assert.True(t, sub.MonthlyCost().Equal(decimal.RequireFromString("10.00")))
		assert.True(t, sub.AnnualCost().Equal(decimal.RequireFromString("120.00")))
	})

	t.Run("yearly subscription", func(t *testing.T) {
		sub := testSubscription(t, "120.00", "USD", 1, CycleUnitYears)
		assert.True(t, sub.MonthlyCost().Round(2).Equal(decimal.RequireFromString("10.00")))
		assert.True(t, sub.AnnualCost().Round(2).Equal(decimal.RequireFromString("120.00")))
	})

	t.Run("weekly subscription uses 4.33 weeks per month", func(t *testing.T) {
		sub := testSubscription(t, "5.00", "USD", 1, CycleUnitWeeks)
		assert.True(t, sub.MonthlyCost().Equal(decimal.RequireFromString("21.65")))
	})
}

func TestSubscription_CostInBase(t *testing.T) {
	conv, err := NewCurrencyConverter("USD", DefaultExchangeRates())
	require.NoError(t, err)

	sub := testSubscription(t, "20.00", "EUR", 1, CycleUnitYears)

	monthly, err := sub.MonthlyCostInBase(conv)
	require.NoError(t, err)
	assert.True(t, monthly.Round(2).Equal(decimal.RequireFromString("1.80")), "got %s", monthly)

	annual, err := sub.AnnualCostInBase(conv)
	require.NoError(t, err)
	assert.True(t, annual.Round(2).Equal(decimal.RequireFromString("21.60")), "got %s", annual)

	sub.CostCurrency = "XXX"
	_, err = sub.MonthlyCostInBase(conv)
	assert.True(t, IsDomainError(err, ErrorCodeCurrencyUnknown))
}

func TestValidateSubscriptionFields(t *testing.T) {
	ten := decimal.NewFromInt(10)

	assert.NoError(t, ValidateSubscriptionFields("Music", "USD", SubscriptionStatusActive, ten))

	err := ValidateSubscriptionFields("", "USD", SubscriptionStatusActive, ten)
	assert.True(t, IsDomainError(err, ErrorCodeValidationMissingField))

	err = ValidateSubscriptionFields("Music", "DOLLAR", SubscriptionStatusActive, ten)
	assert.True(t, IsDomainError(err, ErrorCodeValidationFailed))

	err = ValidateSubscriptionFields("Music", "USD", SubscriptionStatus("expired"), ten)
	assert.True(t, IsDomainError(err, ErrorCodeValidationFailed))

	err = ValidateSubscriptionFields("Music", "USD", SubscriptionStatusActive, decimal.NewFromInt(-1))
	assert.True(t, IsDomainError(err, ErrorCodeValidationFailed))
}

func TestChangedFields(t *testing.T) {
	base := testSubscription(t, "10.00", "USD", 1, CycleUnitMonths)
	base.StartDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	base.NextBillingDate = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	base.Notes = "original"

	t.Run("no changes yields empty set", func(t *testing.T) {
		clone := *base
		assert.Empty(t, ChangedFields(base, &clone))
	})

	t.Run("detects changed fields in a fixed order", func(t *testing.T) {
		clone := *base
		clone.Name = "Renamed"
		clone.CostAmount = decimal.RequireFromString("12.50")
		clone.Notes = "edited"
		assert.Equal(t, []string{"name", "cost_amount", "notes"}, ChangedFields(base, &clone))
	})

	t.Run("equal decimals with different exponents are not a change", func(t *testing.T) {
		clone := *base
		clone.CostAmount = decimal.RequireFromString("10")
		assert.Empty(t, ChangedFields(base, &clone))
	})

	t.Run("cancellation date set is a change", func(t *testing.T) {
		clone := *base
		now := time.Now().UTC()
		clone.CancellationDate = &now
		assert.Equal(t, []string{"cancellation_date"}, ChangedFields(base, &clone))
	})
}

func TestUpdateDescription(t *testing.T) {
	desc := UpdateDescription([]string{"cost_amount", "notes"})
	assert.Equal(t, "Updated fields: cost_amount, notes", desc)
}

package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCycle(t *testing.T, interval int, unit CycleUnit) *BillingCycle {
	t.Helper()
	cycle, err := NewBillingCycle(nil, interval, unit)
	require.NoError(t, err)
	return cycle
}

func TestNewBillingCycle_RejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		unit     CycleUnit
		code     ErrorCode
	}{
		{"zero interval", 0, CycleUnitMonths, ErrorCodeCycleInvalidInterval},
		{"negative interval", -3, CycleUnitDays, ErrorCodeCycleInvalidInterval},
		{"unknown unit", 1, CycleUnit("fortnights"), ErrorCodeCycleInvalidUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBillingCycle(nil, tt.interval, tt.unit)
			require.Error(t, err)
			assert.True(t, IsDomainError(err, tt.code))
		})
	}
}

func TestNextOccurrence_AdvancesByFixedOffsets(t *testing.T) {
	from := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		interval int
		unit     CycleUnit
		wantDays int
	}{
		{"1 day", 1, CycleUnitDays, 1},
		{"10 days", 10, CycleUnitDays, 10},
		{"1 week", 1, CycleUnitWeeks, 7},
		{"3 weeks", 3, CycleUnitWeeks, 21},
		{"1 month is 30 days", 1, CycleUnitMonths, 30},
		{"2 months is 60 days", 2, CycleUnitMonths, 60},
		{"1 year is 365 days", 1, CycleUnitYears, 365},
		{"2 years is 730 days", 2, CycleUnitYears, 730},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle := mustCycle(t, tt.interval, tt.unit)
			next := cycle.NextOccurrence(from)
			assert.Equal(t, from.AddDate(0, 0, tt.wantDays), next)
		})
	}
}

func TestNextDueAfter_IsStrictlyAfterReference(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	reference := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	for _, unit := range []CycleUnit{CycleUnitDays, CycleUnitWeeks, CycleUnitMonths, CycleUnitYears} {
		for _, interval := range []int{1, 2, 7} {
			cycle := mustCycle(t, interval, unit)
			due := cycle.NextDueAfter(start, reference)
			assert.True(t, due.After(reference), "%s interval=%d", unit, interval)
		}
	}
}

func TestNextDueAfter_SkipsElapsedOccurrences(t *testing.T) {
	cycle := mustCycle(t, 1, CycleUnitMonths)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reference := start.AddDate(0, 0, 75)

	due := cycle.NextDueAfter(start, reference)

	// 30-day months: occurrences at +30, +60, +90; only +90 clears day 75.
	assert.Equal(t, start.AddDate(0, 0, 90), due)
}

func TestNextDueAfter_IdempotentUnderReapplication(t *testing.T) {
	cycle := mustCycle(t, 2, CycleUnitWeeks)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reference := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	first := cycle.NextDueAfter(start, reference)
	again := cycle.NextDueAfter(start, reference)
	assert.True(t, first.Equal(again))

	// Feeding the result back as its own reference never regresses.
	next := cycle.NextDueAfter(start, first)
	assert.True(t, next.After(first))
}

func TestMonthlyMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		unit     CycleUnit
		want     string
	}{
		{"every 30 days is monthly", 30, CycleUnitDays, "1"},
		{"every 15 days doubles", 15, CycleUnitDays, "2"},
		{"weekly uses 4.33", 1, CycleUnitWeeks, "4.33"},
		{"monthly is 1", 1, CycleUnitMonths, "1"},
		{"quarterly is a third", 3, CycleUnitMonths, "0.3333333333333333"},
		{"yearly is a twelfth", 1, CycleUnitYears, "0.0833333333333333"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle := mustCycle(t, tt.interval, tt.unit)
			want := decimal.RequireFromString(tt.want)
			assert.True(t, cycle.MonthlyMultiplier().Equal(want),
				"got %s want %s", cycle.MonthlyMultiplier(), want)
		})
	}
}

func TestAnnualMultiplier_IsTwelveMonthlies(t *testing.T) {
	twelve := decimal.NewFromInt(12)
	for _, unit := range []CycleUnit{CycleUnitDays, CycleUnitWeeks, CycleUnitMonths, CycleUnitYears} {
		for _, interval := range []int{1, 2, 3, 6, 12} {
			cycle := mustCycle(t, interval, unit)
			want := cycle.MonthlyMultiplier().Mul(twelve)
			assert.True(t, cycle.AnnualMultiplier().Equal(want),
				"%s interval=%d", unit, interval)
		}
	}
}

func TestBillingCycle_String(t *testing.T) {
	assert.Equal(t, "Every 2 weeks", mustCycle(t, 2, CycleUnitWeeks).String())
	assert.Equal(t, "Every 1 months", mustCycle(t, 1, CycleUnitMonths).String())
}

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CycleUnit defines the time unit for billing cycle intervals
type CycleUnit string

const (
	CycleUnitDays   CycleUnit = "days"
	CycleUnitWeeks  CycleUnit = "weeks"
	CycleUnitMonths CycleUnit = "months"
	CycleUnitYears  CycleUnit = "years"
)

// IsValid returns true if the unit is one of the supported cycle units
func (u CycleUnit) IsValid() bool {
	switch u {
	case CycleUnitDays, CycleUnitWeeks, CycleUnitMonths, CycleUnitYears:
		return true
	}
	return false
}

var (
	monthsPerYear  = decimal.NewFromInt(12)
	daysPerMonth   = decimal.NewFromInt(30)
	weeksPerMonth  = decimal.RequireFromString("4.33")
	oneMultiplier  = decimal.NewFromInt(1)
)

// BillingCycle is a recurrence rule governing how often a subscription
// renews: every Interval Units (e.g. every 2 weeks).
//
// Month and year arithmetic uses fixed-length periods (30-day months,
// 365-day years) rather than calendar arithmetic. The drift over many
// cycles is a known approximation that existing data depends on.
type BillingCycle struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	OwnerID   *uuid.UUID
	Unit      CycleUnit
	ID        uuid.UUID
	Interval  int
}

// NewBillingCycle validates and constructs a billing cycle. A non-positive
// interval or unknown unit is rejected here so that recurrence arithmetic
// never has to guard against them.
func NewBillingCycle(ownerID *uuid.UUID, interval int, unit CycleUnit) (*BillingCycle, error) {
	if interval <= 0 {
		return nil, NewDomainError(ErrorCodeCycleInvalidInterval,
			fmt.Sprintf("billing cycle interval must be positive, got %d", interval))
	}
	if !unit.IsValid() {
		return nil, NewDomainError(ErrorCodeCycleInvalidUnit,
			fmt.Sprintf("unknown billing cycle unit %q", unit))
	}
	now := time.Now().UTC()
	return &BillingCycle{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Interval:  interval,
		Unit:      unit,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// String returns a human-readable description, e.g. "Every 2 weeks".
func (c *BillingCycle) String() string {
	return fmt.Sprintf("Every %d %s", c.Interval, c.Unit)
}

// NextOccurrence adds one cycle to from using fixed-length offsets:
// days are exact, weeks are 7 days, months 30 days, years 365 days.
func (c *BillingCycle) NextOccurrence(from time.Time) time.Time {
	switch c.Unit {
	case CycleUnitDays:
		return from.AddDate(0, 0, c.Interval)
	case CycleUnitWeeks:
		return from.AddDate(0, 0, c.Interval*7)
	case CycleUnitMonths:
		return from.AddDate(0, 0, c.Interval*30)
	case CycleUnitYears:
		return from.AddDate(0, 0, c.Interval*365)
	}
	return from
}

// NextDueAfter walks occurrences forward from start until the result is
// strictly after reference. Terminates because a valid cycle always
// advances time by at least one day per step.
func (c *BillingCycle) NextDueAfter(start, reference time.Time) time.Time {
	next := c.NextOccurrence(start)
	for !next.After(reference) {
		next = c.NextOccurrence(next)
	}
	return next
}

// MonthlyMultiplier converts a per-cycle cost into its monthly equivalent,
// assuming the cost is fixed and cycles repeat indefinitely.
func (c *BillingCycle) MonthlyMultiplier() decimal.Decimal {
	interval := decimal.NewFromInt(int64(c.Interval))
	switch c.Unit {
	case CycleUnitDays:
		return daysPerMonth.Div(interval)
	case CycleUnitWeeks:
		return weeksPerMonth.Div(interval)
	case CycleUnitMonths:
		return oneMultiplier.Div(interval)
	case CycleUnitYears:
		return oneMultiplier.Div(interval.Mul(monthsPerYear))
	}
	return oneMultiplier
}

// AnnualMultiplier is always exactly twelve monthly multipliers.
func (c *BillingCycle) AnnualMultiplier() decimal.Decimal {
	return c.MonthlyMultiplier().Mul(monthsPerYear)
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RenewalEvent is a concrete, dated occurrence of a subscription charge,
// independent of the recurring rule that generated it. Events are created
// by scheduling or manual entry, marked processed when an external
// collaborator handles them, and unprocessed events are deleted in bulk
// when their subscription is cancelled.
//
// Like notification rules, events derive their owner through the
// subscription.
type RenewalEvent struct {
	RenewalDate    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Currency       string
	Amount         decimal.Decimal
	ID             uuid.UUID
	SubscriptionID uuid.UUID
	IsProcessed    bool
}

// NewRenewalEvent validates and constructs a renewal event.
func NewRenewalEvent(subscriptionID uuid.UUID, renewalDate time.Time, amount decimal.Decimal, currency string) (*RenewalEvent, error) {
	if renewalDate.IsZero() {
		return nil, NewDomainError(ErrorCodeValidationMissingField, "renewal date is required")
	}
	if amount.Sign() < 0 {
		return nil, NewDomainError(ErrorCodeValidationFailed, "renewal amount cannot be negative")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, NewDomainError(ErrorCodeValidationFailed, "renewal currency must be a 3-letter code")
	}
	now := time.Now().UTC()
	return &RenewalEvent{
		ID:             uuid.New(),
		SubscriptionID: subscriptionID,
		RenewalDate:    renewalDate.UTC(),
		Amount:         amount,
		Currency:       currency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// HistoryEventType classifies an audit trail entry
type HistoryEventType string

const (
	HistoryEventCreated       HistoryEventType = "created"
	HistoryEventUpdated       HistoryEventType = "updated"
	HistoryEventStatusChanged HistoryEventType = "status_changed"
)

// SubscriptionHistory is an append-only audit entry tied to a
// subscription. Entries are never mutated or deleted after creation.
type SubscriptionHistory struct {
	CreatedAt      time.Time
	EventType      HistoryEventType
	Description    string
	ID             uuid.UUID
	SubscriptionID uuid.UUID
}

// NewHistoryEntry constructs an audit entry for a subscription.
func NewHistoryEntry(subscriptionID uuid.UUID, eventType HistoryEventType, description string) *SubscriptionHistory {
	return &SubscriptionHistory{
		ID:             uuid.New(),
		SubscriptionID: subscriptionID,
		EventType:      eventType,
		Description:    description,
		CreatedAt:      time.Now().UTC(),
	}
}

// ChangedFields compares two subscription snapshots and returns the names
// of the tracked fields whose values differ, in a fixed order. It is a
// pure function of the two snapshots and feeds the "updated" history
// description.
func ChangedFields(old, updated *Subscription) []string {
	var changed []string
	if old.Name != updated.Name {
		changed = append(changed, "name")
	}
	if old.ProviderID != updated.ProviderID {
		changed = append(changed, "provider")
	}
	if !old.CostAmount.Equal(updated.CostAmount) {
		changed = append(changed, "cost_amount")
	}
	if old.CostCurrency != updated.CostCurrency {
		changed = append(changed, "cost_currency")
	}
	if old.BillingCycleID != updated.BillingCycleID {
		changed = append(changed, "billing_cycle")
	}
	if old.Status != updated.Status {
		changed = append(changed, "status")
	}
	if !old.StartDate.Equal(updated.StartDate) {
		changed = append(changed, "start_date")
	}
	if !old.NextBillingDate.Equal(updated.NextBillingDate) {
		changed = append(changed, "next_billing_date")
	}
	if !equalOptionalTime(old.CancellationDate, updated.CancellationDate) {
		changed = append(changed, "cancellation_date")
	}
	if old.Notes != updated.Notes {
		changed = append(changed, "notes")
	}
	return changed
}

// UpdateDescription formats a changed-field set into the history
// description, e.g. "Updated fields: cost_amount, notes".
func UpdateDescription(fields []string) string {
	return "Updated fields: " + strings.Join(fields, ", ")
}

func equalOptionalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

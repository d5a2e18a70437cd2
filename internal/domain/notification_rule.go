package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationTiming is the offset before a renewal at which a reminder
// would fire. Only the rule storage is modeled here; evaluation and
// delivery belong to an external collaborator.
type NotificationTiming string

const (
	TimingOneDayBefore    NotificationTiming = "1_day"
	TimingThreeDaysBefore NotificationTiming = "3_days"
	TimingOneWeekBefore   NotificationTiming = "1_week"
	TimingTwoWeeksBefore  NotificationTiming = "2_weeks"
)

// IsValid returns true if the timing is one of the four supported offsets
func (t NotificationTiming) IsValid() bool {
	switch t {
	case TimingOneDayBefore, TimingThreeDaysBefore, TimingOneWeekBefore, TimingTwoWeeksBefore:
		return true
	}
	return false
}

// NotificationRule attaches a reminder offset to a subscription. At most
// one rule per (subscription, timing) pair may exist.
//
// Ownership is derived through the subscription; the rule never stores an
// owner of its own.
type NotificationRule struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Timing         NotificationTiming
	ID             uuid.UUID
	SubscriptionID uuid.UUID
	Enabled        bool
}

// NewNotificationRule validates and constructs a notification rule.
func NewNotificationRule(subscriptionID uuid.UUID, timing NotificationTiming, enabled bool) (*NotificationRule, error) {
	if !timing.IsValid() {
		return nil, NewDomainError(ErrorCodeValidationFailed,
			fmt.Sprintf("unknown notification timing %q", timing))
	}
	now := time.Now().UTC()
	return &NotificationRule{
		ID:             uuid.New(),
		SubscriptionID: subscriptionID,
		Timing:         timing,
		Enabled:        enabled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smpconsole/subscription-tracker/internal/domain"
)

// Every read and write below that takes a Principal applies ownership
// scoping: non-elevated principals only reach rows they own (directly, or
// through the owning subscription for rules, events and history). A row
// outside the caller's scope behaves exactly like a missing row.

// SubscriptionFilter narrows and orders a subscription listing.
type SubscriptionFilter struct {
	ProviderID *uuid.UUID
	Status     *domain.SubscriptionStatus
	CostMin    *decimal.Decimal
	CostMax    *decimal.Decimal
	// OrderBy is one of "name", "-name", "cost_amount", "-cost_amount";
	// anything else falls back to name ascending.
	OrderBy string
}

// SubscriptionRepository persists subscriptions with their billing cycle
// hydrated on every read.
type SubscriptionRepository interface {
	Create(ctx context.Context, tx DBTX, sub *domain.Subscription) error
	GetByID(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error)
	// GetByIDForUpdate locks the row for the duration of the enclosing
	// transaction so concurrent lifecycle transitions serialize.
	GetByIDForUpdate(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error)
	Update(ctx context.Context, tx DBTX, sub *domain.Subscription) error
	Delete(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) error
	List(ctx context.Context, tx DBTX, principal domain.Principal, filter SubscriptionFilter) ([]*domain.Subscription, error)
	Count(ctx context.Context, tx DBTX, principal domain.Principal) (int64, error)
	CountByProvider(ctx context.Context, tx DBTX, providerID uuid.UUID) (int64, error)
	CountByCycle(ctx context.Context, tx DBTX, cycleID uuid.UUID) (int64, error)
}

// ProviderRepository persists subscription providers.
type ProviderRepository interface {
	Create(ctx context.Context, tx DBTX, provider *domain.Provider) error
	GetByID(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) (*domain.Provider, error)
	Update(ctx context.Context, tx DBTX, provider *domain.Provider) error
	Delete(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) error
	List(ctx context.Context, tx DBTX, principal domain.Principal) ([]*domain.Provider, error)
	Count(ctx context.Context, tx DBTX, principal domain.Principal) (int64, error)
}

// BillingCycleRepository persists billing cycles. Create surfaces the
// (owner, interval, unit) uniqueness violation as a duplicate conflict.
type BillingCycleRepository interface {
	Create(ctx context.Context, tx DBTX, cycle *domain.BillingCycle) error
	GetByID(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) (*domain.BillingCycle, error)
	Delete(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) error
	List(ctx context.Context, tx DBTX, principal domain.Principal) ([]*domain.BillingCycle, error)
	Count(ctx context.Context, tx DBTX, principal domain.Principal) (int64, error)
}

// NotificationRuleRepository persists reminder rules, scoped through the
// owning subscription. Create surfaces the (subscription, timing)
// uniqueness violation as a duplicate conflict.
type NotificationRuleRepository interface {
	Create(ctx context.Context, tx DBTX, rule *domain.NotificationRule) error
	GetByID(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) (*domain.NotificationRule, error)
	Update(ctx context.Context, tx DBTX, rule *domain.NotificationRule) error
	Delete(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) error
	List(ctx context.Context, tx DBTX, principal domain.Principal) ([]*domain.NotificationRule, error)
	Count(ctx context.Context, tx DBTX, principal domain.Principal) (int64, error)
}

// RenewalEventRepository persists renewal events, scoped through the
// owning subscription.
type RenewalEventRepository interface {
	Create(ctx context.Context, tx DBTX, event *domain.RenewalEvent) error
	GetByID(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) (*domain.RenewalEvent, error)
	Update(ctx context.Context, tx DBTX, event *domain.RenewalEvent) error
	Delete(ctx context.Context, tx DBTX, principal domain.Principal, id uuid.UUID) error
	List(ctx context.Context, tx DBTX, principal domain.Principal) ([]*domain.RenewalEvent, error)
	// ListUnprocessedDueBefore returns unprocessed events with a renewal
	// date at or before the limit, ascending, capped at limit rows.
	ListUnprocessedDueBefore(ctx context.Context, tx DBTX, principal domain.Principal, before time.Time, limit int32) ([]*domain.RenewalEvent, error)
	// DeleteUnprocessedBySubscription removes every unprocessed event for
	// the subscription; processed events are kept as a charge record.
	DeleteUnprocessedBySubscription(ctx context.Context, tx DBTX, subscriptionID uuid.UUID) error
	CountUnprocessed(ctx context.Context, tx DBTX, principal domain.Principal) (int64, error)
}

// HistoryRepository persists the append-only audit trail. There are no
// update or delete operations on purpose.
type HistoryRepository interface {
	Append(ctx context.Context, tx DBTX, entry *domain.SubscriptionHistory) error
	ListBySubscription(ctx context.Context, tx DBTX, principal domain.Principal, subscriptionID uuid.UUID, limit int32) ([]*domain.SubscriptionHistory, error)
}

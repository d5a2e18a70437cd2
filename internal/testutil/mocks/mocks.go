// Package mocks provides testify mocks for the repository and database
// ports, shared by the service test suites.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/mock"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// DBPort mocks ports.DBPort. Transactions execute their callback with a
// nil tx so repository mocks can assert on the call without a database.
type DBPort struct {
	mock.Mock
}

func (m *DBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *DBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (m *DBPort) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// Logger is a no-op ports.Logger for tests.
type Logger struct{}

func (Logger) Info(msg string, fields ...ports.Field)  {}
func (Logger) Error(msg string, fields ...ports.Field) {}
func (Logger) Warn(msg string, fields ...ports.Field)  {}
func (Logger) Debug(msg string, fields ...ports.Field) {}

// SubscriptionRepository mocks ports.SubscriptionRepository.
type SubscriptionRepository struct {
	mock.Mock
}

func (m *SubscriptionRepository) Create(ctx context.Context, tx ports.DBTX, sub *domain.Subscription) error {
	args := m.Called(ctx, tx, sub)
	return args.Error(0)
}

func (m *SubscriptionRepository) GetByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, tx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *SubscriptionRepository) GetByIDForUpdate(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, tx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *SubscriptionRepository) Update(ctx context.Context, tx ports.DBTX, sub *domain.Subscription) error {
	args := m.Called(ctx, tx, sub)
	return args.Error(0)
}

func (m *SubscriptionRepository) Delete(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) error {
	args := m.Called(ctx, tx, principal, id)
	return args.Error(0)
}

func (m *SubscriptionRepository) List(ctx context.Context, tx ports.DBTX, principal domain.Principal, filter ports.SubscriptionFilter) ([]*domain.Subscription, error) {
	args := m.Called(ctx, tx, principal, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *SubscriptionRepository) Count(ctx context.Context, tx ports.DBTX, principal domain.Principal) (int64, error) {
	args := m.Called(ctx, tx, principal)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SubscriptionRepository) CountByProvider(ctx context.Context, tx ports.DBTX, providerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, providerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SubscriptionRepository) CountByCycle(ctx context.Context, tx ports.DBTX, cycleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, cycleID)
	return args.Get(0).(int64), args.Error(1)
}

// ProviderRepository mocks ports.ProviderRepository.
type ProviderRepository struct {
	mock.Mock
}

func (m *ProviderRepository) Create(ctx context.Context, tx ports.DBTX, provider *domain.Provider) error {
	args := m.Called(ctx, tx, provider)
	return args.Error(0)
}

func (m *ProviderRepository) GetByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.Provider, error) {
	args := m.Called(ctx, tx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Provider), args.Error(1)
}

func (m *ProviderRepository) Update(ctx context.Context, tx ports.DBTX, provider *domain.Provider) error {
	args := m.Called(ctx, tx, provider)
	return args.Error(0)
}

func (m *ProviderRepository) Delete(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) error {
	args := m.Called(ctx, tx, principal, id)
	return args.Error(0)
}

func (m *ProviderRepository) List(ctx context.Context, tx ports.DBTX, principal domain.Principal) ([]*domain.Provider, error) {
	args := m.Called(ctx, tx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Provider), args.Error(1)
}

func (m *ProviderRepository) Count(ctx context.Context, tx ports.DBTX, principal domain.Principal) (int64, error) {
	args := m.Called(ctx, tx, principal)
	return args.Get(0).(int64), args.Error(1)
}

// BillingCycleRepository mocks ports.BillingCycleRepository.
type BillingCycleRepository struct {
	mock.Mock
}

func (m *BillingCycleRepository) Create(ctx context.Context, tx ports.DBTX, cycle *domain.BillingCycle) error {
	args := m.Called(ctx, tx, cycle)
	return args.Error(0)
}

func (m *BillingCycleRepository) GetByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.BillingCycle, error) {
	args := m.Called(ctx, tx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillingCycle), args.Error(1)
}

func (m *BillingCycleRepository) Delete(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) error {
	args := m.Called(ctx, tx, principal, id)
	return args.Error(0)
}

func (m *BillingCycleRepository) List(ctx context.Context, tx ports.DBTX, principal domain.Principal) ([]*domain.BillingCycle, error) {
	args := m.Called(ctx, tx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BillingCycle), args.Error(1)
}

func (m *BillingCycleRepository) Count(ctx context.Context, tx ports.DBTX, principal domain.Principal) (int64, error) {
	args := m.Called(ctx, tx, principal)
	return args.Get(0).(int64), args.Error(1)
}

// NotificationRuleRepository mocks ports.NotificationRuleRepository.
type NotificationRuleRepository struct {
	mock.Mock
}

func (m *NotificationRuleRepository) Create(ctx context.Context, tx ports.DBTX, rule *domain.NotificationRule) error {
	args := m.Called(ctx, tx, rule)
	return args.Error(0)
}

func (m *NotificationRuleRepository) GetByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.NotificationRule, error) {
	args := m.Called(ctx, tx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationRule), args.Error(1)
}

func (m *NotificationRuleRepository) Update(ctx context.Context, tx ports.DBTX, rule *domain.NotificationRule) error {
	args := m.Called(ctx, tx, rule)
	return args.Error(0)
}

func (m *NotificationRuleRepository) Delete(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) error {
	args := m.Called(ctx, tx, principal, id)
	return args.Error(0)
}

func (m *NotificationRuleRepository) List(ctx context.Context, tx ports.DBTX, principal domain.Principal) ([]*domain.NotificationRule, error) {
	args := m.Called(ctx, tx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.NotificationRule), args.Error(1)
}

func (m *NotificationRuleRepository) Count(ctx context.Context, tx ports.DBTX, principal domain.Principal) (int64, error) {
	args := m.Called(ctx, tx, principal)
	return args.Get(0).(int64), args.Error(1)
}

// RenewalEventRepository mocks ports.RenewalEventRepository.
type RenewalEventRepository struct {
	mock.Mock
}

func (m *RenewalEventRepository) Create(ctx context.Context, tx ports.DBTX, event *domain.RenewalEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

func (m *RenewalEventRepository) GetByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.RenewalEvent, error) {
	args := m.Called(ctx, tx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalEvent), args.Error(1)
}

func (m *RenewalEventRepository) Update(ctx context.Context, tx ports.DBTX, event *domain.RenewalEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

func (m *RenewalEventRepository) Delete(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) error {
	args := m.Called(ctx, tx, principal, id)
	return args.Error(0)
}

func (m *RenewalEventRepository) List(ctx context.Context, tx ports.DBTX, principal domain.Principal) ([]*domain.RenewalEvent, error) {
	args := m.Called(ctx, tx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RenewalEvent), args.Error(1)
}

func (m *RenewalEventRepository) ListUnprocessedDueBefore(ctx context.Context, tx ports.DBTX, principal domain.Principal, before time.Time, limit int32) ([]*domain.RenewalEvent, error) {
	args := m.Called(ctx, tx, principal, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RenewalEvent), args.Error(1)
}

func (m *RenewalEventRepository) DeleteUnprocessedBySubscription(ctx context.Context, tx ports.DBTX, subscriptionID uuid.UUID) error {
	args := m.Called(ctx, tx, subscriptionID)
	return args.Error(0)
}

func (m *RenewalEventRepository) CountUnprocessed(ctx context.Context, tx ports.DBTX, principal domain.Principal) (int64, error) {
	args := m.Called(ctx, tx, principal)
	return args.Get(0).(int64), args.Error(1)
}

// HistoryRepository mocks ports.HistoryRepository.
type HistoryRepository struct {
	mock.Mock
}

func (m *HistoryRepository) Append(ctx context.Context, tx ports.DBTX, entry *domain.SubscriptionHistory) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *HistoryRepository) ListBySubscription(ctx context.Context, tx ports.DBTX, principal domain.Principal, subscriptionID uuid.UUID, limit int32) ([]*domain.SubscriptionHistory, error) {
	args := m.Called(ctx, tx, principal, subscriptionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SubscriptionHistory), args.Error(1)
}

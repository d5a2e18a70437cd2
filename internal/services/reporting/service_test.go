package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
	"github.com/smpconsole/subscription-tracker/internal/testutil/fixtures"
	"github.com/smpconsole/subscription-tracker/internal/testutil/mocks"
)

type reportingMocks struct {
	subs      *mocks.SubscriptionRepository
	providers *mocks.ProviderRepository
	cycles    *mocks.BillingCycleRepository
	rules     *mocks.NotificationRuleRepository
	events    *mocks.RenewalEventRepository
}

func newTestService(t *testing.T) (*Service, *reportingMocks) {
	t.Helper()
	m := &reportingMocks{
		subs:      &mocks.SubscriptionRepository{},
		providers: &mocks.ProviderRepository{},
		cycles:    &mocks.BillingCycleRepository{},
		rules:     &mocks.NotificationRuleRepository{},
		events:    &mocks.RenewalEventRepository{},
	}
	converter, err := domain.NewCurrencyConverter("USD", domain.DefaultExchangeRates())
	require.NoError(t, err)
	svc := NewService(&mocks.DBPort{}, m.subs, m.providers, m.cycles, m.rules, m.events, converter, mocks.Logger{})
	return svc, m
}

func buildSub(ownerID uuid.UUID, cost, currency string, interval int, unit domain.CycleUnit) *domain.Subscription {
	sub := fixtures.Subscription(ownerID)
	sub.CostAmount = decimal.RequireFromString(cost)
	sub.CostCurrency = currency
	sub.Cycle = fixtures.Cycle(interval, unit)
	sub.BillingCycleID = sub.Cycle.ID
	return sub
}

func TestSummarizeCosts(t *testing.T) {
	owner := uuid.New()

	t.Run("empty set yields exact zeros", func(t *testing.T) {
		svc, _ := newTestService(t)
		summary, err := svc.SummarizeCosts(nil)
		require.NoError(t, err)
		assert.True(t, summary.MonthlyTotal.Equal(decimal.Zero))
		assert.True(t, summary.AnnualTotal.Equal(decimal.Zero))
		assert.Equal(t, "USD", summary.Currency)
	})

	t.Run("mixed currencies and cycles fold into base totals", func(t *testing.T) {
		svc, _ := newTestService(t)
		subs := []*domain.Subscription{
			buildSub(owner, "10.00", "USD", 1, domain.CycleUnitMonths),
			buildSub(owner, "20.00", "EUR", 1, domain.CycleUnitYears),
		}

		summary, err := svc.SummarizeCosts(subs)
		require.NoError(t, err)
		// 10 + 20 * (1/12) * 1.08 = 11.80
		assert.Equal(t, "11.80", summary.MonthlyTotal.StringFixed(2))
		// 120 + 20 * 1.08 = 141.60
		assert.Equal(t, "141.60", summary.AnnualTotal.StringFixed(2))
	})

	t.Run("unknown currency propagates an error", func(t *testing.T) {
		svc, _ := newTestService(t)
		subs := []*domain.Subscription{
			buildSub(owner, "100.00", "JPY", 1, domain.CycleUnitMonths),
		}
		_, err := svc.SummarizeCosts(subs)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeCurrencyUnknown, domain.GetErrorCode(err))
	})
}

func TestUpcomingRenewals(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{ID: uuid.New()}

	t.Run("defaults the horizon and caps the window", func(t *testing.T) {
		svc, m := newTestService(t)
		frozen := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return frozen }

		expected := []*domain.RenewalEvent{fixtures.RenewalEvent(uuid.New(), 5)}
		m.events.On("ListUnprocessedDueBefore", ctx, mock.Anything, principal,
			frozen.AddDate(0, 0, 30), int32(25)).Return(expected, nil)

		events, err := svc.UpcomingRenewals(ctx, principal, 0)
		require.NoError(t, err)
		assert.Equal(t, expected, events)
		m.events.AssertExpectations(t)
	})

	t.Run("honors an explicit horizon", func(t *testing.T) {
		svc, m := newTestService(t)
		frozen := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return frozen }

		m.events.On("ListUnprocessedDueBefore", ctx, mock.Anything, principal,
			frozen.AddDate(0, 0, 7), int32(25)).Return([]*domain.RenewalEvent{}, nil)

		_, err := svc.UpcomingRenewals(ctx, principal, 7)
		require.NoError(t, err)
		m.events.AssertExpectations(t)
	})
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{ID: uuid.New()}

	t.Run("assembles counts, costs and the renewal window", func(t *testing.T) {
		svc, m := newTestService(t)
		frozen := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return frozen }

		active := domain.SubscriptionStatusActive
		activeSubs := []*domain.Subscription{
			buildSub(principal.ID, "10.00", "USD", 1, domain.CycleUnitMonths),
		}
		upcoming := []*domain.RenewalEvent{fixtures.RenewalEvent(uuid.New(), 3)}

		m.providers.On("Count", ctx, mock.Anything, principal).Return(int64(2), nil)
		m.subs.On("Count", ctx, mock.Anything, principal).Return(int64(3), nil)
		m.cycles.On("Count", ctx, mock.Anything, principal).Return(int64(4), nil)
		m.rules.On("Count", ctx, mock.Anything, principal).Return(int64(1), nil)
		m.events.On("CountUnprocessed", ctx, mock.Anything, principal).Return(int64(5), nil)
		m.subs.On("List", ctx, mock.Anything, principal, ports.SubscriptionFilter{Status: &active}).
			Return(activeSubs, nil)
		m.events.On("ListUnprocessedDueBefore", ctx, mock.Anything, principal,
			frozen.AddDate(0, 0, 30), int32(25)).Return(upcoming, nil)

		summary, err := svc.Dashboard(ctx, principal)
		require.NoError(t, err)
		assert.Equal(t, int64(2), summary.Providers)
		assert.Equal(t, int64(3), summary.Subscriptions)
		assert.Equal(t, int64(4), summary.BillingCycles)
		assert.Equal(t, int64(1), summary.NotificationRules)
		assert.Equal(t, int64(5), summary.PendingRenewals)
		assert.Equal(t, "USD", summary.BaseCurrency)
		assert.Equal(t, "10.00", summary.Costs.MonthlyTotal.StringFixed(2))
		assert.Equal(t, upcoming, summary.UpcomingRenewals)
	})
}

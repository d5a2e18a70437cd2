package subscription

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

type serviceMocks struct {
	subs      *mocks.SubscriptionRepository
	providers *mocks.ProviderRepository
	cycles    *mocks.BillingCycleRepository
	rules     *mocks.NotificationRuleRepository
	events    *mocks.RenewalEventRepository
	history   *mocks.HistoryRepository
}

func newTestService(t *testing.T) (*Service, *serviceMocks) {
	t.Helper()
	m := &serviceMocks{
		subs:      &mocks.SubscriptionRepository{},
		providers: &mocks.ProviderRepository{},
		cycles:    &mocks.BillingCycleRepository{},
		rules:     &mocks.NotificationRuleRepository{},
		events:    &mocks.RenewalEventRepository{},
		history:   &mocks.HistoryRepository{},
	}
	svc := NewService(&mocks.DBPort{}, m.subs, m.providers, m.cycles, m.rules, m.events, m.history, mocks.Logger{})
	return svc, m
}

func regularPrincipal() domain.Principal {
	return domain.Principal{ID: uuid.New()}
}

func TestCreateSubscription(t *testing.T) {
	ctx := context.Background()
	principal := regularPrincipal()

	t.Run("creates with computed next billing date and audit entry", func(t *testing.T) {
		svc, m := newTestService(t)
		cycle := fixtures.MonthlyCycle()
		provider := fixtures.Provider(principal.ID)

		m.providers.On("GetByID", ctx, mock.Anything, principal, provider.ID).Return(provider, nil)
		m.cycles.On("GetByID", ctx, mock.Anything, principal, cycle.ID).Return(cycle, nil)
		m.subs.On("Create", ctx, mock.Anything, mock.AnythingOfType("*domain.Subscription")).Return(nil)
		m.history.On("Append", ctx, mock.Anything, mock.MatchedBy(func(e *domain.SubscriptionHistory) bool {
			return e.EventType == domain.HistoryEventCreated && e.Description == "Subscription created"
		})).Return(nil)

		start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
		sub, err := svc.Create(ctx, principal, &ports.CreateSubscriptionRequest{
			Name:           "Streaming Service",
			ProviderID:     provider.ID,
			CostAmount:     decimal.RequireFromString("9.99"),
			CostCurrency:   "USD",
			BillingCycleID: cycle.ID,
			StartDate:      start,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
		assert.Equal(t, start.AddDate(0, 0, 30), sub.NextBillingDate)
		require.NotNil(t, sub.OwnerID)
		assert.Equal(t, principal.ID, *sub.OwnerID)
		m.history.AssertExpectations(t)
	})

	t.Run("stamps the acting principal as owner", func(t *testing.T) {
		svc, m := newTestService(t)
		cycle := fixtures.MonthlyCycle()
		provider := fixtures.Provider(principal.ID)
		other := uuid.New()

		m.providers.On("GetByID", ctx, mock.Anything, principal, provider.ID).Return(provider, nil)
		m.cycles.On("GetByID", ctx, mock.Anything, principal, cycle.ID).Return(cycle, nil)
		m.subs.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
		m.history.On("Append", ctx, mock.Anything, mock.Anything).Return(nil)

		// A regular principal cannot assign someone else as owner.
		sub, err := svc.Create(ctx, principal, &ports.CreateSubscriptionRequest{
			Name:           "Cloud Storage",
			OwnerID:        &other,
			ProviderID:     provider.ID,
			CostAmount:     decimal.RequireFromString("5.00"),
			CostCurrency:   "USD",
			BillingCycleID: cycle.ID,
			StartDate:      time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, principal.ID, *sub.OwnerID)
	})

	t.Run("elevated principal can assign an owner", func(t *testing.T) {
		svc, m := newTestService(t)
		admin := domain.Principal{ID: uuid.New(), Superuser: true}
		cycle := fixtures.MonthlyCycle()
		provider := fixtures.Provider(admin.ID)
		target := uuid.New()

		m.providers.On("GetByID", ctx, mock.Anything, admin, provider.ID).Return(provider, nil)
		m.cycles.On("GetByID", ctx, mock.Anything, admin, cycle.ID).Return(cycle, nil)
		m.subs.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
		m.history.On("Append", ctx, mock.Anything, mock.Anything).Return(nil)

		sub, err := svc.Create(ctx, admin, &ports.CreateSubscriptionRequest{
			Name:           "Cloud Storage",
			OwnerID:        &target,
			ProviderID:     provider.ID,
			CostAmount:     decimal.RequireFromString("5.00"),
			CostCurrency:   "USD",
			BillingCycleID: cycle.ID,
			StartDate:      time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, target, *sub.OwnerID)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Create(ctx, principal, &ports.CreateSubscriptionRequest{
			CostCurrency: "USD",
			CostAmount:   decimal.RequireFromString("5.00"),
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("out of scope provider reads as not found", func(t *testing.T) {
		svc, m := newTestService(t)
		providerID := uuid.New()
		m.providers.On("GetByID", ctx, mock.Anything, principal, providerID).
			Return(nil, domain.NewNotFound(domain.ErrorCodeProviderNotFound, "provider"))

		_, err := svc.Create(ctx, principal, &ports.CreateSubscriptionRequest{
			Name:           "Streaming Service",
			ProviderID:     providerID,
			CostAmount:     decimal.RequireFromString("9.99"),
			CostCurrency:   "USD",
			BillingCycleID: uuid.New(),
			StartDate:      time.Now().UTC(),
		})
		require.Error(t, err)
		assert.True(t, domain.IsNotFoundError(err))
	})
}

func TestPause(t *testing.T) {
	ctx := context.Background()
	principal := regularPrincipal()

	t.Run("active pauses with one status_changed entry", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)
		m.subs.On("Update", ctx, mock.Anything, sub).Return(nil)
		m.history.On("Append", ctx, mock.Anything, mock.MatchedBy(func(e *domain.SubscriptionHistory) bool {
			return e.EventType == domain.HistoryEventStatusChanged &&
				e.Description == "Status changed from active to paused"
		})).Return(nil).Once()

		paused, err := svc.Pause(ctx, principal, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionStatusPaused, paused.Status)
		m.history.AssertExpectations(t)
	})

	t.Run("already paused is rejected without mutation", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)
		sub.Status = domain.SubscriptionStatusPaused

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)

		_, err := svc.Pause(ctx, principal, sub.ID)
		require.Error(t, err)
		assert.True(t, domain.IsInvalidTransition(err))
		assert.Contains(t, err.Error(), "subscription is already paused")
		m.subs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		m.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelled cannot be paused", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)
		sub.Status = domain.SubscriptionStatusCancelled

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)

		_, err := svc.Pause(ctx, principal, sub.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot pause a cancelled subscription")
	})
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	principal := regularPrincipal()

	t.Run("paused resumes and recomputes next billing date", func(t *testing.T) {
		svc, m := newTestService(t)
		frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return frozen }

		sub := fixtures.Subscription(principal.ID)
		sub.Status = domain.SubscriptionStatusPaused
		sub.NextBillingDate = frozen.AddDate(0, 0, -20)

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)
		m.subs.On("Update", ctx, mock.Anything, sub).Return(nil)
		m.history.On("Append", ctx, mock.Anything, mock.Anything).Return(nil)

		resumed, err := svc.Resume(ctx, principal, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionStatusActive, resumed.Status)
		assert.Equal(t, frozen.AddDate(0, 0, 30), resumed.NextBillingDate)
	})

	t.Run("only paused subscriptions can be resumed", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)

		_, err := svc.Resume(ctx, principal, sub.ID)
		require.Error(t, err)
		assert.True(t, domain.IsInvalidTransition(err))
		assert.Contains(t, err.Error(), "only paused subscriptions can be resumed")
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	principal := regularPrincipal()

	t.Run("active cancels, stamps date and drops pending renewals", func(t *testing.T) {
		svc, m := newTestService(t)
		frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return frozen }
		sub := fixtures.Subscription(principal.ID)

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)
		m.subs.On("Update", ctx, mock.Anything, sub).Return(nil)
		m.events.On("DeleteUnprocessedBySubscription", ctx, mock.Anything, sub.ID).Return(nil).Once()
		m.history.On("Append", ctx, mock.Anything, mock.MatchedBy(func(e *domain.SubscriptionHistory) bool {
			return e.Description == "Status changed from active to cancelled"
		})).Return(nil).Once()

		cancelled, err := svc.Cancel(ctx, principal, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionStatusCancelled, cancelled.Status)
		require.NotNil(t, cancelled.CancellationDate)
		assert.Equal(t, frozen, *cancelled.CancellationDate)
		m.events.AssertExpectations(t)
	})

	t.Run("paused can be cancelled", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)
		sub.Status = domain.SubscriptionStatusPaused

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)
		m.subs.On("Update", ctx, mock.Anything, sub).Return(nil)
		m.events.On("DeleteUnprocessedBySubscription", ctx, mock.Anything, sub.ID).Return(nil)
		m.history.On("Append", ctx, mock.Anything, mock.Anything).Return(nil)

		cancelled, err := svc.Cancel(ctx, principal, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionStatusCancelled, cancelled.Status)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)
		sub.Status = domain.SubscriptionStatusCancelled

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)

		_, err := svc.Cancel(ctx, principal, sub.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "subscription is already cancelled")
		m.events.AssertNotCalled(t, "DeleteUnprocessedBySubscription", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpdateSubscription(t *testing.T) {
	ctx := context.Background()
	principal := regularPrincipal()

	t.Run("records changed fields in audit entry", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)
		m.subs.On("Update", ctx, mock.Anything, mock.Anything).Return(nil)
		m.history.On("Append", ctx, mock.Anything, mock.MatchedBy(func(e *domain.SubscriptionHistory) bool {
			return e.EventType == domain.HistoryEventUpdated &&
				e.Description == "Updated fields: name, cost_amount"
		})).Return(nil).Once()

		name := "Streaming Service Plus"
		cost := decimal.RequireFromString("14.99")
		updated, err := svc.Update(ctx, principal, &ports.UpdateSubscriptionRequest{
			SubscriptionID: sub.ID,
			Name:           &name,
			CostAmount:     &cost,
		})
		require.NoError(t, err)
		assert.Equal(t, name, updated.Name)
		m.history.AssertExpectations(t)
	})

	t.Run("no-op update writes nothing", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)

		same := sub.Name
		updated, err := svc.Update(ctx, principal, &ports.UpdateSubscriptionRequest{
			SubscriptionID: sub.ID,
			Name:           &same,
		})
		require.NoError(t, err)
		assert.Equal(t, sub, updated)
		m.subs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		m.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("status changes are routed to lifecycle operations", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)

		m.subs.On("GetByIDForUpdate", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)

		paused := domain.SubscriptionStatusPaused
		_, err := svc.Update(ctx, principal, &ports.UpdateSubscriptionRequest{
			SubscriptionID: sub.ID,
			Status:         &paused,
		})
		require.Error(t, err)
		assert.True(t, domain.IsInvalidTransition(err))
	})
}

func TestRules(t *testing.T) {
	ctx := context.Background()
	principal := regularPrincipal()

	t.Run("create requires a visible subscription", func(t *testing.T) {
		svc, m := newTestService(t)
		subID := uuid.New()
		m.subs.On("GetByID", ctx, mock.Anything, principal, subID).
			Return(nil, domain.NewNotFound(domain.ErrorCodeSubNotFound, "subscription"))

		_, err := svc.CreateRule(ctx, principal, &ports.CreateNotificationRuleRequest{
			SubscriptionID: subID,
			Timing:         domain.TimingOneWeekBefore,
			Enabled:        true,
		})
		require.Error(t, err)
		assert.True(t, domain.IsNotFoundError(err))
	})

	t.Run("duplicate timing surfaces as conflict", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)

		m.subs.On("GetByID", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)
		m.rules.On("Create", ctx, mock.Anything, mock.Anything).
			Return(domain.NewDomainError(domain.ErrorCodeRuleDuplicate, "a notification rule with this timing already exists for the subscription"))

		_, err := svc.CreateRule(ctx, principal, &ports.CreateNotificationRuleRequest{
			SubscriptionID: sub.ID,
			Timing:         domain.TimingOneDayBefore,
			Enabled:        true,
		})
		require.Error(t, err)
		assert.True(t, domain.IsConflictError(err))
	})

	t.Run("rejects unknown timing", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.CreateRule(ctx, principal, &ports.CreateNotificationRuleRequest{
			SubscriptionID: uuid.New(),
			Timing:         domain.NotificationTiming("5_minutes"),
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	principal := regularPrincipal()

	t.Run("create defaults amount and currency from the subscription", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)

		m.subs.On("GetByID", ctx, mock.Anything, principal, sub.ID).Return(sub, nil)
		m.events.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)

		event, err := svc.CreateEvent(ctx, principal, &ports.CreateRenewalEventRequest{
			SubscriptionID: sub.ID,
			RenewalDate:    time.Now().UTC().AddDate(0, 0, 7),
		})
		require.NoError(t, err)
		assert.True(t, event.Amount.Equal(sub.CostAmount))
		assert.Equal(t, sub.CostCurrency, event.Currency)
		assert.False(t, event.IsProcessed)
	})

	t.Run("mark processed flips the flag", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)
		event := fixtures.RenewalEvent(sub.ID, 3)

		m.events.On("GetByID", ctx, mock.Anything, principal, event.ID).Return(event, nil)
		m.events.On("Update", ctx, mock.Anything, event).Return(nil)

		processed, err := svc.MarkEventProcessed(ctx, principal, event.ID)
		require.NoError(t, err)
		assert.True(t, processed.IsProcessed)
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		svc, m := newTestService(t)
		sub := fixtures.Subscription(principal.ID)
		event := fixtures.RenewalEvent(sub.ID, 3)

		m.events.On("GetByID", ctx, mock.Anything, principal, event.ID).Return(event, nil)

		bad := decimal.RequireFromString("-1")
		_, err := svc.UpdateEvent(ctx, principal, &ports.UpdateRenewalEventRequest{
			EventID: event.ID,
			Amount:  &bad,
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})
}

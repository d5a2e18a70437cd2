package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
	"github.com/smpconsole/subscription-tracker/internal/testutil/fixtures"
	"github.com/smpconsole/subscription-tracker/internal/testutil/mocks"
)

func newTestService(t *testing.T) (*Service, *mocks.ProviderRepository, *mocks.BillingCycleRepository, *mocks.SubscriptionRepository) {
	t.Helper()
	providers := &mocks.ProviderRepository{}
	cycles := &mocks.BillingCycleRepository{}
	subs := &mocks.SubscriptionRepository{}
	svc := NewService(&mocks.DBPort{}, providers, cycles, subs, mocks.Logger{})
	return svc, providers, cycles, subs
}

func TestCreateProvider(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{ID: uuid.New()}

	t.Run("stamps the acting principal as owner", func(t *testing.T) {
		svc, providers, _, _ := newTestService(t)
		providers.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)

		provider, err := svc.CreateProvider(ctx, principal, &ports.CreateProviderRequest{
			Name:     "Acme Media",
			Category: "entertainment",
		})
		require.NoError(t, err)
		require.NotNil(t, provider.OwnerID)
		assert.Equal(t, principal.ID, *provider.OwnerID)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.CreateProvider(ctx, principal, &ports.CreateProviderRequest{Name: "  "})
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestDeleteProvider(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{ID: uuid.New()}

	t.Run("blocked while referenced by subscriptions", func(t *testing.T) {
		svc, providers, _, subs := newTestService(t)
		provider := fixtures.Provider(principal.ID)

		providers.On("GetByID", ctx, mock.Anything, principal, provider.ID).Return(provider, nil)
		subs.On("CountByProvider", ctx, mock.Anything, provider.ID).Return(int64(2), nil)

		err := svc.DeleteProvider(ctx, principal, provider.ID)
		require.Error(t, err)
		assert.True(t, domain.IsConflictError(err))
		providers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unreferenced provider deletes", func(t *testing.T) {
		svc, providers, _, subs := newTestService(t)
		provider := fixtures.Provider(principal.ID)

		providers.On("GetByID", ctx, mock.Anything, principal, provider.ID).Return(provider, nil)
		subs.On("CountByProvider", ctx, mock.Anything, provider.ID).Return(int64(0), nil)
		providers.On("Delete", ctx, mock.Anything, principal, provider.ID).Return(nil)

		require.NoError(t, svc.DeleteProvider(ctx, principal, provider.ID))
		providers.AssertExpectations(t)
	})

	t.Run("out of scope reads as not found", func(t *testing.T) {
		svc, providers, _, _ := newTestService(t)
		id := uuid.New()
		providers.On("GetByID", ctx, mock.Anything, principal, id).
			Return(nil, domain.NewNotFound(domain.ErrorCodeProviderNotFound, "provider"))

		err := svc.DeleteProvider(ctx, principal, id)
		require.Error(t, err)
		assert.True(t, domain.IsNotFoundError(err))
	})
}

func TestUpdateProvider(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{ID: uuid.New()}

	t.Run("renames an owned provider", func(t *testing.T) {
		svc, providers, _, _ := newTestService(t)
		provider := fixtures.Provider(principal.ID)

		providers.On("GetByID", ctx, mock.Anything, principal, provider.ID).Return(provider, nil)
		providers.On("Update", ctx, mock.Anything, mock.Anything).Return(nil)

		name := "Acme Video"
		updated, err := svc.UpdateProvider(ctx, principal, &ports.UpdateProviderRequest{
			ProviderID: provider.ID,
			Name:       &name,
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme Video", updated.Name)
	})

	t.Run("ownerless provider update is elevated-only", func(t *testing.T) {
		svc, providers, _, _ := newTestService(t)
		provider := fixtures.Provider(principal.ID)
		provider.OwnerID = nil

		providers.On("GetByID", ctx, mock.Anything, principal, provider.ID).Return(provider, nil)

		name := "Acme Video"
		_, err := svc.UpdateProvider(ctx, principal, &ports.UpdateProviderRequest{
			ProviderID: provider.ID,
			Name:       &name,
		})
		require.Error(t, err)
		assert.True(t, domain.IsNotFoundError(err))
		providers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateCycle(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{ID: uuid.New()}

	t.Run("valid definition persists", func(t *testing.T) {
		svc, _, cycles, _ := newTestService(t)
		cycles.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)

		cycle, err := svc.CreateCycle(ctx, principal, &ports.CreateBillingCycleRequest{
			Interval: 2,
			Unit:     domain.CycleUnitWeeks,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, cycle.Interval)
		assert.Equal(t, principal.ID, *cycle.OwnerID)
	})

	t.Run("non-positive interval is rejected", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.CreateCycle(ctx, principal, &ports.CreateBillingCycleRequest{
			Interval: 0,
			Unit:     domain.CycleUnitMonths,
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("duplicate definition surfaces as conflict", func(t *testing.T) {
		svc, _, cycles, _ := newTestService(t)
		cycles.On("Create", ctx, mock.Anything, mock.Anything).
			Return(domain.NewDomainError(domain.ErrorCodeCycleDuplicate, "a billing cycle with this interval and unit already exists"))

		_, err := svc.CreateCycle(ctx, principal, &ports.CreateBillingCycleRequest{
			Interval: 1,
			Unit:     domain.CycleUnitMonths,
		})
		require.Error(t, err)
		assert.True(t, domain.IsConflictError(err))
	})
}

func TestDeleteCycle(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{ID: uuid.New()}

	t.Run("blocked while referenced by subscriptions", func(t *testing.T) {
		svc, _, cycles, subs := newTestService(t)
		cycle := fixtures.MonthlyCycle()
		cycle.OwnerID = &principal.ID

		cycles.On("GetByID", ctx, mock.Anything, principal, cycle.ID).Return(cycle, nil)
		subs.On("CountByCycle", ctx, mock.Anything, cycle.ID).Return(int64(1), nil)

		err := svc.DeleteCycle(ctx, principal, cycle.ID)
		require.Error(t, err)
		assert.True(t, domain.IsConflictError(err))
		cycles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unreferenced cycle deletes", func(t *testing.T) {
		svc, _, cycles, subs := newTestService(t)
		cycle := fixtures.MonthlyCycle()
		cycle.OwnerID = &principal.ID

		cycles.On("GetByID", ctx, mock.Anything, principal, cycle.ID).Return(cycle, nil)
		subs.On("CountByCycle", ctx, mock.Anything, cycle.ID).Return(int64(0), nil)
		cycles.On("Delete", ctx, mock.Anything, principal, cycle.ID).Return(nil)

		require.NoError(t, svc.DeleteCycle(ctx, principal, cycle.ID))
	})

	t.Run("ownerless cycle mutation is elevated-only", func(t *testing.T) {
		svc, _, cycles, _ := newTestService(t)
		cycle := fixtures.MonthlyCycle()

		cycles.On("GetByID", ctx, mock.Anything, principal, cycle.ID).Return(cycle, nil)

		err := svc.DeleteCycle(ctx, principal, cycle.ID)
		require.Error(t, err)
		assert.True(t, domain.IsNotFoundError(err))
		cycles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("elevated principal deletes ownerless cycle", func(t *testing.T) {
		svc, _, cycles, subs := newTestService(t)
		admin := domain.Principal{ID: uuid.New(), Superuser: true}
		cycle := fixtures.MonthlyCycle()

		cycles.On("GetByID", ctx, mock.Anything, admin, cycle.ID).Return(cycle, nil)
		subs.On("CountByCycle", ctx, mock.Anything, cycle.ID).Return(int64(0), nil)
		cycles.On("Delete", ctx, mock.Anything, admin, cycle.ID).Return(nil)

		require.NoError(t, svc.DeleteCycle(ctx, admin, cycle.ID))
	})
}

package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// Service owns the reference data subscriptions hang off: providers and
// billing cycles. Deletion is blocked while a subscription still
// references the row.
type Service struct {
	db        ports.DBPort
	providers ports.ProviderRepository
	cycles    ports.BillingCycleRepository
	subs      ports.SubscriptionRepository
	logger    ports.Logger
	now       func() time.Time
}

func NewService(
	db ports.DBPort,
	providers ports.ProviderRepository,
	cycles ports.BillingCycleRepository,
	subs ports.SubscriptionRepository,
	logger ports.Logger,
) *Service {
	return &Service{
		db:        db,
		providers: providers,
		cycles:    cycles,
		subs:      subs,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateProvider validates and persists a provider. The acting principal
// becomes the owner unless an elevated principal assigns one explicitly.
func (s *Service) CreateProvider(ctx context.Context, principal domain.Principal, req *ports.CreateProviderRequest) (*domain.Provider, error) {
	owner := principal.OwnerRef()
	if principal.Elevated() && req.OwnerID != nil {
		owner = req.OwnerID
	}

	provider, err := domain.NewProvider(owner, req.Name, req.Category, req.Website, req.CancellationURL)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.providers.Create(ctx, tx, provider)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Provider created",
		ports.String("provider_id", provider.ID.String()),
		ports.String("name", provider.Name),
	)
	return provider, nil
}

// GetProvider returns a single provider in the principal's scope.
func (s *Service) GetProvider(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Provider, error) {
	var provider *domain.Provider
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		provider, err = s.providers.GetByID(ctx, tx, principal, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// UpdateProvider applies a partial provider update.
func (s *Service) UpdateProvider(ctx context.Context, principal domain.Principal, req *ports.UpdateProviderRequest) (*domain.Provider, error) {
	var provider *domain.Provider
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		provider, err = s.providers.GetByID(ctx, tx, principal, req.ProviderID)
		if err != nil {
			return err
		}
		// Ownerless rows are shared reference data; only elevated
		// principals may change them.
		if provider.OwnerID == nil && !principal.Elevated() {
			return domain.NewNotFound(domain.ErrorCodeProviderNotFound, "provider")
		}
		if req.Name != nil {
			if *req.Name == "" {
				return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "provider name is required")
			}
			provider.Name = *req.Name
		}
		if req.Category != nil {
			provider.Category = *req.Category
		}
		if req.Website != nil {
			provider.Website = *req.Website
		}
		if req.CancellationURL != nil {
			provider.CancellationURL = *req.CancellationURL
		}
		provider.UpdatedAt = s.now()
		return s.providers.Update(ctx, tx, provider)
	})
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// DeleteProvider removes a provider unless a subscription still
// references it.
func (s *Service) DeleteProvider(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		provider, err := s.providers.GetByID(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if provider.OwnerID == nil && !principal.Elevated() {
			return domain.NewNotFound(domain.ErrorCodeProviderNotFound, "provider")
		}
		inUse, err := s.subs.CountByProvider(ctx, tx, provider.ID)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return domain.NewDomainError(domain.ErrorCodeProviderInUse,
				"provider is referenced by existing subscriptions")
		}
		return s.providers.Delete(ctx, tx, principal, id)
	})
}

// ListProviders returns the providers in the principal's scope.
func (s *Service) ListProviders(ctx context.Context, principal domain.Principal) ([]*domain.Provider, error) {
	var providers []*domain.Provider
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		providers, err = s.providers.List(ctx, tx, principal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return providers, nil
}

// CreateCycle validates and persists a billing cycle. Duplicate
// (owner, interval, unit) definitions surface as a conflict.
func (s *Service) CreateCycle(ctx context.Context, principal domain.Principal, req *ports.CreateBillingCycleRequest) (*domain.BillingCycle, error) {
	owner := principal.OwnerRef()
	if principal.Elevated() && req.OwnerID != nil {
		owner = req.OwnerID
	}

	cycle, err := domain.NewBillingCycle(owner, req.Interval, req.Unit)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.cycles.Create(ctx, tx, cycle)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Billing cycle created",
		ports.String("cycle_id", cycle.ID.String()),
		ports.String("cycle", cycle.String()),
	)
	return cycle, nil
}

// GetCycle returns a single billing cycle in the principal's scope.
func (s *Service) GetCycle(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.BillingCycle, error) {
	var cycle *domain.BillingCycle
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		cycle, err = s.cycles.GetByID(ctx, tx, principal, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// DeleteCycle removes a billing cycle unless a subscription still
// references it.
func (s *Service) DeleteCycle(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		cycle, err := s.cycles.GetByID(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		if cycle.OwnerID == nil && !principal.Elevated() {
			return domain.NewNotFound(domain.ErrorCodeCycleNotFound, "billing cycle")
		}
		inUse, err := s.subs.CountByCycle(ctx, tx, cycle.ID)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return domain.NewDomainError(domain.ErrorCodeCycleInUse,
				"billing cycle is referenced by existing subscriptions")
		}
		return s.cycles.Delete(ctx, tx, principal, id)
	})
}

// ListCycles returns the billing cycles in the principal's scope.
func (s *Service) ListCycles(ctx context.Context, principal domain.Principal) ([]*domain.BillingCycle, error) {
	var cycles []*domain.BillingCycle
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		cycles, err = s.cycles.List(ctx, tx, principal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cycles, nil
}

package subscription

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
	"github.com/smpconsole/subscription-tracker/pkg/observability"
)

// CreateEvent records a renewal event against a subscription in the
// principal's scope. Amount and currency default to the subscription's
// cost when unset.
func (s *Service) CreateEvent(ctx context.Context, principal domain.Principal, req *ports.CreateRenewalEventRequest) (*domain.RenewalEvent, error) {
	var event *domain.RenewalEvent
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sub, err := s.subs.GetByID(ctx, tx, principal, req.SubscriptionID)
		if err != nil {
			return err
		}

		amount := req.Amount
		currency := req.Currency
		if amount.IsZero() && currency == "" {
			amount = sub.CostAmount
			currency = sub.CostCurrency
		}

		event, err = domain.NewRenewalEvent(sub.ID, req.RenewalDate, amount, currency)
		if err != nil {
			return err
		}
		event.IsProcessed = req.IsProcessed
		return s.events.Create(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// GetEvent returns a single renewal event in the principal's scope.
func (s *Service) GetEvent(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.RenewalEvent, error) {
	var event *domain.RenewalEvent
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		event, err = s.events.GetByID(ctx, tx, principal, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEvent applies a partial update to a renewal event. Setting
// IsProcessed marks the charge as settled.
func (s *Service) UpdateEvent(ctx context.Context, principal domain.Principal, req *ports.UpdateRenewalEventRequest) (*domain.RenewalEvent, error) {
	var event *domain.RenewalEvent
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		event, err = s.events.GetByID(ctx, tx, principal, req.EventID)
		if err != nil {
			return err
		}
		if req.RenewalDate != nil {
			event.RenewalDate = *req.RenewalDate
		}
		if req.Amount != nil {
			if req.Amount.Sign() < 0 {
				return domain.NewDomainError(domain.ErrorCodeValidationFailed, "renewal amount cannot be negative")
			}
			event.Amount = *req.Amount
		}
		if req.Currency != nil {
			event.Currency = *req.Currency
		}
		if req.IsProcessed != nil {
			event.IsProcessed = *req.IsProcessed
		}
		event.UpdatedAt = s.now()
		return s.events.Update(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// MarkEventProcessed flags a renewal event as charged.
func (s *Service) MarkEventProcessed(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.RenewalEvent, error) {
	processed := true
	event, err := s.UpdateEvent(ctx, principal, &ports.UpdateRenewalEventRequest{
		EventID:     id,
		IsProcessed: &processed,
	})
	if err != nil {
		return nil, err
	}
	observability.RecordRenewalProcessed()
	return event, nil
}

// DeleteEvent removes a renewal event in the principal's scope.
func (s *Service) DeleteEvent(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.events.Delete(ctx, tx, principal, id)
	})
}

// ListEvents returns renewal events on subscriptions the principal can
// see, ascending by renewal date.
func (s *Service) ListEvents(ctx context.Context, principal domain.Principal) ([]*domain.RenewalEvent, error) {
	var events []*domain.RenewalEvent
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		events, err = s.events.List(ctx, tx, principal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

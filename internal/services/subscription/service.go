package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
	"github.com/smpconsole/subscription-tracker/pkg/observability"
)

// historyDetailLimit caps the audit entries returned on the detail view.
const historyDetailLimit = 20

// Service owns the subscription aggregate: CRUD, lifecycle transitions,
// notification rules, renewal events and the audit trail.
type Service struct {
	db        ports.DBPort
	subs      ports.SubscriptionRepository
	providers ports.ProviderRepository
	cycles    ports.BillingCycleRepository
	rules     ports.NotificationRuleRepository
	events    ports.RenewalEventRepository
	history   ports.HistoryRepository
	logger    ports.Logger
	now       func() time.Time
}

func NewService(
	db ports.DBPort,
	subs ports.SubscriptionRepository,
	providers ports.ProviderRepository,
	cycles ports.BillingCycleRepository,
	rules ports.NotificationRuleRepository,
	events ports.RenewalEventRepository,
	history ports.HistoryRepository,
	logger ports.Logger,
) *Service {
	return &Service{
		db:        db,
		subs:      subs,
		providers: providers,
		cycles:    cycles,
		rules:     rules,
		events:    events,
		history:   history,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Detail is a subscription together with its recent audit trail and
// notification rules.
type Detail struct {
	Subscription *domain.Subscription
	History      []*domain.SubscriptionHistory
	Rules        []*domain.NotificationRule
}

// Create validates and persists a new subscription. The acting principal
// becomes the owner unless an elevated principal assigns one explicitly.
// A "created" audit entry is appended in the same transaction.
func (s *Service) Create(ctx context.Context, principal domain.Principal, req *ports.CreateSubscriptionRequest) (*domain.Subscription, error) {
	status := req.Status
	if status == "" {
		status = domain.SubscriptionStatusActive
	}
	if err := domain.ValidateSubscriptionFields(req.Name, req.CostCurrency, status, req.CostAmount); err != nil {
		return nil, err
	}
	if req.StartDate.IsZero() {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "start date is required")
	}

	owner := principal.OwnerRef()
	if principal.Elevated() && req.OwnerID != nil {
		owner = req.OwnerID
	}

	var sub *domain.Subscription
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.providers.GetByID(ctx, tx, principal, req.ProviderID); err != nil {
			return err
		}
		cycle, err := s.cycles.GetByID(ctx, tx, principal, req.BillingCycleID)
		if err != nil {
			return err
		}

		nextBilling := cycle.NextOccurrence(req.StartDate)
		if req.NextBillingDate != nil {
			nextBilling = *req.NextBillingDate
		}

		now := s.now()
		sub = &domain.Subscription{
			ID:              uuid.New(),
			OwnerID:         owner,
			Name:            req.Name,
			ProviderID:      req.ProviderID,
			CostAmount:      req.CostAmount,
			CostCurrency:    req.CostCurrency,
			BillingCycleID:  req.BillingCycleID,
			Cycle:           cycle,
			Status:          status,
			StartDate:       req.StartDate,
			NextBillingDate: nextBilling,
			Notes:           req.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.subs.Create(ctx, tx, sub); err != nil {
			return err
		}
		entry := domain.NewHistoryEntry(sub.ID, domain.HistoryEventCreated, "Subscription created")
		return s.history.Append(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	observability.RecordSubscriptionCreated()
	s.logger.Info("Subscription created",
		ports.String("subscription_id", sub.ID.String()),
		ports.String("name", sub.Name),
	)
	return sub, nil
}

// Get returns a single subscription in the principal's scope.
func (s *Service) Get(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error) {
	var sub *domain.Subscription
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		sub, err = s.subs.GetByID(ctx, tx, principal, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// GetDetail returns a subscription with its notification rules and the
// most recent audit entries.
func (s *Service) GetDetail(ctx context.Context, principal domain.Principal, id uuid.UUID) (*Detail, error) {
	detail := &Detail{}
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sub, err := s.subs.GetByID(ctx, tx, principal, id)
		if err != nil {
			return err
		}
		detail.Subscription = sub

		detail.History, err = s.history.ListBySubscription(ctx, tx, principal, id, historyDetailLimit)
		if err != nil {
			return err
		}

		rules, err := s.rules.List(ctx, tx, principal)
		if err != nil {
			return err
		}
		for _, rule := range rules {
			if rule.SubscriptionID == id {
				detail.Rules = append(detail.Rules, rule)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns the principal's subscriptions, filtered and ordered.
func (s *Service) List(ctx context.Context, principal domain.Principal, filter ports.SubscriptionFilter) ([]*domain.Subscription, error) {
	var subs []*domain.Subscription
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		subs, err = s.subs.List(ctx, tx, principal, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Update applies a partial update. The changed field set is computed
// against the stored snapshot; when non-empty an "updated" audit entry
// naming the fields is appended in the same transaction. Status changes
// are rejected here; lifecycle transitions go through Pause, Resume and
// Cancel so the audit trail stays accurate.
func (s *Service) Update(ctx context.Context, principal domain.Principal, req *ports.UpdateSubscriptionRequest) (*domain.Subscription, error) {
	var updated *domain.Subscription
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, err := s.subs.GetByIDForUpdate(ctx, tx, principal, req.SubscriptionID)
		if err != nil {
			return err
		}
		if req.Status != nil && *req.Status != current.Status {
			return domain.NewInvalidTransition("status changes must use pause, resume or cancel")
		}

		next := *current
		next.Cycle = current.Cycle
		if req.Name != nil {
			next.Name = *req.Name
		}
		if req.ProviderID != nil && *req.ProviderID != current.ProviderID {
			if _, err := s.providers.GetByID(ctx, tx, principal, *req.ProviderID); err != nil {
				return err
			}
			next.ProviderID = *req.ProviderID
		}
		if req.CostAmount != nil {
			next.CostAmount = *req.CostAmount
		}
		if req.CostCurrency != nil {
			next.CostCurrency = *req.CostCurrency
		}
		if req.BillingCycleID != nil && *req.BillingCycleID != current.BillingCycleID {
			cycle, err := s.cycles.GetByID(ctx, tx, principal, *req.BillingCycleID)
			if err != nil {
				return err
			}
			next.BillingCycleID = *req.BillingCycleID
			next.Cycle = cycle
		}
		if req.StartDate != nil {
			next.StartDate = *req.StartDate
		}
		if req.NextBillingDate != nil {
			next.NextBillingDate = *req.NextBillingDate
		}
		if req.CancellationDate != nil {
			next.CancellationDate = req.CancellationDate
		}
		if req.Notes != nil {
			next.Notes = *req.Notes
		}

		if err := domain.ValidateSubscriptionFields(next.Name, next.CostCurrency, next.Status, next.CostAmount); err != nil {
			return err
		}

		changed := domain.ChangedFields(current, &next)
		if len(changed) == 0 {
			updated = current
			return nil
		}

		next.UpdatedAt = s.now()
		if err := s.subs.Update(ctx, tx, &next); err != nil {
			return err
		}
		entry := domain.NewHistoryEntry(next.ID, domain.HistoryEventUpdated, domain.UpdateDescription(changed))
		if err := s.history.Append(ctx, tx, entry); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a subscription. Rules, renewal events and history rows
// go with it via the schema's cascade rules.
func (s *Service) Delete(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.subs.Delete(ctx, tx, principal, id)
	})
}

// Pause transitions an active subscription to paused.
func (s *Service) Pause(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error) {
	return s.transition(ctx, principal, id, func(sub *domain.Subscription) error {
		switch sub.Status {
		case domain.SubscriptionStatusCancelled:
			return domain.NewInvalidTransition("cannot pause a cancelled subscription")
		case domain.SubscriptionStatusPaused:
			return domain.NewInvalidTransition("subscription is already paused")
		}
		sub.Status = domain.SubscriptionStatusPaused
		return nil
	})
}

// Resume transitions a paused subscription back to active and recomputes
// the next billing date from the cycle so billing resumes in the future.
func (s *Service) Resume(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error) {
	return s.transition(ctx, principal, id, func(sub *domain.Subscription) error {
		if sub.Status != domain.SubscriptionStatusPaused {
			return domain.NewInvalidTransition("only paused subscriptions can be resumed")
		}
		sub.Status = domain.SubscriptionStatusActive
		sub.NextBillingDate = sub.Cycle.NextOccurrence(s.now())
		return nil
	})
}

// Cancel transitions a subscription to the terminal cancelled state,
// stamps the cancellation date and drops its unprocessed renewal events.
func (s *Service) Cancel(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error) {
	return s.transition(ctx, principal, id, func(sub *domain.Subscription) error {
		if sub.Status == domain.SubscriptionStatusCancelled {
			return domain.NewInvalidTransition("subscription is already cancelled")
		}
		sub.Status = domain.SubscriptionStatusCancelled
		now := s.now()
		sub.CancellationDate = &now
		return nil
	})
}

// transition runs a lifecycle change under a row lock. The mutation and
// its status_changed audit entry commit atomically; a rejected transition
// mutates nothing.
func (s *Service) transition(ctx context.Context, principal domain.Principal, id uuid.UUID, mutate func(*domain.Subscription) error) (*domain.Subscription, error) {
	var sub *domain.Subscription
	var from domain.SubscriptionStatus
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		sub, err = s.subs.GetByIDForUpdate(ctx, tx, principal, id)
		if err != nil {
			return err
		}

		from = sub.Status
		if err := mutate(sub); err != nil {
			return err
		}
		sub.UpdatedAt = s.now()

		if err := s.subs.Update(ctx, tx, sub); err != nil {
			return err
		}
		if sub.Status == domain.SubscriptionStatusCancelled {
			if err := s.events.DeleteUnprocessedBySubscription(ctx, tx, sub.ID); err != nil {
				return err
			}
		}

		description := "Status changed from " + string(from) + " to " + string(sub.Status)
		entry := domain.NewHistoryEntry(sub.ID, domain.HistoryEventStatusChanged, description)
		return s.history.Append(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	observability.RecordSubscriptionTransition(string(from), string(sub.Status))
	s.logger.Info("Subscription status changed",
		ports.String("subscription_id", sub.ID.String()),
		ports.String("status", string(sub.Status)),
	)
	return sub, nil
}

// ListHistory returns the audit trail for a subscription, newest first.
func (s *Service) ListHistory(ctx context.Context, principal domain.Principal, subscriptionID uuid.UUID, limit int32) ([]*domain.SubscriptionHistory, error) {
	if limit <= 0 {
		limit = historyDetailLimit
	}
	var entries []*domain.SubscriptionHistory
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sub, err := s.subs.GetByID(ctx, tx, principal, subscriptionID)
		if err != nil {
			return err
		}
		entries, err = s.history.ListBySubscription(ctx, tx, principal, sub.ID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

package subscription

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// CreateRule attaches a notification rule to a subscription in the
// principal's scope. At most one rule per (subscription, timing).
func (s *Service) CreateRule(ctx context.Context, principal domain.Principal, req *ports.CreateNotificationRuleRequest) (*domain.NotificationRule, error) {
	rule, err := domain.NewNotificationRule(req.SubscriptionID, req.Timing, req.Enabled)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.subs.GetByID(ctx, tx, principal, req.SubscriptionID); err != nil {
			return err
		}
		return s.rules.Create(ctx, tx, rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// GetRule returns a single notification rule in the principal's scope.
func (s *Service) GetRule(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.NotificationRule, error) {
	var rule *domain.NotificationRule
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		rule, err = s.rules.GetByID(ctx, tx, principal, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdateRule applies a partial update to a notification rule.
func (s *Service) UpdateRule(ctx context.Context, principal domain.Principal, req *ports.UpdateNotificationRuleRequest) (*domain.NotificationRule, error) {
	var rule *domain.NotificationRule
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		rule, err = s.rules.GetByID(ctx, tx, principal, req.RuleID)
		if err != nil {
			return err
		}
		if req.Timing != nil {
			if !req.Timing.IsValid() {
				return domain.NewDomainError(domain.ErrorCodeValidationFailed, "unknown notification timing")
			}
			rule.Timing = *req.Timing
		}
		if req.Enabled != nil {
			rule.Enabled = *req.Enabled
		}
		rule.UpdatedAt = s.now()
		return s.rules.Update(ctx, tx, rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule removes a notification rule in the principal's scope.
func (s *Service) DeleteRule(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.rules.Delete(ctx, tx, principal, id)
	})
}

// ListRules returns the notification rules on subscriptions the principal
// can see.
func (s *Service) ListRules(ctx context.Context, principal domain.Principal) ([]*domain.NotificationRule, error) {
	var rules []*domain.NotificationRule
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		rules, err = s.rules.List(ctx, tx, principal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// NotificationRuleRepository implements ports.NotificationRuleRepository
// on PostgreSQL. Ownership is resolved through the owning subscription.
type NotificationRuleRepository struct{}

func NewNotificationRuleRepository() *NotificationRuleRepository {
	return &NotificationRuleRepository{}
}

const notificationRuleColumns = `
	r.id, r.subscription_id, r.timing, r.enabled, r.created_at, r.updated_at`

func scanNotificationRule(row rowScanner) (*domain.NotificationRule, error) {
	var rule domain.NotificationRule
	err := row.Scan(
		&rule.ID, &rule.SubscriptionID, &rule.Timing, &rule.Enabled,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *NotificationRuleRepository) Create(ctx context.Context, tx ports.DBTX, rule *domain.NotificationRule) error {
	query := `
		INSERT INTO notification_rules (
			id, subscription_id, timing, enabled, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		rule.ID, rule.SubscriptionID, rule.Timing, rule.Enabled,
		rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDomainError(domain.ErrorCodeRuleDuplicate,
				"a notification rule with this timing already exists for the subscription")
		}
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to create notification rule", err)
	}
	return nil
}

func (r *NotificationRuleRepository) GetByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.NotificationRule, error) {
	args := []interface{}{id}
	scope, args := scopeOwner("s.owner_id", principal, args)
	query := `
		SELECT` + notificationRuleColumns + `
		FROM notification_rules r
		JOIN subscriptions s ON s.id = r.subscription_id
		WHERE r.id = $1` + scope

	rule, err := scanNotificationRule(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFound(domain.ErrorCodeRuleNotFound, "notification rule")
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to get notification rule", err)
	}
	return rule, nil
}

func (r *NotificationRuleRepository) Update(ctx context.Context, tx ports.DBTX, rule *domain.NotificationRule) error {
	query := `
		UPDATE notification_rules
		SET timing = $2, enabled = $3, updated_at = $4
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, rule.ID, rule.Timing, rule.Enabled, rule.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDomainError(domain.ErrorCodeRuleDuplicate,
				"a notification rule with this timing already exists for the subscription")
		}
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to update notification rule", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrorCodeRuleNotFound, "notification rule")
	}
	return nil
}

func (r *NotificationRuleRepository) Delete(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) error {
	args := []interface{}{id}
	scope, args := scopeOwner("s.owner_id", principal, args)
	query := `
		DELETE FROM notification_rules r
		USING subscriptions s
		WHERE s.id = r.subscription_id AND r.id = $1` + scope

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to delete notification rule", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrorCodeRuleNotFound, "notification rule")
	}
	return nil
}

func (r *NotificationRuleRepository) List(ctx context.Context, tx ports.DBTX, principal domain.Principal) ([]*domain.NotificationRule, error) {
	args := []interface{}{}
	scope, args := scopeOwner("s.owner_id", principal, args)
	query := `
		SELECT` + notificationRuleColumns + `
		FROM notification_rules r
		JOIN subscriptions s ON s.id = r.subscription_id
		WHERE 1=1` + scope + `
		ORDER BY r.created_at ASC`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list notification rules", err)
	}
	defer rows.Close()

	var rules []*domain.NotificationRule
	for rows.Next() {
		rule, err := scanNotificationRule(rows)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to scan notification rule", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list notification rules", err)
	}
	return rules, nil
}

func (r *NotificationRuleRepository) Count(ctx context.Context, tx ports.DBTX, principal domain.Principal) (int64, error) {
	args := []interface{}{}
	scope, args := scopeOwner("s.owner_id", principal, args)
	query := `
		SELECT COUNT(*)
		FROM notification_rules r
		JOIN subscriptions s ON s.id = r.subscription_id
		WHERE 1=1` + scope

	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to count notification rules", err)
	}
	return count, nil
}

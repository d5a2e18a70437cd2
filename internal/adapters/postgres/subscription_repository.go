package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// SubscriptionRepository implements ports.SubscriptionRepository on
// PostgreSQL. Every read hydrates the billing cycle in the same query.
type SubscriptionRepository struct{}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{}
}

const subscriptionColumns = `
	s.id, s.owner_id, s.name, s.provider_id, s.cost_amount, s.cost_currency,
	s.billing_cycle_id, s.status, s.start_date, s.next_billing_date,
	s.cancellation_date, s.notes, s.created_at, s.updated_at,
	c.id, c.owner_id, c.interval, c.unit, c.created_at, c.updated_at`

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var (
		sub        domain.Subscription
		cycle      domain.BillingCycle
		owner      uuid.NullUUID
		cycleOwner uuid.NullUUID
		cost       pgtype.Numeric
	)
	err := row.Scan(
		&sub.ID, &owner, &sub.Name, &sub.ProviderID, &cost, &sub.CostCurrency,
		&sub.BillingCycleID, &sub.Status, &sub.StartDate, &sub.NextBillingDate,
		&sub.CancellationDate, &sub.Notes, &sub.CreatedAt, &sub.UpdatedAt,
		&cycle.ID, &cycleOwner, &cycle.Interval, &cycle.Unit, &cycle.CreatedAt, &cycle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.OwnerID = uuidPtr(owner)
	sub.CostAmount = numericToDecimal(cost)
	cycle.OwnerID = uuidPtr(cycleOwner)
	sub.Cycle = &cycle
	return &sub, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, tx ports.DBTX, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, owner_id, name, provider_id, cost_amount, cost_currency,
			billing_cycle_id, status, start_date, next_billing_date,
			cancellation_date, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := tx.Exec(ctx, query,
		sub.ID, nullableUUID(sub.OwnerID), sub.Name, sub.ProviderID,
		decimalToNumeric(sub.CostAmount), sub.CostCurrency,
		sub.BillingCycleID, sub.Status, sub.StartDate, sub.NextBillingDate,
		sub.CancellationDate, sub.Notes, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to create subscription", err)
	}
	return nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error) {
	return r.getByID(ctx, tx, principal, id, false)
}

func (r *SubscriptionRepository) GetByIDForUpdate(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.Subscription, error) {
	return r.getByID(ctx, tx, principal, id, true)
}

func (r *SubscriptionRepository) getByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID, forUpdate bool) (*domain.Subscription, error) {
	args := []interface{}{id}
	scope, args := scopeOwner("s.owner_id", principal, args)
	query := `
		SELECT` + subscriptionColumns + `
		FROM subscriptions s
		JOIN billing_cycles c ON c.id = s.billing_cycle_id
		WHERE s.id = $1` + scope
	if forUpdate {
		query += ` FOR UPDATE OF s`
	}

	sub, err := scanSubscription(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFound(domain.ErrorCodeSubNotFound, "subscription")
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to get subscription", err)
	}
	return sub, nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, tx ports.DBTX, sub *domain.Subscription) error {
	query := `
		UPDATE subscriptions
		SET name = $2, provider_id = $3, cost_amount = $4, cost_currency = $5,
			billing_cycle_id = $6, status = $7, start_date = $8,
			next_billing_date = $9, cancellation_date = $10, notes = $11,
			updated_at = $12
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		sub.ID, sub.Name, sub.ProviderID,
		decimalToNumeric(sub.CostAmount), sub.CostCurrency,
		sub.BillingCycleID, sub.Status, sub.StartDate, sub.NextBillingDate,
		sub.CancellationDate, sub.Notes, sub.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to update subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrorCodeSubNotFound, "subscription")
	}
	return nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) error {
	args := []interface{}{id}
	scope, args := scopeOwner("subscriptions.owner_id", principal, args)
	query := `DELETE FROM subscriptions WHERE id = $1` + scope

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to delete subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrorCodeSubNotFound, "subscription")
	}
	return nil
}

// orderClause maps the requested ordering onto a whitelisted ORDER BY.
// Unknown values fall back to name ascending.
func orderClause(orderBy string) string {
	switch orderBy {
	case "name":
		return "s.name ASC"
	case "-name":
		return "s.name DESC"
	case "cost_amount":
		return "s.cost_amount ASC"
	case "-cost_amount":
		return "s.cost_amount DESC"
	default:
		return "s.name ASC"
	}
}

func (r *SubscriptionRepository) List(ctx context.Context, tx ports.DBTX, principal domain.Principal, filter ports.SubscriptionFilter) ([]*domain.Subscription, error) {
	args := []interface{}{}
	query := `
		SELECT` + subscriptionColumns + `
		FROM subscriptions s
		JOIN billing_cycles c ON c.id = s.billing_cycle_id
		WHERE 1=1`

	var scope string
	scope, args = scopeOwner("s.owner_id", principal, args)
	query += scope

	if filter.ProviderID != nil {
		args = append(args, *filter.ProviderID)
		query += fmt.Sprintf(" AND s.provider_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND s.status = $%d", len(args))
	}
	if filter.CostMin != nil {
		args = append(args, decimalToNumeric(*filter.CostMin))
		query += fmt.Sprintf(" AND s.cost_amount >= $%d", len(args))
	}
	if filter.CostMax != nil {
		args = append(args, decimalToNumeric(*filter.CostMax))
		query += fmt.Sprintf(" AND s.cost_amount <= $%d", len(args))
	}
	query += " ORDER BY " + orderClause(filter.OrderBy)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list subscriptions", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to scan subscription", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list subscriptions", err)
	}
	return subs, nil
}

func (r *SubscriptionRepository) Count(ctx context.Context, tx ports.DBTX, principal domain.Principal) (int64, error) {
	args := []interface{}{}
	scope, args := scopeOwner("s.owner_id", principal, args)
	query := `SELECT COUNT(*) FROM subscriptions s WHERE 1=1` + scope

	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to count subscriptions", err)
	}
	return count, nil
}

func (r *SubscriptionRepository) CountByProvider(ctx context.Context, tx ports.DBTX, providerID uuid.UUID) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE provider_id = $1`, providerID).Scan(&count)
	if err != nil {
		return 0, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to count subscriptions by provider", err)
	}
	return count, nil
}

func (r *SubscriptionRepository) CountByCycle(ctx context.Context, tx ports.DBTX, cycleID uuid.UUID) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE billing_cycle_id = $1`, cycleID).Scan(&count)
	if err != nil {
		return 0, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to count subscriptions by cycle", err)
	}
	return count, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// RenewalEventRepository implements ports.RenewalEventRepository on
// PostgreSQL. Ownership is resolved through the owning subscription.
type RenewalEventRepository struct{}

func NewRenewalEventRepository() *RenewalEventRepository {
	return &RenewalEventRepository{}
}

const renewalEventColumns = `
	e.id, e.subscription_id, e.renewal_date, e.amount, e.currency,
	e.is_processed, e.created_at, e.updated_at`

func scanRenewalEvent(row rowScanner) (*domain.RenewalEvent, error) {
	var (
		event  domain.RenewalEvent
		amount pgtype.Numeric
	)
	err := row.Scan(
		&event.ID, &event.SubscriptionID, &event.RenewalDate, &amount,
		&event.Currency, &event.IsProcessed, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Amount = numericToDecimal(amount)
	return &event, nil
}

func (r *RenewalEventRepository) Create(ctx context.Context, tx ports.DBTX, event *domain.RenewalEvent) error {
	query := `
		INSERT INTO renewal_events (
			id, subscription_id, renewal_date, amount, currency,
			is_processed, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		event.ID, event.SubscriptionID, event.RenewalDate,
		decimalToNumeric(event.Amount), event.Currency,
		event.IsProcessed, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to create renewal event", err)
	}
	return nil
}

func (r *RenewalEventRepository) GetByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.RenewalEvent, error) {
	args := []interface{}{id}
	scope, args := scopeOwner("s.owner_id", principal, args)
	query := `
		SELECT` + renewalEventColumns + `
		FROM renewal_events e
		JOIN subscriptions s ON s.id = e.subscription_id
		WHERE e.id = $1` + scope

	event, err := scanRenewalEvent(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFound(domain.ErrorCodeEventNotFound, "renewal event")
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to get renewal event", err)
	}
	return event, nil
}

func (r *RenewalEventRepository) Update(ctx context.Context, tx ports.DBTX, event *domain.RenewalEvent) error {
	query := `
		UPDATE renewal_events
		SET renewal_date = $2, amount = $3, currency = $4, is_processed = $5,
			updated_at = $6
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		event.ID, event.RenewalDate, decimalToNumeric(event.Amount),
		event.Currency, event.IsProcessed, event.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to update renewal event", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrorCodeEventNotFound, "renewal event")
	}
	return nil
}

func (r *RenewalEventRepository) Delete(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) error {
	args := []interface{}{id}
	scope, args := scopeOwner("s.owner_id", principal, args)
	query := `
		DELETE FROM renewal_events e
		USING subscriptions s
		WHERE s.id = e.subscription_id AND e.id = $1` + scope

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to delete renewal event", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrorCodeEventNotFound, "renewal event")
	}
	return nil
}

func (r *RenewalEventRepository) List(ctx context.Context, tx ports.DBTX, principal domain.Principal) ([]*domain.RenewalEvent, error) {
	args := []interface{}{}
	scope, args := scopeOwner("s.owner_id", principal, args)
	query := `
		SELECT` + renewalEventColumns + `
		FROM renewal_events e
		JOIN subscriptions s ON s.id = e.subscription_id
		WHERE 1=1` + scope + `
		ORDER BY e.renewal_date ASC`

	return r.queryEvents(ctx, tx, query, args)
}

func (r *RenewalEventRepository) ListUnprocessedDueBefore(ctx context.Context, tx ports.DBTX, principal domain.Principal, before time.Time, limit int32) ([]*domain.RenewalEvent, error) {
	args := []interface{}{before}
	scope, args := scopeOwner("s.owner_id", principal, args)
	args = append(args, limit)
	query := `
		SELECT` + renewalEventColumns + `
		FROM renewal_events e
		JOIN subscriptions s ON s.id = e.subscription_id
		WHERE e.is_processed = FALSE AND e.renewal_date <= $1` + scope + `
		ORDER BY e.renewal_date ASC` +
		fmt.Sprintf(" LIMIT $%d", len(args))

	return r.queryEvents(ctx, tx, query, args)
}

func (r *RenewalEventRepository) queryEvents(ctx context.Context, tx ports.DBTX, query string, args []interface{}) ([]*domain.RenewalEvent, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list renewal events", err)
	}
	defer rows.Close()

	var events []*domain.RenewalEvent
	for rows.Next() {
		event, err := scanRenewalEvent(rows)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to scan renewal event", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list renewal events", err)
	}
	return events, nil
}

func (r *RenewalEventRepository) DeleteUnprocessedBySubscription(ctx context.Context, tx ports.DBTX, subscriptionID uuid.UUID) error {
	query := `DELETE FROM renewal_events WHERE subscription_id = $1 AND is_processed = FALSE`
	if _, err := tx.Exec(ctx, query, subscriptionID); err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to delete unprocessed renewal events", err)
	}
	return nil
}

func (r *RenewalEventRepository) CountUnprocessed(ctx context.Context, tx ports.DBTX, principal domain.Principal) (int64, error) {
	args := []interface{}{}
	scope, args := scopeOwner("s.owner_id", principal, args)
	query := `
		SELECT COUNT(*)
		FROM renewal_events e
		JOIN subscriptions s ON s.id = e.subscription_id
		WHERE e.is_processed = FALSE` + scope

	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to count unprocessed renewal events", err)
	}
	return count, nil
}

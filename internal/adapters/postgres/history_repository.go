package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// HistoryRepository implements ports.HistoryRepository on PostgreSQL.
// The audit trail is append-only; there are no update or delete queries.
type HistoryRepository struct{}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Append(ctx context.Context, tx ports.DBTX, entry *domain.SubscriptionHistory) error {
	query := `
		INSERT INTO subscription_history (
			id, subscription_id, event_type, description, created_at
		) VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query,
		entry.ID, entry.SubscriptionID, entry.EventType, entry.Description,
		entry.CreatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to append history entry", err)
	}
	return nil
}

func (r *HistoryRepository) ListBySubscription(ctx context.Context, tx ports.DBTX, principal domain.Principal, subscriptionID uuid.UUID, limit int32) ([]*domain.SubscriptionHistory, error) {
	args := []interface{}{subscriptionID}
	scope, args := scopeOwner("s.owner_id", principal, args)
	args = append(args, limit)
	query := `
		SELECT h.id, h.subscription_id, h.event_type, h.description, h.created_at
		FROM subscription_history h
		JOIN subscriptions s ON s.id = h.subscription_id
		WHERE h.subscription_id = $1` + scope + `
		ORDER BY h.created_at DESC` +
		fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list history entries", err)
	}
	defer rows.Close()

	var entries []*domain.SubscriptionHistory
	for rows.Next() {
		var entry domain.SubscriptionHistory
		err := rows.Scan(&entry.ID, &entry.SubscriptionID, &entry.EventType,
			&entry.Description, &entry.CreatedAt)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to scan history entry", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list history entries", err)
	}
	return entries, nil
}

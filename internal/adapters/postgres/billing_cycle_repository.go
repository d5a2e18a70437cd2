package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// BillingCycleRepository implements ports.BillingCycleRepository on
// PostgreSQL.
type BillingCycleRepository struct{}

func NewBillingCycleRepository() *BillingCycleRepository {
	return &BillingCycleRepository{}
}

const billingCycleColumns = `
	c.id, c.owner_id, c.interval, c.unit, c.created_at, c.updated_at`

func scanBillingCycle(row rowScanner) (*domain.BillingCycle, error) {
	var (
		cycle domain.BillingCycle
		owner uuid.NullUUID
	)
	err := row.Scan(
		&cycle.ID, &owner, &cycle.Interval, &cycle.Unit,
		&cycle.CreatedAt, &cycle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	cycle.OwnerID = uuidPtr(owner)
	return &cycle, nil
}

func (r *BillingCycleRepository) Create(ctx context.Context, tx ports.DBTX, cycle *domain.BillingCycle) error {
	query := `
		INSERT INTO billing_cycles (
			id, owner_id, interval, unit, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		cycle.ID, nullableUUID(cycle.OwnerID), cycle.Interval, cycle.Unit,
		cycle.CreatedAt, cycle.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDomainError(domain.ErrorCodeCycleDuplicate,
				"a billing cycle with this interval and unit already exists")
		}
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to create billing cycle", err)
	}
	return nil
}

func (r *BillingCycleRepository) GetByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.BillingCycle, error) {
	args := []interface{}{id}
	scope, args := scopeOwnerShared("c.owner_id", principal, args)
	query := `
		SELECT` + billingCycleColumns + `
		FROM billing_cycles c
		WHERE c.id = $1` + scope

	cycle, err := scanBillingCycle(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFound(domain.ErrorCodeCycleNotFound, "billing cycle")
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to get billing cycle", err)
	}
	return cycle, nil
}

func (r *BillingCycleRepository) Delete(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) error {
	args := []interface{}{id}
	scope, args := scopeOwner("billing_cycles.owner_id", principal, args)
	query := `DELETE FROM billing_cycles WHERE id = $1` + scope

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to delete billing cycle", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrorCodeCycleNotFound, "billing cycle")
	}
	return nil
}

func (r *BillingCycleRepository) List(ctx context.Context, tx ports.DBTX, principal domain.Principal) ([]*domain.BillingCycle, error) {
	args := []interface{}{}
	scope, args := scopeOwnerShared("c.owner_id", principal, args)
	query := `
		SELECT` + billingCycleColumns + `
		FROM billing_cycles c
		WHERE 1=1` + scope + `
		ORDER BY c.unit ASC, c.interval ASC`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list billing cycles", err)
	}
	defer rows.Close()

	var cycles []*domain.BillingCycle
	for rows.Next() {
		cycle, err := scanBillingCycle(rows)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to scan billing cycle", err)
		}
		cycles = append(cycles, cycle)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list billing cycles", err)
	}
	return cycles, nil
}

func (r *BillingCycleRepository) Count(ctx context.Context, tx ports.DBTX, principal domain.Principal) (int64, error) {
	args := []interface{}{}
	scope, args := scopeOwnerShared("c.owner_id", principal, args)
	query := `SELECT COUNT(*) FROM billing_cycles c WHERE 1=1` + scope

	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to count billing cycles", err)
	}
	return count, nil
}

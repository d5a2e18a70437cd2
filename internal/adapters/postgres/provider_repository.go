package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/smpconsole/subscription-tracker/internal/domain"
	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
)

// ProviderRepository implements ports.ProviderRepository on PostgreSQL.
type ProviderRepository struct{}

func NewProviderRepository() *ProviderRepository {
	return &ProviderRepository{}
}

const providerColumns = `
	p.id, p.owner_id, p.name, p.category, p.website, p.cancellation_url,
	p.created_at, p.updated_at`

func scanProvider(row rowScanner) (*domain.Provider, error) {
	var (
		provider domain.Provider
		owner    uuid.NullUUID
	)
	err := row.Scan(
		&provider.ID, &owner, &provider.Name, &provider.Category,
		&provider.Website, &provider.CancellationURL,
		&provider.CreatedAt, &provider.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	provider.OwnerID = uuidPtr(owner)
	return &provider, nil
}

func (r *ProviderRepository) Create(ctx context.Context, tx ports.DBTX, provider *domain.Provider) error {
	query := `
		INSERT INTO providers (
			id, owner_id, name, category, website, cancellation_url,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		provider.ID, nullableUUID(provider.OwnerID), provider.Name,
		provider.Category, provider.Website, provider.CancellationURL,
		provider.CreatedAt, provider.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to create provider", err)
	}
	return nil
}

func (r *ProviderRepository) GetByID(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) (*domain.Provider, error) {
	args := []interface{}{id}
	scope, args := scopeOwnerShared("p.owner_id", principal, args)
	query := `
		SELECT` + providerColumns + `
		FROM providers p
		WHERE p.id = $1` + scope

	provider, err := scanProvider(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFound(domain.ErrorCodeProviderNotFound, "provider")
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to get provider", err)
	}
	return provider, nil
}

func (r *ProviderRepository) Update(ctx context.Context, tx ports.DBTX, provider *domain.Provider) error {
	query := `
		UPDATE providers
		SET name = $2, category = $3, website = $4, cancellation_url = $5,
			updated_at = $6
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		provider.ID, provider.Name, provider.Category, provider.Website,
		provider.CancellationURL, provider.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to update provider", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrorCodeProviderNotFound, "provider")
	}
	return nil
}

func (r *ProviderRepository) Delete(ctx context.Context, tx ports.DBTX, principal domain.Principal, id uuid.UUID) error {
	args := []interface{}{id}
	scope, args := scopeOwner("providers.owner_id", principal, args)
	query := `DELETE FROM providers WHERE id = $1` + scope

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "failed to delete provider", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.ErrorCodeProviderNotFound, "provider")
	}
	return nil
}

func (r *ProviderRepository) List(ctx context.Context, tx ports.DBTX, principal domain.Principal) ([]*domain.Provider, error) {
	args := []interface{}{}
	scope, args := scopeOwnerShared("p.owner_id", principal, args)
	query := `
		SELECT` + providerColumns + `
		FROM providers p
		WHERE 1=1` + scope + `
		ORDER BY p.name ASC`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list providers", err)
	}
	defer rows.Close()

	var providers []*domain.Provider
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to scan provider", err)
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to list providers", err)
	}
	return providers, nil
}

func (r *ProviderRepository) Count(ctx context.Context, tx ports.DBTX, principal domain.Principal) (int64, error) {
	args := []interface{}{}
	scope, args := scopeOwnerShared("p.owner_id", principal, args)
	query := `SELECT COUNT(*) FROM providers p WHERE 1=1` + scope

	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to count providers", err)
	}
	return count, nil
}

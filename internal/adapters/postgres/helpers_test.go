package postgres

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smpconsole/subscription-tracker/internal/domain"
)

func TestScopeOwner(t *testing.T) {
	userID := uuid.New()

	t.Run("elevated principal adds no predicate", func(t *testing.T) {
		principal := domain.Principal{ID: userID, Superuser: true}
		clause, args := scopeOwner("s.owner_id", principal, []interface{}{uuid.New()})
		assert.Empty(t, clause)
		assert.Len(t, args, 1)
	})

	t.Run("regular principal is pinned to their rows", func(t *testing.T) {
		principal := domain.Principal{ID: userID}
		clause, args := scopeOwner("s.owner_id", principal, []interface{}{uuid.New()})
		assert.Equal(t, " AND s.owner_id = $2", clause)
		require.Len(t, args, 2)
		assert.Equal(t, userID, args[1])
	})

	t.Run("placeholder tracks argument position", func(t *testing.T) {
		principal := domain.Principal{ID: userID}
		clause, args := scopeOwner("owner_id", principal, nil)
		assert.Equal(t, " AND owner_id = $1", clause)
		assert.Len(t, args, 1)
	})
}

func TestScopeOwnerShared(t *testing.T) {
	userID := uuid.New()

	t.Run("elevated principal adds no predicate", func(t *testing.T) {
		principal := domain.Principal{ID: userID, Superuser: true}
		clause, args := scopeOwnerShared("p.owner_id", principal, []interface{}{uuid.New()})
		assert.Empty(t, clause)
		assert.Len(t, args, 1)
	})

	t.Run("regular principal also sees ownerless rows", func(t *testing.T) {
		principal := domain.Principal{ID: userID}
		clause, args := scopeOwnerShared("p.owner_id", principal, []interface{}{uuid.New()})
		assert.Equal(t, " AND (p.owner_id = $2 OR p.owner_id IS NULL)", clause)
		require.Len(t, args, 2)
		assert.Equal(t, userID, args[1])
	})
}

func TestDecimalNumericRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "9.99", "1234.5678", "-42.01", "0.0011"} {
		d, err := decimal.NewFromString(raw)
		require.NoError(t, err)
		assert.True(t, d.Equal(numericToDecimal(decimalToNumeric(d))), raw)
	}
}

func TestNumericToDecimalInvalid(t *testing.T) {
	var d = numericToDecimal(decimalToNumeric(decimal.Zero))
	assert.True(t, d.IsZero())
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, isNoRows(pgx.ErrNoRows))
	assert.False(t, isNoRows(errors.New("boom")))

	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestNullableUUID(t *testing.T) {
	assert.False(t, nullableUUID(nil).Valid)
	assert.Nil(t, uuidPtr(nullableUUID(nil)))

	id := uuid.New()
	wrapped := nullableUUID(&id)
	require.True(t, wrapped.Valid)
	assert.Equal(t, id, wrapped.UUID)

	back := uuidPtr(wrapped)
	require.NotNil(t, back)
	assert.Equal(t, id, *back)
}

package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/smpconsole/subscription-tracker/internal/domain"
)

const uniqueViolationCode = "23505"

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// isNoRows reports whether err means the query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// scopeOwner appends an ownership predicate for non-elevated principals.
// The column must be qualified with its table alias. Elevated principals
// see every row, so no predicate is added for them.
func scopeOwner(column string, principal domain.Principal, args []interface{}) (string, []interface{}) {
	if principal.Elevated() {
		return "", args
	}
	args = append(args, principal.ID)
	return fmt.Sprintf(" AND %s = $%d", column, len(args)), args
}

// scopeOwnerShared is scopeOwner for tables that mix owned rows with
// shared reference rows. Rows with a NULL owner are visible to every
// principal; non-elevated principals additionally see their own rows.
func scopeOwnerShared(column string, principal domain.Principal, args []interface{}) (string, []interface{}) {
	if principal.Elevated() {
		return "", args
	}
	args = append(args, principal.ID)
	return fmt.Sprintf(" AND (%s = $%d OR %s IS NULL)", column, len(args), column), args
}

// decimalToNumeric converts a decimal amount into the pgtype numeric
// representation used for cost columns.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   d.Coefficient(),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

// numericToDecimal converts a scanned numeric column back into a decimal.
// NULL and NaN both collapse to zero; cost columns are NOT NULL so neither
// occurs in practice.
func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// nullableUUID adapts an optional owner reference for a nullable uuid
// column.
func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// uuidPtr converts a scanned nullable uuid back into an optional reference.
func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	u := id.UUID
	return &u
}

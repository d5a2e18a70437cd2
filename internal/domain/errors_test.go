package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(ErrorCodeSubNotFound, "subscription not found")
	assert.Equal(t, "SUB_NOT_FOUND: subscription not found", err.Error())

	wrapped := WrapError(ErrorCodeDatabaseError, "query failed", errors.New("connection reset"))
	assert.Contains(t, wrapped.Error(), "INTERNAL_DATABASE_ERROR")
	assert.Contains(t, wrapped.Error(), "connection reset")
}

func TestDomainError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	wrapped := WrapError(ErrorCodeInternalError, "wrapper", inner)
	assert.True(t, errors.Is(wrapped, inner))
}

func TestIsDomainError_ThroughWrapping(t *testing.T) {
	err := NewInvalidTransition("subscription is already paused")
	chained := fmt.Errorf("pause: %w", err)

	assert.True(t, IsDomainError(chained, ErrorCodeSubInvalidTransition))
	assert.True(t, IsInvalidTransition(chained))
	assert.Equal(t, ErrorCodeSubInvalidTransition, GetErrorCode(chained))
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsNotFoundError(NewNotFound(ErrorCodeProviderNotFound, "provider")))
	assert.True(t, IsNotFoundError(NewNotFound(ErrorCodeEventNotFound, "renewal event")))
	assert.False(t, IsNotFoundError(NewInvalidTransition("nope")))

	assert.True(t, IsValidationError(NewDomainError(ErrorCodeCycleInvalidInterval, "bad interval")))
	assert.False(t, IsValidationError(NewNotFound(ErrorCodeSubNotFound, "subscription")))

	assert.True(t, IsConflictError(NewDomainError(ErrorCodeProviderInUse, "referenced")))
	assert.False(t, IsConflictError(errors.New("plain error")))

	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain error")))
}

func TestWithDetail(t *testing.T) {
	err := NewDomainError(ErrorCodeCurrencyUnknown, "unknown").WithDetail("currency", "JPY")
	assert.Equal(t, "JPY", err.Details["currency"])
}

package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Billing cycle validation (CYCLE_*)
	ErrorCodeCycleInvalidInterval ErrorCode = "CYCLE_INVALID_INTERVAL"
	ErrorCodeCycleInvalidUnit     ErrorCode = "CYCLE_INVALID_UNIT"
	ErrorCodeCycleDuplicate       ErrorCode = "CYCLE_DUPLICATE"
	ErrorCodeCycleInUse           ErrorCode = "CYCLE_IN_USE"
	ErrorCodeCycleNotFound        ErrorCode = "CYCLE_NOT_FOUND"

	// Currency conversion (CURRENCY_*)
	ErrorCodeCurrencyUnknown     ErrorCode = "CURRENCY_UNKNOWN"
	ErrorCodeCurrencyInvalidRate ErrorCode = "CURRENCY_INVALID_RATE"

	// Subscription lifecycle (SUB_*)
	ErrorCodeSubNotFound          ErrorCode = "SUB_NOT_FOUND"
	ErrorCodeSubInvalidTransition ErrorCode = "SUB_INVALID_TRANSITION"

	// Provider (PROVIDER_*)
	ErrorCodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	ErrorCodeProviderInUse    ErrorCode = "PROVIDER_IN_USE"

	// Notification rules (RULE_*)
	ErrorCodeRuleNotFound  ErrorCode = "RULE_NOT_FOUND"
	ErrorCodeRuleDuplicate ErrorCode = "RULE_DUPLICATE"

	// Renewal events (EVENT_*)
	ErrorCodeEventNotFound ErrorCode = "EVENT_NOT_FOUND"

	// Validation (VALIDATION_*)
	ErrorCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"

	// Internal (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// NewInvalidTransition creates a lifecycle rejection carrying the
// human-readable reason shown to the caller.
func NewInvalidTransition(reason string) *DomainError {
	return NewDomainError(ErrorCodeSubInvalidTransition, reason)
}

// NewNotFound creates a not-found error for the given entity code. Access
// outside the caller's ownership scope reports the same error, so a caller
// cannot distinguish "does not exist" from "not yours".
func NewNotFound(code ErrorCode, entity string) *DomainError {
	return NewDomainError(code, entity+" not found")
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeSubNotFound ||
		code == ErrorCodeProviderNotFound ||
		code == ErrorCodeCycleNotFound ||
		code == ErrorCodeRuleNotFound ||
		code == ErrorCodeEventNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationMissingField ||
		code == ErrorCodeCycleInvalidInterval ||
		code == ErrorCodeCycleInvalidUnit ||
		code == ErrorCodeCurrencyInvalidRate
}

// IsConflictError checks if an error represents a uniqueness or
// referential-integrity conflict
func IsConflictError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeCycleDuplicate ||
		code == ErrorCodeCycleInUse ||
		code == ErrorCodeProviderInUse ||
		code == ErrorCodeRuleDuplicate
}

// IsInvalidTransition checks if an error is a lifecycle rejection
func IsInvalidTransition(err error) bool {
	return GetErrorCode(err) == ErrorCodeSubInvalidTransition
}

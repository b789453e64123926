package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a DomainError for transport-level mapping.
type ErrorCode string

const (
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotAuthenticated  ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeOutOfStock        ErrorCode = "OUT_OF_STOCK"
	ErrCodeAlreadyProcessed  ErrorCode = "ALREADY_PROCESSED"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeInvalidSignature  ErrorCode = "INVALID_SIGNATURE"
	ErrCodeConflict          ErrorCode = "CONFLICT"
)

// DomainError is the error type every engine-level failure is expressed as.
// Handlers map Code to an HTTP status; nothing engine-level escapes untyped.
type DomainError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError reports missing or malformed user input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: ErrCodeValidation, Message: message}
}

// NewNotAuthenticatedError reports the absence of a resolvable customer session.
func NewNotAuthenticatedError(message string) *DomainError {
	return &DomainError{Code: ErrCodeNotAuthenticated, Message: message}
}

// NewForbiddenError reports an operation on a resource the caller does not own.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Code: ErrCodeForbidden, Message: message}
}

// NewNotFoundError reports a missing entity by type and identifier.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewOutOfStockError reports that a cylinder's stock is exhausted.
func NewOutOfStockError(cylinderID string) *DomainError {
	return &DomainError{Code: ErrCodeOutOfStock, Message: fmt.Sprintf("cylinder %s is out of stock", cylinderID)}
}

// NewAlreadyProcessedError reports a transition attempted on a booking that has
// already left the expected source state (double submit, stale UI, duplicate webhook).
func NewAlreadyProcessedError(orderID string) *DomainError {
	return &DomainError{Code: ErrCodeAlreadyProcessed, Message: fmt.Sprintf("order %s has already been processed", orderID)}
}

// NewInvalidTransitionError reports a transition the status machine does not admit.
func NewInvalidTransitionError(from, to string) *DomainError {
	return &DomainError{Code: ErrCodeInvalidTransition, Message: fmt.Sprintf("cannot transition from %q to %q", from, to)}
}

// NewInvalidSignatureError reports a webhook body whose HMAC does not match.
func NewInvalidSignatureError() *DomainError {
	return &DomainError{Code: ErrCodeInvalidSignature, Message: "webhook signature verification failed"}
}

// NewConflictError reports a write lost to a concurrent modification.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: ErrCodeConflict, Message: message}
}

// CodeOf returns the DomainError code of err, or empty if err is not a DomainError.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrBlocked       = errors.New("source address blocked")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrTransaction   = errors.New("transaction failure")
)

// AppError carries an HTTP status and a machine-readable code alongside the
// human message. Programmatic callers branch on Code; admin surfaces show
// Message.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, ErrInvalidInput)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, "CONFLICT", message, ErrConflict)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

// Blocked signals that the caller's IP is over the failed-attempt threshold.
// Distinct from Unauthorized: the remediation is waiting out the window, not
// fixing the credential.
func Blocked(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, "BLOCKED", message, ErrBlocked)
}

func RateLimited(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, "RATE_LIMITED", message, ErrRateLimited)
}

// TransferLimitExceeded is a Forbidden variant so callers can distinguish a
// cooldown rejection from a status rejection.
func TransferLimitExceeded(message string) *AppError {
	return NewAppError(http.StatusForbidden, "TRANSFER_LIMIT_EXCEEDED", message, ErrForbidden)
}

// TransactionFailure wraps a store error from a multi-row mutation. The whole
// operation rolled back, so a retry is safe.
func TransactionFailure(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "TRANSACTION_FAILURE", "operation rolled back, safe to retry", errors.Join(ErrTransaction, err))
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL", "internal server error", err)
}

package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Escrow & Payment Protocol (ESC) ----
//
// Every mutating operation fails with exactly one of these kinds, and every
// failure guarantees no state was mutated: the enclosing transaction rolls
// back. Callers may retry after correcting input.

// ErrInvalidInput covers non-positive amounts, unsupported currencies,
// missing required text and out-of-range percentages or rates.
func ErrInvalidInput(message string) *AppError {
	return New("ESC_001", message, http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("ESC_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrUnauthorized(message string) *AppError {
	return New("ESC_003", message, http.StatusForbidden)
}

// ErrInvalidState indicates an operation attempted from a lifecycle state
// that does not permit it (e.g. completing a non-funded escrow).
func ErrInvalidState(message string) *AppError {
	return New("ESC_004", message, http.StatusConflict)
}

func ErrDeadlineViolation(message string) *AppError {
	return New("ESC_005", message, http.StatusUnprocessableEntity)
}

// ErrTransferFailure indicates the underlying value movement failed
// (insufficient balance, rejected pull). The whole operation was rolled back.
func ErrTransferFailure(message string) *AppError {
	return New("ESC_006", message, http.StatusPaymentRequired)
}

// ErrDuplicateID indicates a derived identifier collided with an existing
// entity. Existing entities are never overwritten.
func ErrDuplicateID() *AppError {
	return New("ESC_007", "Derived identifier already exists", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns an ESC_001-style error for malformed request payloads.
func Validation(message string) *AppError {
	return New("ESC_001", message, http.StatusBadRequest)
}

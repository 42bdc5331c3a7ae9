package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses and consumer decisions.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Retryable  bool   `json:"-"` // Redelivery may succeed
	Fatal      bool   `json:"-"` // Contract violation, consumption must stop
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

// IsRetryable reports whether err carries a retryable AppError.
// Errors without classification are treated as retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return err != nil
}

// IsFatal reports whether err carries a contract violation.
func IsFatal(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Fatal
}

// ---- Inbound Events (EVT) ----

func ErrInvalidEvent(err error) *AppError {
	return Wrap("EVT_001", "Invalid inbound event", http.StatusBadRequest, err)
}

func ErrUnsupportedEvent(err error) *AppError {
	return Wrap("EVT_002", "Unsupported event type", http.StatusBadRequest, err)
}

// ---- Settlement (STL) ----

func ErrSettlementFailed(err error) *AppError {
	e := Wrap("STL_001", "Settlement provider failure", http.StatusBadGateway, err)
	e.Retryable = true
	return e
}

// ---- Routing (RTE) ----

func ErrUnsupportedTransactionType(err error) *AppError {
	e := Wrap("RTE_001", "Transaction type not supported", http.StatusInternalServerError, err)
	e.Fatal = true
	return e
}

// ---- Query (QRY) ----

func ErrNotFound(entity string) *AppError {
	return New("QRY_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// Validation returns a QRY_002 validation error.
func Validation(message string) *AppError {
	return New("QRY_002", message, http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	e := Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
	e.Retryable = true
	return e
}

// InternalError wraps an internal error as a retryable SYS_001 error.
func InternalError(err error) *AppError {
	e := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
	e.Retryable = true
	return e
}

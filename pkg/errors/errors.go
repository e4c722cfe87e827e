package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common failure classes.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrSessionExpired = errors.New("session expired")
	ErrUnavailable    = errors.New("service unavailable")
)

// AppError is a structured application error with a stable code. The code is
// what the Discord layer switches on to pick a user-facing embed, and what the
// read-side API maps to an HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// TransactionUsed is returned when a transaction identifier already has a
// stored review, either from the pre-check or from a unique-constraint
// violation on insert.
func TransactionUsed(transactionID string) *AppError {
	return &AppError{
		Code:    "TRANSACTION_USED",
		Message: fmt.Sprintf("transaction %q already has a review", transactionID),
		Err:     ErrAlreadyExists,
	}
}

// TransactionNotFound is returned when neither lookup path resolves a payment.
// Transport failures are folded in here as well (fail-closed).
func TransactionNotFound(transactionID string) *AppError {
	return &AppError{
		Code:    "TRANSACTION_NOT_FOUND",
		Message: fmt.Sprintf("no payment found for transaction %q", transactionID),
		Err:     ErrNotFound,
	}
}

// EmptyPurchase is returned when a verified payment carries no line items.
func EmptyPurchase(transactionID string) *AppError {
	return &AppError{
		Code:    "EMPTY_PURCHASE",
		Message: fmt.Sprintf("payment for transaction %q contains no products", transactionID),
		Err:     ErrInvalidInput,
	}
}

// SessionExpired is returned when a workflow step finds no usable session,
// including out-of-order step submissions. The user must restart the command.
func SessionExpired() *AppError {
	return &AppError{
		Code:    "SESSION_EXPIRED",
		Message: "review session has expired",
		Err:     ErrSessionExpired,
	}
}

// InvalidRating is returned when the submitted rating is not a single digit
// in the 1-5 range.
func InvalidRating(input string) *AppError {
	return &AppError{
		Code:    "INVALID_RATING",
		Message: fmt.Sprintf("rating %q is not a number between 1 and 5", input),
		Err:     ErrInvalidInput,
	}
}

// ProductMismatch is returned when the locked product-name field comes back
// altered from the content form.
func ProductMismatch() *AppError {
	return &AppError{
		Code:    "PRODUCT_MISMATCH",
		Message: "product name does not match the purchased product",
		Err:     ErrInvalidInput,
	}
}

// InvalidInput wraps an arbitrary validation failure.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NotFound reports a missing resource on the read-side API.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Err:     ErrNotFound,
	}
}

// Unavailable reports an unreachable external collaborator.
func Unavailable(what string) *AppError {
	return &AppError{
		Code:    "UNAVAILABLE",
		Message: fmt.Sprintf("%s is currently unavailable", what),
		Err:     ErrUnavailable,
	}
}

// Code returns the stable error code, or "INTERNAL_ERROR" for plain errors.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

// HTTPStatus maps an error to an HTTP status for the read-side API.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

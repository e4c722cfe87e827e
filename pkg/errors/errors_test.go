package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		sentinel error
	}{
		{"transaction used", TransactionUsed("tbx-1"), "TRANSACTION_USED", ErrAlreadyExists},
		{"transaction not found", TransactionNotFound("tbx-1"), "TRANSACTION_NOT_FOUND", ErrNotFound},
		{"empty purchase", EmptyPurchase("tbx-1"), "EMPTY_PURCHASE", ErrInvalidInput},
		{"session expired", SessionExpired(), "SESSION_EXPIRED", ErrSessionExpired},
		{"invalid rating", InvalidRating("7"), "INVALID_RATING", ErrInvalidInput},
		{"product mismatch", ProductMismatch(), "PRODUCT_MISMATCH", ErrInvalidInput},
		{"invalid input", InvalidInput("bad"), "INVALID_INPUT", ErrInvalidInput},
		{"not found", NotFound("review", "tbx-1"), "NOT_FOUND", ErrNotFound},
		{"unavailable", Unavailable("the review channel"), "UNAVAILABLE", ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, Code(tt.err))
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestCodeSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("submit review: %w", TransactionUsed("tbx-1"))
	assert.Equal(t, "TRANSACTION_USED", Code(err))
}

func TestCodePlainError(t *testing.T) {
	assert.Equal(t, "INTERNAL_ERROR", Code(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("review", "x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(TransactionUsed("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidRating("9")))
	assert.Equal(t, http.StatusGone, HTTPStatus(SessionExpired()))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Unavailable("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

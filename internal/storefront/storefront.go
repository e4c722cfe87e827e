// Package storefront defines the commerce-provider interface the review
// workflow verifies purchases against.
package storefront

import (
	"context"

	"github.com/ulogstudios/review-bot/internal/domain"
)

// Provider resolves purchases and product catalog data from the commerce
// backend. Implementations are side-effect-free and safe to call repeatedly
// for the same input.
type Provider interface {
	// Name returns the provider name (e.g. "tebex").
	Name() string

	// LookupPayment resolves a canonical payment record for a transaction
	// identifier. Returns errors.ErrNotFound when no payment matches;
	// transport failures come back as their own errors so the caller can log
	// the distinction before failing closed.
	LookupPayment(ctx context.Context, transactionID string) (*domain.Payment, error)

	// FindPackageImage backfills a missing product image by case-insensitive
	// exact name match against the product catalog. Returns "" when no match
	// exists; lookup failures are not fatal to the workflow.
	FindPackageImage(ctx context.Context, packageName string) (string, error)
}

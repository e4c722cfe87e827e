package repository

import (
	"context"

	"github.com/ulogstudios/review-bot/internal/domain"
)

// ReviewRepository defines the persistence operations for reviews.
type ReviewRepository interface {
	// ExistsByTransactionID reports whether a review already exists for the
	// transaction. This is the duplicate-guard pre-check only; the unique
	// constraint on insert is the real invariant enforcer.
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)

	// Create inserts a new review and fills in its generated id and creation
	// timestamp. A uniqueness conflict on transaction_id is returned as
	// errors.ErrAlreadyExists.
	Create(ctx context.Context, review *domain.Review) error

	// GetByTransactionID retrieves the review for a transaction.
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Review, error)

	// ListByUserID returns all reviews by a user, newest first.
	ListByUserID(ctx context.Context, userID string) ([]domain.Review, error)

	// ListByProductID returns all reviews for a product, newest first.
	ListByProductID(ctx context.Context, productID string) ([]domain.Review, error)

	// Stats returns the total count, average rating, and rating histogram.
	Stats(ctx context.Context) (*domain.Stats, error)
}

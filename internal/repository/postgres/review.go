package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ulogstudios/review-bot/internal/domain"
	"github.com/ulogstudios/review-bot/pkg/database"
	apperrors "github.com/ulogstudios/review-bot/pkg/errors"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations; the reviews_transaction_id_key constraint is the final word on
// the one-review-per-transaction invariant.
const uniqueViolation = "23505"

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ExistsByTransactionID reports whether a review exists for the transaction.
func (r *ReviewRepository) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM reviews WHERE transaction_id = $1)",
		transactionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check review existence: %w", err)
	}
	return exists, nil
}

// Create inserts a new review. The generated id and creation timestamp are
// written back into the given review.
func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	query := `
		INSERT INTO reviews (transaction_id, payment_id, user_id, user_username, user_avatar, product_id, product_name, product_image, review_text, rating, message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		rev.TransactionID,
		rev.PaymentID,
		rev.UserID,
		rev.UserUsername,
		rev.UserAvatar,
		rev.ProductID,
		rev.ProductName,
		rev.ProductImage,
		rev.ReviewText,
		rev.Rating,
		rev.MessageID,
	).Scan(&rev.ID, &rev.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.TransactionUsed(rev.TransactionID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

const reviewColumns = "id, transaction_id, payment_id, user_id, user_username, user_avatar, product_id, product_name, product_image, review_text, rating, message_id, created_at"

// GetByTransactionID retrieves the review for a transaction.
func (r *ReviewRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Review, error) {
	query := fmt.Sprintf("SELECT %s FROM reviews WHERE transaction_id = $1", reviewColumns)

	var rev domain.Review
	err := r.db.QueryRow(ctx, query, transactionID).Scan(
		&rev.ID,
		&rev.TransactionID,
		&rev.PaymentID,
		&rev.UserID,
		&rev.UserUsername,
		&rev.UserAvatar,
		&rev.ProductID,
		&rev.ProductName,
		&rev.ProductImage,
		&rev.ReviewText,
		&rev.Rating,
		&rev.MessageID,
		&rev.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", transactionID)
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rev, nil
}

// ListByUserID returns all reviews by a user, newest first.
func (r *ReviewRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Review, error) {
	query := fmt.Sprintf("SELECT %s FROM reviews WHERE user_id = $1 ORDER BY created_at DESC", reviewColumns)
	return r.list(ctx, query, userID)
}

// ListByProductID returns all reviews for a product, newest first.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string) ([]domain.Review, error) {
	query := fmt.Sprintf("SELECT %s FROM reviews WHERE product_id = $1 ORDER BY created_at DESC", reviewColumns)
	return r.list(ctx, query, productID)
}

func (r *ReviewRepository) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID,
			&rev.TransactionID,
			&rev.PaymentID,
			&rev.UserID,
			&rev.UserUsername,
			&rev.UserAvatar,
			&rev.ProductID,
			&rev.ProductName,
			&rev.ProductImage,
			&rev.ReviewText,
			&rev.Rating,
			&rev.MessageID,
			&rev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}

// Stats returns the total count, average rating, and per-rating histogram.
func (r *ReviewRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{Histogram: make(map[int]int64)}

	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews",
	).Scan(&stats.Total, &stats.AverageRating)
	if err != nil {
		return nil, fmt.Errorf("aggregate reviews: %w", err)
	}

	rows, err := r.db.Query(ctx,
		"SELECT rating, COUNT(*) FROM reviews GROUP BY rating ORDER BY rating DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("rating histogram: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rating int
			count  int64
		)
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("scan histogram row: %w", err)
		}
		stats.Histogram[rating] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate histogram rows: %w", err)
	}

	return stats, nil
}

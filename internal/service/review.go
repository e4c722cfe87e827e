package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ulogstudios/review-bot/internal/domain"
	"github.com/ulogstudios/review-bot/internal/event"
	"github.com/ulogstudios/review-bot/internal/repository"
	"github.com/ulogstudios/review-bot/internal/session"
	"github.com/ulogstudios/review-bot/internal/storefront"
	apperrors "github.com/ulogstudios/review-bot/pkg/errors"
	"github.com/ulogstudios/review-bot/pkg/validator"
)

// Announcer posts the finished review to the public channel and returns a
// reference to the posted message.
type Announcer interface {
	PublishReview(ctx context.Context, review *domain.Review) (messageID string, err error)
}

// ReviewService orchestrates the review workflow: duplicate pre-check,
// purchase verification, session lifecycle, content validation, public
// announcement, and persistence.
type ReviewService struct {
	sessions  session.Store
	repo      repository.ReviewRepository
	provider  storefront.Provider
	announcer Announcer
	producer  *event.Producer
	logger    *slog.Logger
	now       func() time.Time
}

// NewReviewService creates a review service. The producer may be nil when
// event publishing is disabled.
func NewReviewService(
	sessions session.Store,
	repo repository.ReviewRepository,
	provider storefront.Provider,
	announcer Announcer,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		sessions:  sessions,
		repo:      repo,
		provider:  provider,
		announcer: announcer,
		producer:  producer,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitTransactionInput holds the transaction-id form submission.
type SubmitTransactionInput struct {
	TransactionID string `validate:"required,min=5,max=50"`
}

// ProductSummary is what the confirmation surface shows after verification.
type ProductSummary struct {
	ProductName  string
	ProductImage string
	Amount       string
	Currency     string
	Date         time.Time
}

// SubmitReviewInput holds the content form submission. Rating stays a raw
// string until parsed so invalid values produce a precise rejection.
type SubmitReviewInput struct {
	ProductName string `validate:"required"`
	ReviewText  string `validate:"required,min=10,max=1000"`
	Rating      string `validate:"required"`
}

// SubmitTransaction verifies the transaction and opens a review session.
// Guards, in order: duplicate pre-check (before any external call), purchase
// verification (fail-closed), empty-purchase rejection. On success a session
// in the awaiting-confirmation step replaces any prior session for the user.
func (s *ReviewService) SubmitTransaction(ctx context.Context, reviewer domain.Reviewer, transactionID string) (*ProductSummary, error) {
	transactionID = strings.TrimSpace(transactionID)

	if err := validator.Validate(&SubmitTransactionInput{TransactionID: transactionID}); err != nil {
		reviewRejectionsTotal.WithLabelValues(reasonInvalidInput).Inc()
		return nil, apperrors.InvalidInput(err.Error())
	}

	exists, err := s.repo.ExistsByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("duplicate pre-check: %w", err)
	}
	if exists {
		reviewRejectionsTotal.WithLabelValues(reasonAlreadyUsed).Inc()
		return nil, apperrors.TransactionUsed(transactionID)
	}

	payment, err := s.provider.LookupPayment(ctx, transactionID)
	if err != nil {
		// Fail closed: a backend outage and a genuinely absent payment both
		// come back to the user as "not found". The underlying error is
		// logged so operators can tell the two apart.
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "payment lookup failed, treating as not found",
				slog.String("transaction_id", transactionID),
				slog.String("error", err.Error()),
			)
		}
		reviewRejectionsTotal.WithLabelValues(reasonNotFound).Inc()
		return nil, apperrors.TransactionNotFound(transactionID)
	}

	if !payment.HasProducts() {
		reviewRejectionsTotal.WithLabelValues(reasonEmptyPurchase).Inc()
		return nil, apperrors.EmptyPurchase(transactionID)
	}

	product := payment.Product()
	if product.Image == "" {
		payment.Packages[0].Image = s.backfillImage(ctx, product.Name)
	}

	sess := &session.Session{
		UserID:        reviewer.ID,
		TransactionID: transactionID,
		Payment:       *payment,
		Step:          session.StepAwaitingConfirmation,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create review session: %w", err)
	}

	s.logger.InfoContext(ctx, "review session opened",
		slog.String("user_id", reviewer.ID),
		slog.String("transaction_id", transactionID),
		slog.String("product_name", product.Name),
	)

	return &ProductSummary{
		ProductName:  product.Name,
		ProductImage: payment.Packages[0].Image,
		Amount:       payment.Amount,
		Currency:     payment.Currency,
		Date:         payment.Date,
	}, nil
}

// ContentPrompt is what the content form is pre-filled with.
type ContentPrompt struct {
	ProductName string
}

// ConfirmProduct advances the session from the confirmation step to the
// content step. The session must exist, be unexpired, and be waiting on
// confirmation; anything else tells the user to restart.
func (s *ReviewService) ConfirmProduct(ctx context.Context, userID string) (*ContentPrompt, error) {
	sess, err := s.usableSession(ctx, userID, session.StepAwaitingConfirmation)
	if err != nil {
		return nil, err
	}

	sess.Step = session.StepAwaitingContent
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("advance review session: %w", err)
	}

	return &ContentPrompt{ProductName: sess.Payment.Product().Name}, nil
}

// SubmitReview validates the content form and completes the workflow:
// announce to the public channel, persist, clear the session. Validation
// failures leave the session in place so the user can resubmit the form.
func (s *ReviewService) SubmitReview(ctx context.Context, reviewer domain.Reviewer, input SubmitReviewInput) (*domain.Review, error) {
	sess, err := s.usableSession(ctx, reviewer.ID, session.StepAwaitingContent)
	if err != nil {
		return nil, err
	}

	rating, ok := domain.ParseRating(input.Rating)
	if !ok {
		reviewRejectionsTotal.WithLabelValues(reasonInvalidRating).Inc()
		return nil, apperrors.InvalidRating(input.Rating)
	}

	if err := validator.Validate(&input); err != nil {
		reviewRejectionsTotal.WithLabelValues(reasonInvalidInput).Inc()
		return nil, apperrors.InvalidInput(err.Error())
	}

	product := sess.Payment.Product()
	if input.ProductName != product.Name {
		reviewRejectionsTotal.WithLabelValues(reasonProductMismatch).Inc()
		return nil, apperrors.ProductMismatch()
	}

	image := product.Image
	if image == "" {
		image = s.backfillImage(ctx, product.Name)
	}

	review := &domain.Review{
		TransactionID: sess.TransactionID,
		PaymentID:     sess.Payment.ID,
		UserID:        reviewer.ID,
		UserUsername:  reviewer.Username,
		UserAvatar:    reviewer.AvatarURL,
		ProductID:     product.ID,
		ProductName:   product.Name,
		ProductImage:  image,
		ReviewText:    input.ReviewText,
		Rating:        rating,
	}

	// Announce first so the user sees their review go up; a failed
	// announcement keeps the session alive for a retry.
	messageID, err := s.announcer.PublishReview(ctx, review)
	if err != nil {
		reviewRejectionsTotal.WithLabelValues(reasonAnnounceFailed).Inc()
		s.logger.ErrorContext(ctx, "review announcement failed",
			slog.String("transaction_id", sess.TransactionID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Unavailable("the review channel")
	}
	review.MessageID = messageID

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			// Lost the race on the unique constraint: another submission for
			// this transaction landed between the pre-check and this insert.
			_ = s.sessions.Delete(ctx, reviewer.ID)
			reviewRejectionsTotal.WithLabelValues(reasonAlreadyUsed).Inc()
			return nil, apperrors.TransactionUsed(sess.TransactionID)
		}

		// Policy: the announcement is already public, so a failed insert is
		// logged and counted but not surfaced. The dataset may undercount
		// reviews relative to announcements; that is an operator concern.
		reviewPersistFailuresTotal.Inc()
		s.logger.ErrorContext(ctx, "review insert failed after announcement",
			slog.String("transaction_id", sess.TransactionID),
			slog.String("message_id", messageID),
			slog.String("error", err.Error()),
		)
	} else if s.producer != nil {
		if pubErr := s.producer.PublishReviewCreated(ctx, review); pubErr != nil {
			s.logger.ErrorContext(ctx, "failed to publish review.created event",
				slog.String("transaction_id", review.TransactionID),
				slog.String("error", pubErr.Error()),
			)
		}
	}

	if err := s.sessions.Delete(ctx, reviewer.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete review session",
			slog.String("user_id", reviewer.ID),
			slog.String("error", err.Error()),
		)
	}

	reviewsCompletedTotal.Inc()
	s.logger.InfoContext(ctx, "review submitted",
		slog.String("transaction_id", review.TransactionID),
		slog.String("user_id", review.UserID),
		slog.String("product_name", review.ProductName),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// usableSession fetches the user's session and gates on existence, expiry,
// and the expected workflow step. Every failure mode maps to the same
// restart instruction for the user.
func (s *ReviewService) usableSession(ctx context.Context, userID string, step session.Step) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch review session: %w", err)
	}
	if sess == nil {
		return nil, apperrors.SessionExpired()
	}
	if sess.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, userID)
		sessionExpiriesTotal.Inc()
		return nil, apperrors.SessionExpired()
	}
	if sess.Step != step {
		reviewRejectionsTotal.WithLabelValues(reasonOutOfOrder).Inc()
		s.logger.WarnContext(ctx, "out-of-order workflow step",
			slog.String("user_id", userID),
			slog.String("session_step", string(sess.Step)),
			slog.String("submitted_step", string(step)),
		)
		return nil, apperrors.SessionExpired()
	}
	return sess, nil
}

func (s *ReviewService) backfillImage(ctx context.Context, productName string) string {
	image, err := s.provider.FindPackageImage(ctx, productName)
	if err != nil {
		s.logger.DebugContext(ctx, "catalog image lookup failed",
			slog.String("product_name", productName),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return image
}

// GetReview returns the stored review for a transaction.
func (s *ReviewService) GetReview(ctx context.Context, transactionID string) (*domain.Review, error) {
	review, err := s.repo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("get review by transaction: %w", err)
	}
	return review, nil
}

// ListReviewsByUser returns all reviews submitted by a user.
func (s *ReviewService) ListReviewsByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	reviews, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}
	return reviews, nil
}

// ListReviewsByProduct returns all reviews for a product.
func (s *ReviewService) ListReviewsByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	reviews, err := s.repo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by product: %w", err)
	}
	return reviews, nil
}

// ReviewStats returns the aggregate review statistics.
func (s *ReviewService) ReviewStats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}
	return stats, nil
}

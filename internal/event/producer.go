package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ulogstudios/review-bot/internal/domain"
	pkgkafka "github.com/ulogstudios/review-bot/pkg/kafka"
	"github.com/ulogstudios/review-bot/pkg/logger"
)

// TopicReviewCreated carries one event per persisted review for downstream
// consumers (storefront site, analytics).
const TopicReviewCreated = "storefront.review.created"

// Aggregate and source identifiers for the event envelope.
const (
	AggregateTypeReview = "review"
	SourceReviewBot     = "review-bot"
)

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ReviewID      int64     `json:"review_id"`
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Rating        int       `json:"rating"`
	CreatedAt     time.Time `json:"created_at"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the review bot.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ReviewID:      review.ID,
		TransactionID: review.TransactionID,
		UserID:        review.UserID,
		ProductID:     review.ProductID,
		ProductName:   review.ProductName,
		Rating:        review.Rating,
		CreatedAt:     review.CreatedAt,
	}

	ev, err := pkgkafka.NewEvent(TopicReviewCreated, review.TransactionID, AggregateTypeReview, SourceReviewBot, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}
	ev.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicReviewCreated, ev); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("transaction_id", review.TransactionID),
		slog.Int("rating", review.Rating),
	)

	return nil
}

package domain

import (
	"time"
)

// Input bounds for the review workflow. The Discord modal enforces the same
// limits client-side; the service re-validates because modal payloads can be
// replayed or tampered with.
const (
	MinRating = 1
	MaxRating = 5

	MinReviewLength = 10
	MaxReviewLength = 1000

	MinTransactionIDLength = 5
	MaxTransactionIDLength = 50
)

// Review is a persisted product review, created exactly once per transaction.
type Review struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transaction_id"`
	PaymentID     string    `json:"payment_id,omitempty"`
	UserID        string    `json:"user_id"`
	UserUsername  string    `json:"user_username"`
	UserAvatar    string    `json:"user_avatar,omitempty"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductImage  string    `json:"product_image,omitempty"`
	ReviewText    string    `json:"review_text"`
	Rating        int       `json:"rating"`
	MessageID     string    `json:"message_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Reviewer identifies the Discord user submitting a review.
type Reviewer struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Stats aggregates the stored reviews.
type Stats struct {
	Total         int64         `json:"total"`
	AverageRating float64       `json:"average_rating"`
	Histogram     map[int]int64 `json:"histogram"`
}

// IsValidRating checks whether n is within the accepted rating range.
func IsValidRating(n int) bool {
	return n >= MinRating && n <= MaxRating
}

// ParseRating parses a rating form field. Exactly one numeric character in
// the 1-5 range is accepted; everything else (empty, multi-digit, padded,
// non-numeric, 0, 6-9) is rejected.
func ParseRating(input string) (int, bool) {
	if len(input) != 1 {
		return 0, false
	}
	c := input[0]
	if c < '1' || c > '5' {
		return 0, false
	}
	return int(c - '0'), true
}

package session

import (
	"context"
	"time"

	"github.com/ulogstudios/review-bot/internal/domain"
)

// DefaultTimeout is how long a review session stays usable after the
// transaction is verified.
const DefaultTimeout = 600 * time.Second

// Step is the workflow step the session is waiting on. Steps only move
// forward; submitting a form for any other step is rejected.
type Step string

const (
	// StepAwaitingConfirmation: the purchase is verified and the user has
	// been shown the product summary, but has not chosen to proceed yet.
	StepAwaitingConfirmation Step = "awaiting_confirmation"

	// StepAwaitingContent: the user proceeded and the content form is out.
	StepAwaitingContent Step = "awaiting_content"
)

// Session is the transient per-user state between transaction verification
// and final submission. It lives only in the configured store backing and is
// lost on restart; there is no recovery for in-flight reviews.
type Session struct {
	UserID        string         `json:"user_id"`
	TransactionID string         `json:"transaction_id"`
	Payment       domain.Payment `json:"payment"`
	Step          Step           `json:"step"`
	ExpiresAt     time.Time      `json:"expires_at"`
}

// Expired reports whether the session's absolute expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store holds at most one in-flight review session per user. Create replaces
// any prior session for the user (last write wins); expiry is evaluated
// lazily on access, so implementations need no sweep for correctness.
type Store interface {
	// Create inserts or replaces the session for sess.UserID and stamps its
	// expiry from the store's timeout.
	Create(ctx context.Context, sess *Session) error

	// Get returns the session for userID, or nil if none exists. It does not
	// check expiry.
	Get(ctx context.Context, userID string) (*Session, error)

	// Update rewrites an existing session (step transitions), preserving the
	// original expiry.
	Update(ctx context.Context, sess *Session) error

	// IsExpired reports true if no session exists for userID or its expiry
	// has passed. "Never started" and "timed out" are both not usable.
	IsExpired(ctx context.Context, userID string) (bool, error)

	// Delete removes the session for userID. Idempotent.
	Delete(ctx context.Context, userID string) error
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulogstudios/review-bot/internal/domain"
	"github.com/ulogstudios/review-bot/internal/service"
	"github.com/ulogstudios/review-bot/internal/session"
	apperrors "github.com/ulogstudios/review-bot/pkg/errors"
	"github.com/ulogstudios/review-bot/pkg/health"
)

// stubRepo serves canned reviews for the read-side endpoints.
type stubRepo struct {
	reviews map[string]*domain.Review
	byUser  map[string][]domain.Review
	stats   *domain.Stats
	err     error
}

func (s *stubRepo) ExistsByTransactionID(context.Context, string) (bool, error) {
	return false, nil
}

func (s *stubRepo) Create(context.Context, *domain.Review) error {
	return nil
}

func (s *stubRepo) GetByTransactionID(_ context.Context, transactionID string) (*domain.Review, error) {
	if s.err != nil {
		return nil, s.err
	}
	review, ok := s.reviews[transactionID]
	if !ok {
		return nil, apperrors.NotFound("review", transactionID)
	}
	return review, nil
}

func (s *stubRepo) ListByUserID(_ context.Context, userID string) ([]domain.Review, error) {
	if s.err != nil {
		return nil, s.err
	}
	reviews := s.byUser[userID]
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

func (s *stubRepo) ListByProductID(context.Context, string) ([]domain.Review, error) {
	return []domain.Review{}, s.err
}

func (s *stubRepo) Stats(context.Context) (*domain.Stats, error) {
	return s.stats, s.err
}

func newTestRouter(t *testing.T, repo *stubRepo) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := service.NewReviewService(
		session.NewMemoryStore(10*time.Minute), repo, nil, nil, nil, log,
	)
	return NewRouter(svc, health.NewHandler(), log)
}

func sampleReview() *domain.Review {
	return &domain.Review{
		ID:            7,
		TransactionID: "tbx-999",
		UserID:        "user-42",
		UserUsername:  "blockfan",
		ProductID:     "101",
		ProductName:   "VIP Rank",
		ReviewText:    "Great perks, instant delivery!",
		Rating:        5,
		CreatedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func doRequest(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestGetReviewByTransaction(t *testing.T) {
	router := newTestRouter(t, &stubRepo{
		reviews: map[string]*domain.Review{"tbx-999": sampleReview()},
	})

	rec, body := doRequest(t, router, "/api/v1/reviews/tbx-999")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, body.Data)
	data := body.Data.(map[string]any)
	assert.Equal(t, "VIP Rank", data["product_name"])
}

func TestGetReviewNotFound(t *testing.T) {
	router := newTestRouter(t, &stubRepo{reviews: map[string]*domain.Review{}})

	rec, body := doRequest(t, router, "/api/v1/reviews/tbx-404")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestListReviewsByUser(t *testing.T) {
	router := newTestRouter(t, &stubRepo{
		byUser: map[string][]domain.Review{"user-42": {*sampleReview()}},
	})

	rec, body := doRequest(t, router, "/api/v1/reviews?user_id=user-42")

	assert.Equal(t, http.StatusOK, rec.Code)
	reviews := body.Data.([]any)
	assert.Len(t, reviews, 1)
}

func TestListReviewsRequiresFilter(t *testing.T) {
	router := newTestRouter(t, &stubRepo{})

	rec, body := doRequest(t, router, "/api/v1/reviews")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INVALID_INPUT", body.Error.Code)
}

func TestListReviewsRejectsBothFilters(t *testing.T) {
	router := newTestRouter(t, &stubRepo{})

	rec, _ := doRequest(t, router, "/api/v1/reviews?user_id=a&product_id=b")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStats(t *testing.T) {
	router := newTestRouter(t, &stubRepo{
		stats: &domain.Stats{Total: 3, AverageRating: 4.33, Histogram: map[int]int64{5: 1, 4: 2}},
	})

	rec, body := doRequest(t, router, "/api/v1/reviews/stats")

	assert.Equal(t, http.StatusOK, rec.Code)
	data := body.Data.(map[string]any)
	assert.Equal(t, float64(3), data["total"])
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	router := newTestRouter(t, &stubRepo{err: errors.New("connection reset by peer")})

	rec, body := doRequest(t, router, "/api/v1/reviews/tbx-999")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "connection reset")
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, &stubRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

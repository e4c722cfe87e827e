package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	reviewsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_workflow_completed_total",
			Help: "Total number of reviews that reached final submission",
		},
	)

	reviewRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_workflow_rejections_total",
			Help: "Total number of workflow step rejections by reason",
		},
		[]string{"reason"},
	)

	sessionExpiriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_session_expiries_total",
			Help: "Total number of sessions found expired on access",
		},
	)

	reviewPersistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_persist_failures_total",
			Help: "Total number of review inserts that failed after the announcement was posted",
		},
	)
)

// Rejection reason labels.
const (
	reasonAlreadyUsed     = "already_used"
	reasonNotFound        = "not_found"
	reasonEmptyPurchase   = "empty_purchase"
	reasonInvalidRating   = "invalid_rating"
	reasonProductMismatch = "product_mismatch"
	reasonInvalidInput    = "invalid_input"
	reasonOutOfOrder      = "out_of_order"
	reasonAnnounceFailed  = "announce_failed"
)

func init() {
	prometheus.MustRegister(
		reviewsCompletedTotal,
		reviewRejectionsTotal,
		sessionExpiriesTotal,
		reviewPersistFailuresTotal,
	)
}

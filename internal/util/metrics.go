package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Total number of checkout attempts",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_failed_total",
		Help: "Total number of failed checkout attempts",
	}, []string{"reason"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of vendor-group orders created",
	})

	OrdersPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_total",
		Help: "Total number of orders marked paid",
	})

	CouponRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_rejections_total",
		Help: "Total number of rejected coupon redemptions",
	}, []string{"reason"})

	PaymentSessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_sessions_total",
		Help: "Total number of hosted checkout sessions created",
	})

	PaymentSessionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_session_latency_seconds",
		Help:    "Latency of hosted checkout session creation",
		Buckets: prometheus.DefBuckets,
	})

	StoresAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stores_applied_total",
		Help: "Total number of store onboarding applications",
	})

	ImageUploadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "image_upload_latency_seconds",
		Help:    "Latency of image host uploads",
		Buckets: prometheus.DefBuckets,
	})

	AssistantRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_requests_total",
		Help: "Total number of listing extraction requests",
	})

	AssistantFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_failures_total",
		Help: "Total number of failed listing extractions",
	}, []string{"reason"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

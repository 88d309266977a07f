package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Storefront metrics collectors
var (
	// Fulfillment

	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_verifications_total",
			Help: "Total number of checkout session verifications by outcome",
		},
		[]string{"outcome"},
	)

	DownloadLinksIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_download_links_issued_total",
			Help: "Total number of download link issuance attempts",
		},
		[]string{"source", "status"},
	)

	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_downloads_total",
			Help: "Total number of download attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Notifications

	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_emails_total",
			Help: "Total number of transactional emails by kind and status",
		},
		[]string{"kind", "status"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_published_total",
			Help: "Total number of purchase events published to the broker",
		},
		[]string{"status"},
	)

	// HTTP

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
)

// Status labels shared across collectors.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// StatusLabel maps a boolean result onto the shared status labels.
func StatusLabel(ok bool) string {
	if ok {
		return StatusSuccess
	}
	return StatusFailure
}

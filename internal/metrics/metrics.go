package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests by path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	DomainChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_checks_total",
			Help: "Total number of availability checks by outcome",
		},
		[]string{"outcome"},
	)

	OrdersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of checkout sessions opened",
		},
	)

	DomainsIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "domains_issued_total",
			Help: "Total number of domains issued after payment",
		},
	)

	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of provider webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)
)

// Register registers all metrics on the default registry. Call once at
// startup.
func Register() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(DomainChecksTotal)
	prometheus.MustRegister(OrdersCreatedTotal)
	prometheus.MustRegister(DomainsIssuedTotal)
	prometheus.MustRegister(WebhookEventsTotal)
}

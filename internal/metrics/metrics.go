package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatgw_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatgw_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatgw_chat_requests_total",
			Help: "Chat completion requests by terminal outcome.",
		},
		[]string{"outcome"},
	)

	RateLimitDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatgw_rate_limit_denials_total",
			Help: "Requests denied by the local rate limiter.",
		},
		[]string{"scope"},
	)

	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatgw_upstream_errors_total",
			Help: "Upstream gateway failures by HTTP status.",
		},
		[]string{"status"},
	)

	InjectionFlagsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chatgw_injection_flags_total",
			Help: "Messages matching a prompt-injection signature (log-only).",
		},
	)

	StreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatgw_stream_duration_seconds",
			Help:    "Wall time spent relaying a completion stream.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ChatRequestsTotal,
		RateLimitDenialsTotal,
		UpstreamErrorsTotal,
		InjectionFlagsTotal,
		StreamDuration,
	)
}

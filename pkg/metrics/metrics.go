package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthpulse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealthpulse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ExternalAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthpulse_external_api_calls_total",
			Help: "Total number of calls to collaborator services",
		},
		[]string{"service", "endpoint", "status_code"},
	)

	ExternalAPICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealthpulse_external_api_call_duration_seconds",
			Help:    "Collaborator call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"service", "endpoint"},
	)

	CircuitBreakerStateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wealthpulse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service"},
	)

	StreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthpulse_llm_streams_total",
			Help: "LLM relay streams by use case, provider and outcome",
		},
		[]string{"use_case", "provider", "outcome"},
	)

	StreamOpenRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthpulse_llm_stream_open_retries_total",
			Help: "Retries spent opening an LLM stream before the first chunk",
		},
		[]string{"provider"},
	)

	StreamTimeToFirstChunk = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealthpulse_llm_time_to_first_chunk_seconds",
			Help:    "Latency from request to first relayed chunk",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"use_case"},
	)

	StreamBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthpulse_llm_stream_bytes_total",
			Help: "Bytes relayed downstream",
		},
		[]string{"use_case"},
	)

	SnapshotPartsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthpulse_snapshot_parts_failed_total",
			Help: "Analytics fan-out parts substituted with defaults",
		},
		[]string{"kind", "part"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthpulse_cache_requests_total",
			Help: "Suggestion cache lookups",
		},
		[]string{"result"},
	)

	SessionResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthpulse_session_resolutions_total",
			Help: "Session cookie resolutions by result",
		},
		[]string{"result"},
	)

	RateLimitHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthpulse_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordExternalAPICall(service, endpoint string, status int, duration time.Duration) {
	ExternalAPICallsTotal.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalAPICallDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

// UpdateCircuitBreakerState is shaped to plug into circuitbreaker.Config.OnStateChange.
func UpdateCircuitBreakerState(name string, _, to gobreaker.State) {
	var v float64
	switch to {
	case gobreaker.StateOpen:
		v = 1
	case gobreaker.StateHalfOpen:
		v = 2
	}
	CircuitBreakerStateGauge.WithLabelValues(name).Set(v)
}

func RecordStream(useCase, provider, outcome string) {
	StreamsTotal.WithLabelValues(useCase, provider, outcome).Inc()
}

func RecordRateLimitHit(endpoint string) {
	RateLimitHitsTotal.WithLabelValues(endpoint).Inc()
}

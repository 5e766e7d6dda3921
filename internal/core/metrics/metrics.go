package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "airport"

// Metrics 业务和 HTTP 层的全部指标
type Metrics struct {
	Registrations     *prometheus.CounterVec // role, outcome
	Logins            *prometheus.CounterVec // outcome
	FlightsRegistered *prometheus.CounterVec // direction, outcome
	FlightDelays      prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// New 注册到 reg（每个进程 / 测试各用一个 NewRegistry）
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "User registrations by role and outcome",
		}, []string{"role", "outcome"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		FlightsRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_registered_total",
			Help:      "Flight registrations by direction and outcome",
		}, []string{"direction", "outcome"}),
		FlightDelays: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_delays_total",
			Help:      "Delays applied to flights",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests",
		}, []string{"path", "method", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}
}

// outcome 标签取值
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeConflict     = "conflict"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

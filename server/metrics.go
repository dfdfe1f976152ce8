package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 서버 프로메테우스 지표
type Metrics struct {
	requests      *prometheus.CounterVec
	requestErrors *prometheus.CounterVec
	sortDuration  *prometheus.HistogramVec
	connections   prometheus.Gauge
}

// NewMetrics 지표 생성 후 reg에 등록. reg가 nil이면 등록하지 않음
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prlsort",
			Name:      "requests_total",
			Help:      "Requests handled, by command.",
		}, []string{"command"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prlsort",
			Name:      "request_errors_total",
			Help:      "Requests answered with ERROR, by command.",
		}, []string{"command"}),
		sortDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prlsort",
			Name:      "sort_duration_seconds",
			Help:      "Wall-clock sort time, by mode.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"mode"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "prlsort",
			Name:      "connections_active",
			Help:      "Currently open client connections.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.requestErrors, m.sortDuration, m.connections)
	}
	return m
}

// nil 수신자는 아무것도 하지 않음

func (m *Metrics) request(cmd string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(cmd).Inc()
}

func (m *Metrics) requestError(cmd string) {
	if m == nil {
		return
	}
	m.requestErrors.WithLabelValues(cmd).Inc()
}

func (m *Metrics) observeSort(mode string, seconds float64) {
	if m == nil {
		return
	}
	m.sortDuration.WithLabelValues(mode).Observe(seconds)
}

func (m *Metrics) connOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) connClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

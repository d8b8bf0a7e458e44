package obs

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var processStartedAt = time.Now().UTC()

// Metrics counts outbound backend calls. It satisfies the REST client's
// observer hook so every request lands here without the gateways knowing.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sge_uptime_seconds",
		Help: "Process uptime in seconds.",
	}, func() float64 {
		return time.Since(processStartedAt).Seconds()
	}))

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sge_request_total",
		Help: "Backend requests issued, by method, path and status.",
	}, []string{"method", "path", "status"})
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sge_request_duration_seconds",
		Help:    "Backend request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	reg.MustRegister(requests, durations)

	return &Metrics{registry: reg, requests: requests, durations: durations}
}

// ObserveRequest records one backend call. Status 0 marks a transport
// failure that never produced a response.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

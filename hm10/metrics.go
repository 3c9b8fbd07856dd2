package hm10

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per operation counters for one or more Devices. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	transactions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	otaBytes     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Pass nil
// to skip registration, e.g. in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hm10_transactions_total",
			Help: "AT command transactions by operation and status.",
		}, []string{"op", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hm10_transaction_duration_seconds",
			Help:    "Time spent in AT command transactions, settle delays included.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}, []string{"op"}),
		otaBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hm10_ota_bytes_total",
			Help: "Raw bytes relayed over an established Bluetooth connection.",
		}, []string{"direction"}),
	}
	if reg != nil {
		reg.MustRegister(m.transactions, m.duration, m.otaBytes)
	}
	return m
}

func (m *Metrics) observe(op string, status Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(op, status.String()).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) addOTA(direction string, n int) {
	if m == nil {
		return
	}
	m.otaBytes.WithLabelValues(direction).Add(float64(n))
}

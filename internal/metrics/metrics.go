package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names used as the "op" label.
const (
	OpDeploy = "deploy"
	OpSet    = "set"
	OpGet    = "get"
)

// Metrics contains the metrics a node exposes
type Metrics struct {
	// Counters
	OpsTotal *prometheus.CounterVec

	// Gauges
	ContractsDeployed prometheus.Gauge

	// Histograms
	OpDuration *prometheus.HistogramVec
}

// NewMetrics registers the node metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simplestorage_ops_total",
			Help: "Total number of contract operations by result",
		}, []string{"op", "result"}),

		ContractsDeployed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "simplestorage_contracts_deployed",
			Help: "Number of SimpleStorage contracts known to the node",
		}),

		OpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simplestorage_op_duration_seconds",
			Help:    "Latency of contract operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"op"}),
	}
}

// Observe records the outcome and latency of an operation that started at start
func (m *Metrics) Observe(op string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.OpsTotal.WithLabelValues(op, result).Inc()
	m.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// SetContractsDeployed sets the number of deployed contracts
func (m *Metrics) SetContractsDeployed(count int) {
	m.ContractsDeployed.Set(float64(count))
}

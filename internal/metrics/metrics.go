// Package metrics provides Prometheus metrics for termdict
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for termdict
type Metrics struct {
	// gRPC request metrics
	GrpcRequestsTotal    *prometheus.CounterVec
	GrpcRequestDuration  *prometheus.HistogramVec
	GrpcRequestsInFlight prometheus.Gauge

	// Dictionary metrics
	DictOperationsTotal   *prometheus.CounterVec
	DictOperationDuration *prometheus.HistogramVec
	DictLookupsTotal      *prometheus.CounterVec
	DictEntries           prometheus.Gauge

	// Tree shape
	TreeHeight prometheus.Gauge
	TreeNodes  prometheus.Gauge

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates all metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	// gRPC request metrics
	m.GrpcRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termdict_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "status"},
	)

	m.GrpcRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "termdict_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	m.GrpcRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "termdict_grpc_requests_in_flight",
			Help: "Number of gRPC requests currently being processed",
		},
	)

	// Dictionary metrics
	m.DictOperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termdict_dict_operations_total",
			Help: "Total number of dictionary operations",
		},
		[]string{"operation", "status"},
	)

	m.DictOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "termdict_dict_operation_duration_seconds",
			Help:    "Duration of dictionary operations in seconds",
			Buckets: []float64{.000001, .000005, .00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"operation"},
	)

	m.DictLookupsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "termdict_dict_lookups_total",
			Help: "Total number of term lookups by result",
		},
		[]string{"result"},
	)

	m.DictEntries = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "termdict_dict_entries",
			Help: "Current number of terms in the dictionary",
		},
	)

	m.TreeHeight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "termdict_tree_height",
			Help: "Current number of B-Tree levels",
		},
	)

	m.TreeNodes = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "termdict_tree_nodes",
			Help: "Current number of B-Tree nodes",
		},
	)

	// Server metrics
	m.ServerUptimeSeconds = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "termdict_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	return m
}

// UpdateUptime refreshes the uptime gauge until ctx is done
func (m *Metrics) UpdateUptime(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RecordGrpcRequest records a gRPC request with its status
func (m *Metrics) RecordGrpcRequest(method string, status string, duration time.Duration) {
	m.GrpcRequestsTotal.WithLabelValues(method, status).Inc()
	m.GrpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordDictOperation records a dictionary operation
func (m *Metrics) RecordDictOperation(operation string, status string, duration time.Duration) {
	m.DictOperationsTotal.WithLabelValues(operation, status).Inc()
	m.DictOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordLookup counts a lookup as a hit or a miss
func (m *Metrics) RecordLookup(found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	m.DictLookupsTotal.WithLabelValues(result).Inc()
}

// UpdateTreeStats updates dictionary size and tree shape gauges
func (m *Metrics) UpdateTreeStats(entries int, height int, nodes int) {
	m.DictEntries.Set(float64(entries))
	m.TreeHeight.Set(float64(height))
	m.TreeNodes.Set(float64(nodes))
}

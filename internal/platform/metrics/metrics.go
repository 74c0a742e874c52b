package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowgate",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests broken down by route, method and status.",
	}, []string{"route", "method", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flowgate",
		Subsystem: "http",
		Name:      "latency_seconds",
		Help:      "Latency distribution for HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	workflowOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowgate",
		Subsystem: "workflow",
		Name:      "operations_total",
		Help:      "Total number of workflow operations broken down by operation and outcome.",
	}, []string{"operation", "outcome"})

	guardDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowgate",
		Subsystem: "authz",
		Name:      "denials_total",
		Help:      "Authorization denials broken down by operation and failed gate.",
	}, []string{"operation", "gate"})
)

// Recorder receives workflow and authorization events.
type Recorder interface {
	WorkflowOperation(operation, outcome string)
	GuardDenied(operation, gate string)
}

// Prometheus records events into the process-wide prometheus registry.
type Prometheus struct{}

// WorkflowOperation counts one workflow operation outcome.
func (Prometheus) WorkflowOperation(operation, outcome string) {
	workflowOperations.WithLabelValues(operation, outcome).Inc()
}

// GuardDenied counts one authorization denial.
func (Prometheus) GuardDenied(operation, gate string) {
	guardDenials.WithLabelValues(operation, gate).Inc()
}

// Noop discards every event.
type Noop struct{}

func (Noop) WorkflowOperation(string, string) {}
func (Noop) GuardDenied(string, string)       {}

// ObserveHTTP records a completed HTTP request.
func ObserveHTTP(route, method, status string, latency time.Duration) {
	httpRequests.WithLabelValues(route, method, status).Inc()
	httpLatency.WithLabelValues(route, method).Observe(latency.Seconds())
}

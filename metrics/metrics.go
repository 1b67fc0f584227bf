// Package metrics exposes Prometheus instrumentation for the execbox
// server: tool-call counters and latencies plus executor outcome counts.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ToolBuckets defines histogram buckets suited for tool-call latencies,
// ranging from 10ms to the 30s execution ceiling.
var ToolBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30}

var (
	// ToolCallsTotal counts MCP tool invocations by tool name and status.
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "execbox_tool_calls_total",
			Help: "Total tool invocations",
		},
		[]string{"tool", "status"},
	)

	// ToolDuration records tool-call duration in seconds by tool name.
	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "execbox_tool_duration_seconds",
			Help:    "Tool call duration",
			Buckets: ToolBuckets,
		},
		[]string{"tool"},
	)

	// ExecutionsTotal counts sandbox executions by outcome kind.
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "execbox_executions_total",
			Help: "Sandbox executions by outcome",
		},
		[]string{"outcome"},
	)

	// OutputTruncatedTotal counts executions whose output hit the size cap.
	OutputTruncatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "execbox_output_truncated_total",
			Help: "Executions with truncated output",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ToolCallsTotal,
		ToolDuration,
		ExecutionsTotal,
		OutputTruncatedTotal,
	)
}

// ObserveToolCall records one finished tool invocation.
func ObserveToolCall(tool, status string, elapsed time.Duration) {
	ToolCallsTotal.WithLabelValues(tool, status).Inc()
	ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// Serve exposes /metrics on its own listener. It blocks, so callers run it
// in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

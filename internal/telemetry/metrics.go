// Package telemetry defines the Prometheus metrics exposed on /metrics in
// HTTP mode.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snyk_mcp_tool_calls_total",
		Help: "Total number of MCP tool calls dispatched, by tool and outcome.",
	}, []string{"tool", "outcome"})

	ToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snyk_mcp_tool_duration_seconds",
		Help:    "Time spent handling a tool call, including CLI execution.",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool"})

	CLIInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snyk_mcp_cli_invocations_total",
		Help: "Total number of Snyk CLI subprocess invocations, by outcome.",
	}, []string{"outcome"})

	CLIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snyk_mcp_cli_duration_seconds",
		Help:    "Wall-clock time of one Snyk CLI subprocess invocation.",
		Buckets: prometheus.DefBuckets,
	})
)

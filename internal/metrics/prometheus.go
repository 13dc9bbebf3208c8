package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WorkflowDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "case_nexus_workflow_duration_seconds",
			Help:    "Workflow run duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"workflow"},
	)

	WorkflowTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_nexus_workflow_total",
			Help: "Total number of workflow runs",
		},
		[]string{"workflow", "status"},
	)

	TokenTotalInput = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "case_nexus_tokens_input_total",
			Help: "Cumulative input tokens reported by the Token Accountant",
		},
	)

	TokenTotalOutput = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "case_nexus_tokens_output_total",
			Help: "Cumulative output tokens reported by the Token Accountant",
		},
	)

	TokenTotalThinking = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "case_nexus_tokens_thinking_total",
			Help: "Cumulative thinking tokens reported by the Token Accountant",
		},
	)

	TokenCallCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "case_nexus_tokens_call_count",
			Help: "Cumulative completed LLM calls",
		},
	)

	ToolCallTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_nexus_tool_call_total",
			Help: "Total Tool Registry dispatches",
		},
		[]string{"tool", "status"},
	)

	ToolLoopRounds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "case_nexus_tool_loop_rounds",
			Help:    "Rounds executed per Tool Loop run",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8},
		},
	)

	GateBusyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_nexus_gate_busy_total",
			Help: "Total Request Gate collisions (busy rejections)",
		},
		[]string{"client_id"},
	)

	CitationVerificationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_nexus_citation_verification_total",
			Help: "Citations resolved by the Citation Verifier",
		},
		[]string{"verdict"},
	)

	ParseFailureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_nexus_parse_failure_total",
			Help: "Structured-output parse failures per workflow",
		},
		[]string{"workflow"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_nexus_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_nexus_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	ConnectionsDiscovered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "case_nexus_connections_discovered",
			Help: "Connections surfaced by the last health check run",
		},
	)
)

func Init() {
	prometheus.MustRegister(WorkflowDuration)
	prometheus.MustRegister(WorkflowTotal)
	prometheus.MustRegister(TokenTotalInput)
	prometheus.MustRegister(TokenTotalOutput)
	prometheus.MustRegister(TokenTotalThinking)
	prometheus.MustRegister(TokenCallCount)
	prometheus.MustRegister(ToolCallTotal)
	prometheus.MustRegister(ToolLoopRounds)
	prometheus.MustRegister(GateBusyTotal)
	prometheus.MustRegister(CitationVerificationTotal)
	prometheus.MustRegister(ParseFailureTotal)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(ConnectionsDiscovered)
}

// SetTokenTotals mirrors the Token Accountant's authoritative snapshot
// into the Prometheus gauges alongside the event-bus broadcast.
func SetTokenTotals(input, output, thinking, callCount int64) {
	TokenTotalInput.Set(float64(input))
	TokenTotalOutput.Set(float64(output))
	TokenTotalThinking.Set(float64(thinking))
	TokenCallCount.Set(float64(callCount))
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PipelineRuns counts completed pipeline invocations by outcome:
	// "rebalance", "hold", "error".
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rebalancer_pipeline_runs_total",
			Help: "Completed rebalancing pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)

	// StageFailures counts contained per-stage failures (the run itself
	// continues with a degraded value).
	StageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rebalancer_stage_failures_total",
			Help: "Contained stage failures by stage name.",
		},
		[]string{"stage"},
	)

	// OracleRequests counts outbound price oracle calls by result:
	// "ok", "error", "unparseable".
	OracleRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rebalancer_oracle_requests_total",
			Help: "Price oracle requests by result.",
		},
		[]string{"result"},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once from main.
func MustRegisterMetrics() {
	prometheus.MustRegister(PipelineRuns, StageFailures, OracleRequests)
}

package process

import "expvar"

var (
	metricRequests = expvar.NewMap("process_requests_total")
	metricFailures = expvar.NewMap("process_failures_total")
	metricLatency  = expvar.NewMap("process_latency_ms_total")
)

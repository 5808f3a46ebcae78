package push

import "expvar"

var (
	metricQueuedTotal       = expvar.NewInt("push_queued_total")
	metricDroppedTotal      = expvar.NewInt("push_dropped_total")
	metricRetryTotal        = expvar.NewInt("push_retry_total")
	metricRetryDroppedTotal = expvar.NewInt("push_retry_dropped_total")
	metricSentTotal         = expvar.NewInt("push_sent_total")
	metricFailedTotal       = expvar.NewInt("push_failed_total")
	metricCircuitOpenTotal  = expvar.NewInt("push_circuit_open_total")
	metricQueueLen          = expvar.NewInt("push_queue_len")
)

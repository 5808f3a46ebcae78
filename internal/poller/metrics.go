package poller

import "expvar"

var (
	metricPollRuns       = expvar.NewInt("poll_runs_total")
	metricPollSkipped    = expvar.NewInt("poll_skipped_total")
	metricPollDiscarded  = expvar.NewInt("poll_discarded_total")
	metricPollFailures   = expvar.NewInt("poll_failures_total")
	metricLoopsStarted   = expvar.NewInt("poll_loops_started_total")
	metricLoopsCancelled = expvar.NewInt("poll_loops_cancelled_total")
)

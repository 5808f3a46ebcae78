package simprocess

import "expvar"

var (
	metricMessages = expvar.NewMap("sim_messages_total")
	metricRejected = expvar.NewMap("sim_rejected_total")
	metricResults  = expvar.NewInt("sim_results_stored")
)

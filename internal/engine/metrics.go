package engine

import "expvar"

var (
	metricTransitions   = expvar.NewMap("engine_transitions_total")
	metricIntents       = expvar.NewMap("engine_intents_total")
	metricIntentErrors  = expvar.NewMap("engine_intent_errors_total")
	metricStaleResults  = expvar.NewInt("engine_stale_results_total")
	metricSnapshotsUsed = expvar.NewInt("engine_snapshots_applied_total")
)

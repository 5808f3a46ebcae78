package httptransport

import "expvar"

var (
	metricIntentRequests = expvar.NewMap("http_intent_requests_total")
	metricIntentErrors   = expvar.NewMap("http_intent_errors_total")

	metricStreamConnectionsTotal  = expvar.NewInt("ws_connections_total")
	metricStreamConnectionsActive = expvar.NewInt("ws_connections_active")
)

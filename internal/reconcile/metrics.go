package reconcile

import "expvar"

var (
	metricLobbyChanges    = expvar.NewInt("reconcile_lobby_list_changes_total")
	metricDetailChanges   = expvar.NewInt("reconcile_detail_changes_total")
	metricDetailUnchanged = expvar.NewInt("reconcile_detail_unchanged_total")
)

// Package metrics counts socket snapshots. Nothing here exports the counters;
// the host process decides whether to serve the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Snapshots counts successfully assembled snapshots.
	Snapshots = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socketstat_snapshots_total",
			Help: "Number of socket snapshots successfully assembled.",
		},
	)
	// QueryErrors counts failed snapshots by the stage that failed first.
	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socketstat_query_errors_total",
			Help: "Number of failed socket snapshots by the query that failed.",
		},
		[]string{"op"},
	)
)

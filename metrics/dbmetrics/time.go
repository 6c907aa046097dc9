package dbmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var SelfDatabaseRequestTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "postguard_self_database_request_time_seconds",
	Help: "The time spent in the self database",
}, []string{"query"})

var SessionStoreRequestTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "postguard_session_store_request_time_seconds",
	Help: "The time spent in the session store",
}, []string{"backend", "op"})

func StartSelfDatabaseTimer(query string) *prometheus.Timer {
	return prometheus.NewTimer(SelfDatabaseRequestTime.With(prometheus.Labels{
		"query": query,
	}))
}

func StartSessionStoreTimer(backend string, op string) *prometheus.Timer {
	return prometheus.NewTimer(SessionStoreRequestTime.With(prometheus.Labels{
		"backend": backend,
		"op":      op,
	}))
}

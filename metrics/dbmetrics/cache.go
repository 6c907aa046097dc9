package dbmetrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var SessionCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "postguard_session_cache_requests",
	Help: "The total number of session trace lookups",
}, []string{"backend", "isHit"})

var KeywordReloads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "postguard_keyword_reloads",
	Help: "The total number of keyword reloads",
}, []string{"source", "status"})

func RecordSessionCacheRequest(backend string, isHit bool) {
	SessionCacheRequests.With(prometheus.Labels{
		"backend": backend,
		"isHit":   strconv.FormatBool(isHit),
	}).Inc()
}

func RecordKeywordReload(source string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	KeywordReloads.With(prometheus.Labels{
		"source": source,
		"status": status,
	}).Inc()
}

package metrics

import (
	"strconv"

	"github.com/matrix-org/postguard/classification"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type CheckSource string

const CheckSourceHttp CheckSource = "http"
const CheckSourceNats CheckSource = "nats"
const CheckSourceCli CheckSource = "cli"

var CheckRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "postguard_check_requests",
	Help: "The total number of text check requests",
}, []string{"source"})

var Checks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "postguard_checks",
	Help: "The total number of actual text checks",
}, []string{"source", "status", "isShared"})

var CheckLabels = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "postguard_check_labels",
	Help: "The total number of non-safe labels produced by checks",
}, []string{"source", "label"})

func RecordCheckRequest(source CheckSource) {
	CheckRequests.With(prometheus.Labels{
		"source": string(source),
	}).Inc()
}

func RecordFailedCheck(source CheckSource) {
	Checks.With(prometheus.Labels{
		"source":   string(source),
		"status":   "error",
		"isShared": "false",
	}).Inc()
}

// RecordSuccessfulCheck - isShared is true when the result came from another in-flight check of the same text.
func RecordSuccessfulCheck(source CheckSource, isShared bool, triggered []classification.Label) {
	Checks.With(prometheus.Labels{
		"source":   string(source),
		"status":   "ok",
		"isShared": strconv.FormatBool(isShared),
	}).Inc()
	for _, l := range triggered {
		CheckLabels.With(prometheus.Labels{
			"source": string(source),
			"label":  l.String(),
		}).Inc()
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type AuditStatus string

const AuditStatusOk AuditStatus = "ok"
const AuditStatusError AuditStatus = "error"
const AuditStatusNotConfigured AuditStatus = "not_configured"
const AuditStatusNotAllowed AuditStatus = "not_allowed"

var AuditPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "postguard_audit_publishes",
	Help: "The total number of flagged verdicts offered to the audit webhook",
}, []string{"status"})

var FlaggedPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "postguard_flagged_publishes",
	Help: "The total number of flagged verdicts published to the message bus",
}, []string{"status"})

func RecordAuditPublish(status AuditStatus) {
	AuditPublishes.With(prometheus.Labels{
		"status": string(status),
	}).Inc()
}

func RecordFlaggedPublish(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	FlaggedPublishes.With(prometheus.Labels{
		"status": status,
	}).Inc()
}

func StartAuditWebhookTimer() *prometheus.Timer {
	return prometheus.NewTimer(AuditWebhookTime.With(prometheus.Labels{
		"status": "UNSET",
	}))
}

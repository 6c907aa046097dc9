package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var PipelineTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "postguard_pipeline_time_seconds",
	Help:    "The time spent running text through the pipeline",
	Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
}, []string{"source"})

var RequestTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "postguard_request_time_seconds",
	Help: "The time spent in each request",
}, []string{"method", "action"})

var QueueWaitTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "postguard_queue_wait_time_seconds",
	Help: "The time spent waiting in the queue",
}, []string{"waitedUntil"})

var AuditWebhookTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "postguard_audit_webhook_time_seconds",
	Help: "The time spent delivering audit webhooks",
}, []string{"status"})

func StartPipelineTimer(source CheckSource) *prometheus.Timer {
	return prometheus.NewTimer(PipelineTime.With(prometheus.Labels{
		"source": string(source),
	}))
}

func StartRequestTimer(method string, action string) *prometheus.Timer {
	return prometheus.NewTimer(RequestTime.With(prometheus.Labels{
		"method": method,
		"action": action,
	}))
}

func StartQueueTimer() *prometheus.Timer {
	return prometheus.NewTimer(QueueWaitTime.With(prometheus.Labels{
		"waitedUntil": "UNSET",
	}))
}

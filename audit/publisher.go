package audit

import (
	"errors"
	"fmt"
	"html"
	"log"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/metrics"
)

var ErrWebhookNotHttps = errors.New("webhook URL must be HTTPS")
var ErrWebhookHostNotAllowed = errors.New("webhook URL host not allowed")

// Report - A flagged verdict, as seen by moderators.
type Report struct {
	SessionId  string
	Text       string // as submitted
	MaskedText string
	Labels     []string
	Direction  string
	Warnings   []string
}

// Publisher - Sends flagged verdicts to the configured audit webhook.
type Publisher struct {
	instanceConfig *config.InstanceConfig
	queue          *Queue
}

func NewPublisher(instanceConfig *config.InstanceConfig, queue *Queue) *Publisher {
	return &Publisher{
		instanceConfig: instanceConfig,
		queue:          queue,
	}
}

// Publish - Validates the webhook URL and queues the report. Does nothing (and returns nil) when no webhook is
// configured.
func (p *Publisher) Publish(report *Report) error {
	// Note: we log the report so if the webhook fails (or isn't configured) then we
	// have an idea of what happened.
	log.Printf("[%s] Audit publish: labels=%v direction=%s", report.SessionId, report.Labels, report.Direction)

	if p.instanceConfig.AuditWebhookUrl == "" {
		metrics.RecordAuditPublish(metrics.AuditStatusNotConfigured)
		return nil // nothing to publish
	}

	whUrl, err := ValidateWebhookUrl(p.instanceConfig.AuditWebhookUrl, p.instanceConfig.AllowedWebhookDomains)
	if err != nil {
		metrics.RecordAuditPublish(metrics.AuditStatusNotAllowed)
		return err
	}

	err = p.queue.Submit(report.SessionId, RenderHtml(report, time.Now()), whUrl.String())
	if err != nil {
		metrics.RecordAuditPublish(metrics.AuditStatusError)
		return err
	}
	metrics.RecordAuditPublish(metrics.AuditStatusOk)
	return nil
}

// ValidateWebhookUrl - Parses the URL and checks it against the allowed hosts. Plain http is only accepted
// under `go test`.
func ValidateWebhookUrl(webhookUrl string, allowedHosts []string) (*url.URL, error) {
	whUrl, err := url.Parse(webhookUrl)
	if err != nil {
		return nil, err
	}
	if !testing.Testing() {
		if whUrl.Scheme != "https" {
			return nil, ErrWebhookNotHttps
		}
	}
	if !slices.Contains(allowedHosts, whUrl.Host) {
		return nil, fmt.Errorf("%w: %s", ErrWebhookHostNotAllowed, whUrl.Host)
	}
	return whUrl, nil
}

// RenderHtml - The webhook body for a report. Every user-supplied value is escaped.
func RenderHtml(report *Report, recordedAt time.Time) string {
	htmlAudit := "A message was flagged by postguard:<br/>"
	htmlAudit += fmt.Sprintf("<b>Session ID:</b> <code>%s</code><br/>", html.EscapeString(report.SessionId))
	htmlAudit += fmt.Sprintf("<b>Labels:</b> %s<br/>", html.EscapeString(strings.Join(report.Labels, ", ")))
	htmlAudit += fmt.Sprintf("<b>Direction:</b> %s<br/>", html.EscapeString(report.Direction))
	htmlAudit += fmt.Sprintf("<b>Recorded time:</b> %s<br/>", recordedAt.Format(time.RFC1123Z))
	htmlAudit += fmt.Sprintf("<b>Shown as:</b> <code>%s</code><br/>", html.EscapeString(report.MaskedText))
	if len(report.Warnings) > 0 {
		htmlAudit += "<ul>"
		for _, w := range report.Warnings {
			htmlAudit += fmt.Sprintf("<li>%s</li>", html.EscapeString(w))
		}
		htmlAudit += "</ul>"
	}
	htmlAudit += fmt.Sprintf("<details><summary>Original text (%d bytes; click to expand)</summary><pre><code>%s</code></pre></details>", len(report.Text), html.EscapeString(report.Text))
	return htmlAudit
}

package audit

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matrix-org/postguard/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeReport() *Report {
	return &Report{
		SessionId:  "session<1>",
		Text:       "You are a stupid person",
		MaskedText: "You are a ****** person",
		Labels:     []string{"Hate"},
		Direction:  "Other",
		Warnings:   []string{"this post may contain hate speech"},
	}
}

func TestRenderHtmlEscapes(t *testing.T) {
	recorded := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	report := makeReport()
	report.Text = "<script>alert(1)</script>"

	out := RenderHtml(report, recorded)
	assert.Contains(t, out, "<code>session&lt;1&gt;</code>")
	assert.Contains(t, out, "<b>Labels:</b> Hate<br/>")
	assert.Contains(t, out, "<li>this post may contain hate speech</li>")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, recorded.Format(time.RFC1123Z))
}

func TestValidateWebhookUrl(t *testing.T) {
	u, err := ValidateWebhookUrl("https://hooks.example.org/abc", []string{"hooks.example.org"})
	assert.NoError(t, err)
	assert.Equal(t, "hooks.example.org", u.Host)

	_, err = ValidateWebhookUrl("https://evil.example.org/abc", []string{"hooks.example.org"})
	assert.ErrorIs(t, err, ErrWebhookHostNotAllowed)

	_, err = ValidateWebhookUrl("://", []string{"hooks.example.org"})
	assert.Error(t, err)
}

func TestPublishNotConfigured(t *testing.T) {
	q, err := NewQueue(1)
	require.NoError(t, err)
	p := NewPublisher(&config.InstanceConfig{}, q)
	assert.NoError(t, p.Publish(makeReport()))
}

func TestPublishDeliversWebhook(t *testing.T) {
	received := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/webhook", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		body := make(map[string]any)
		assert.NoError(t, json.Unmarshal(b, &body))
		received <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	q, err := NewQueue(1)
	require.NoError(t, err)
	p := NewPublisher(&config.InstanceConfig{
		AuditWebhookUrl:       server.URL + "/webhook",
		AllowedWebhookDomains: []string{server.Listener.Addr().String()},
	}, q)
	require.NoError(t, p.Publish(makeReport()))

	select {
	case body := <-received:
		assert.Equal(t, "This verdict requires HTML.", body["text"])
		assert.Contains(t, body["html"], "You are a ****** person")
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not delivered")
	}
	assert.NoError(t, q.Release(5*time.Second))
}

func TestPublishRejectsUnlistedHost(t *testing.T) {
	q, err := NewQueue(1)
	require.NoError(t, err)
	p := NewPublisher(&config.InstanceConfig{
		AuditWebhookUrl:       "http://127.0.0.1:1/webhook",
		AllowedWebhookDomains: []string{"hooks.example.org"},
	}, q)
	err = p.Publish(makeReport())
	assert.ErrorIs(t, err, ErrWebhookHostNotAllowed)
}

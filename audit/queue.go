package audit

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/matrix-org/postguard/metrics"
	"github.com/matrix-org/postguard/version"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Queue - Delivers audit webhooks in the background.
type Queue struct {
	pool *ants.Pool
}

func NewQueue(size int) (*Queue, error) {
	pool, err := ants.NewPool(size, ants.WithOptions(ants.Options{
		// Same options as the queue.Pool setup
		ExpiryDuration:   1 * time.Minute,
		PreAlloc:         false,
		MaxBlockingTasks: 0, // no limit on submissions
		Nonblocking:      false,
		Logger:           log.Default(),
		DisablePurge:     false,
	}))
	if err != nil {
		return nil, err
	}
	return &Queue{
		pool: pool,
	}, nil
}

// Release - Waits up to the timeout for queued webhooks to be delivered, then stops the queue.
func (q *Queue) Release(timeout time.Duration) error {
	return q.pool.ReleaseTimeout(timeout)
}

// Submit - Queues a POST of the html (in Hookshot/Slack format) to the webhook URL. Delivery errors are logged,
// not returned.
func (q *Queue) Submit(id string, html string, webhookUrl string) error {
	workFn := func() {
		t := metrics.StartAuditWebhookTimer()

		reqBody := make(map[string]any)
		reqBody["html"] = html
		// Clients which don't support HTML still see something useful
		reqBody["text"] = "This verdict requires HTML."

		buf := bytes.NewBuffer(nil)
		encoder := json.NewEncoder(buf)
		encoder.SetEscapeHTML(false) // the html is escaped where it's built, so keep the JSON readable
		err := encoder.Encode(reqBody)
		if err != nil {
			log.Printf("[%s] Failed to encode JSON: %s", id, err)
			t.ObserveDurationWithExemplar(prometheus.Labels{"status": "error"})
			return
		}

		req, err := http.NewRequest("POST", webhookUrl, buf)
		if err != nil {
			log.Printf("[%s] Failed to create request: %s", id, err)
			t.ObserveDurationWithExemplar(prometheus.Labels{"status": "error"})
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", version.UserAgent())

		res, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Printf("[%s] Failed to send request: %s", id, err)
			t.ObserveDurationWithExemplar(prometheus.Labels{"status": "error"})
			return
		}
		defer res.Body.Close()
		log.Printf("[%s] Audit webhook response: %s", id, res.Status)
		t.ObserveDurationWithExemplar(prometheus.Labels{"status": res.Status})
	}
	return q.pool.Submit(workFn)
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/matrix-org/postguard/metrics"
	"github.com/matrix-org/postguard/pubsub"
	"github.com/matrix-org/postguard/queue"
	"github.com/matrix-org/postguard/storage"
)

// Worker - Consumes check requests from the message bus and publishes each result to the requesting session's
// result topic.
type Worker struct {
	pool         *queue.Pool
	pubsubClient pubsub.Client
	checkTimeout time.Duration
}

func NewWorker(pool *queue.Pool, pubsubClient pubsub.Client, checkTimeout time.Duration) *Worker {
	return &Worker{
		pool:         pool,
		pubsubClient: pubsubClient,
		checkTimeout: checkTimeout,
	}
}

// Run - Subscribes to check requests and handles them until the context ends or the subscription closes.
func (w *Worker) Run(ctx context.Context) error {
	ch, err := w.pubsubClient.Subscribe(ctx, pubsub.TopicCheck)
	if err != nil {
		return err
	}
	defer func() {
		// Fresh context: ctx is likely done by now
		unsubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.pubsubClient.Unsubscribe(unsubCtx, ch); err != nil {
			log.Printf("[worker] failed to unsubscribe: %v", err)
		}
	}()

	log.Printf("[worker] listening for check requests on %s", pubsub.TopicCheck)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case val, ok := <-ch:
			if !ok || val == pubsub.ClosingValue {
				return nil
			}
			w.handle(val)
		}
	}
}

func (w *Worker) handle(val string) {
	req := &pubsub.CheckRequest{}
	if err := json.Unmarshal([]byte(val), req); err != nil {
		log.Printf("[worker] failed to unmarshal request: %v", err)
		return
	}
	if req.SessionId == "" {
		// Nobody is listening for the result, but the trace is still useful to whoever asks later
		req.SessionId = storage.NextSessionId()
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.checkTimeout)
	resCh := make(chan *queue.PoolResult, 1)
	err := w.pool.Submit(ctx, &queue.Check{
		SessionId: req.SessionId,
		Text:      req.Text,
		Source:    metrics.CheckSourceNats,
	}, resCh)
	if err != nil {
		cancel()
		w.publish(req.SessionId, nil, err)
		return
	}

	// Wait in the background so one slow check doesn't hold up the others
	go func() {
		defer cancel()
		select {
		case res := <-resCh:
			w.publish(req.SessionId, res, res.Err)
		case <-ctx.Done():
			w.publish(req.SessionId, nil, ctx.Err())
		}
	}()
}

func (w *Worker) publish(sessionId string, res *queue.PoolResult, err error) {
	msg := &pubsub.CheckResult{SessionId: sessionId}
	if err != nil {
		log.Printf("[worker] check failed session=%s: %v", sessionId, err)
		msg.Error = errorMessage(err)
	} else {
		msg.Text = res.Result.Text
		msg.Enhancements = res.Result.Enhancements
		msg.Warnings = res.Result.Warnings
		if res.Result.Trace.IsFlagged() {
			log.Printf("[worker] FLAGGED session=%s warnings=%v", sessionId, res.Result.Warnings)
		} else {
			log.Printf("[worker] CLEAN session=%s", sessionId)
		}
	}

	b, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[worker] failed to marshal result: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = w.pubsubClient.Publish(ctx, pubsub.ResultTopic(sessionId), string(b)); err != nil {
		log.Printf("[worker] failed to publish result: %v", err)
	}
}

// errorMessage - What a requester is told about a failed check. Internal details stay in our logs.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, queue.ErrTextTooLong):
		return "text too long"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return "internal error"
	}
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/matrix-org/postguard/audit"
	"github.com/matrix-org/postguard/enhance"
	"github.com/matrix-org/postguard/metrics"
	"github.com/matrix-org/postguard/pipeline"
	"github.com/matrix-org/postguard/pubsub"
	"github.com/matrix-org/postguard/session"
	"github.com/matrix-org/postguard/tokenizer"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	typedsf "github.com/t2bot/go-typed-singleflight"
)

var ErrTextTooLong = errors.New("text is too long")
var ErrNoTokenizer = errors.New("no keywords are loaded")

// Check - A request to run text through the pipeline.
type Check struct {
	SessionId string
	Text      string
	Source    metrics.CheckSource
}

type PoolResult struct {
	SessionId string

	// Nil if there was an error.
	Result *pipeline.Result

	// The error processing the text, if any.
	Err error
}

// TokenizerProvider - Supplies the Tokenizer for each job. Implemented by keywords.Manager.
type TokenizerProvider interface {
	Tokenizer() *tokenizer.Tokenizer
}

type PoolConfig struct {
	ConcurrentPools int
	SizePerPool     int
	MaxTextLength   int // in bytes; zero for no limit
}

type Pool struct {
	tokenizers     TokenizerProvider
	enhancer       enhance.Enhancer
	sessions       session.Store
	pubsubClient   pubsub.Client
	auditPublisher *audit.Publisher
	maxTextLength  int
	internal       *ants.MultiPool
	sf             *typedsf.Group[*pipeline.Result] // keyed by text
}

// NewPool - Creates a pool. pubsubClient and auditPublisher may be nil, in which case flagged verdicts are only
// logged.
func NewPool(config *PoolConfig, tokenizers TokenizerProvider, enhancer enhance.Enhancer, sessions session.Store, pubsubClient pubsub.Client, auditPublisher *audit.Publisher) (*Pool, error) {
	internal, err := ants.NewMultiPool(config.ConcurrentPools, config.SizePerPool, ants.RoundRobin, ants.WithOptions(ants.Options{
		ExpiryDuration:   1 * time.Minute,
		PreAlloc:         false,
		MaxBlockingTasks: 0, // no limit on submissions
		Nonblocking:      false,
		// If we don't supply a panic handler then ants will print a stack trace for us
		Logger:       log.Default(),
		DisablePurge: false,
	}))
	if err != nil {
		return nil, err
	}
	return &Pool{
		tokenizers:     tokenizers,
		enhancer:       enhancer,
		sessions:       sessions,
		pubsubClient:   pubsubClient,
		auditPublisher: auditPublisher,
		maxTextLength:  config.MaxTextLength,
		internal:       internal,
		sf:             new(typedsf.Group[*pipeline.Result]),
	}, nil
}

// Close - Waits up to the timeout for running checks, then stops the pool.
func (p *Pool) Close(timeout time.Duration) error {
	return p.internal.ReleaseTimeout(timeout)
}

// Submit asks the queue to run the pipeline over the check's text. If `waitCh` is non-nil, it will be
// called with the result upon completion or error. The `waitCh` is not called if there was a submission
// error - that is instead returned from Submit.
//
// Identical texts checked at the same time share one pipeline run. Every caller's session gets the trace,
// but a flagged verdict is published (and audited) once, under the session of the check which ran it.
func (p *Pool) Submit(ctx context.Context, check *Check, waitCh chan<- *PoolResult) error {
	metrics.RecordCheckRequest(check.Source)
	if p.maxTextLength > 0 && len(check.Text) > p.maxTextLength {
		metrics.RecordFailedCheck(check.Source)
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTextTooLong, len(check.Text), p.maxTextLength)
	}

	t := metrics.StartQueueTimer()

	// Note: waitCh might be nil or unbuffered, so we spawn this in a goroutine later on.
	notifyResult := func(res *pipeline.Result, err error) {
		if err == nil {
			t.ObserveDurationWithExemplar(prometheus.Labels{"waitedUntil": "result"})
		} else if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			t.ObserveDurationWithExemplar(prometheus.Labels{"waitedUntil": "timeout"})
		} else {
			t.ObserveDurationWithExemplar(prometheus.Labels{"waitedUntil": "error"})
		}

		if waitCh != nil {
			poolResult := &PoolResult{
				SessionId: check.SessionId,
				Result:    res,
				Err:       err,
			}

			// First, check to see if the channel is likely going to be closed already
			if err := ctx.Err(); err != nil {
				log.Printf("[%s | %s] Result channel closed, not sending result: %s", check.SessionId, check.Source, err)
				return
			}

			// Consider the context in our delivery of the result
			select {
			case waitCh <- poolResult:
			case <-ctx.Done():
				log.Printf("[%s | %s] Result channel closed, not sending result: %s", check.SessionId, check.Source, ctx.Err())
			}
		}
	}

	workFn := func() {
		// If the context is cancelled, save CPU and don't bother checking
		if err := ctx.Err(); err != nil {
			metrics.RecordFailedCheck(check.Source)
			log.Printf("[%s | %s] Not checking because context was cancelled/timed out", check.SessionId, check.Source)
			go notifyResult(nil, err)
			return
		}

		// Ask the singleflight to do the work (deduplicating identical texts)
		res, err, shared := p.sf.Do(check.Text, func() (*pipeline.Result, error) {
			tok := p.tokenizers.Tokenizer()
			if tok == nil {
				return nil, ErrNoTokenizer
			}
			pt := metrics.StartPipelineTimer(check.Source)
			res := pipeline.New(tok, p.enhancer).Run(check.Text)
			pt.ObserveDuration()

			// Once per pipeline run: callers sharing this result don't repeat the reports
			p.reportFlagged(check, res)
			return res, nil
		})
		if res == nil && err == nil {
			// "should never happen"
			err = errors.New("nil result")
		}
		if err != nil {
			metrics.RecordFailedCheck(check.Source)
			log.Printf("[%s | %s] Check failed: %s", check.SessionId, check.Source, err)
			go notifyResult(nil, err)
			return
		}
		metrics.RecordSuccessfulCheck(check.Source, shared, res.Trace.Triggered)

		p.storeTrace(check, res)
		go notifyResult(res, nil)
	}

	return p.internal.Submit(workFn)
}

// Check - Submits the check and waits for its result, or for the context to end.
func (p *Pool) Check(ctx context.Context, check *Check) (*pipeline.Result, error) {
	ch := make(chan *PoolResult, 1)
	if err := p.Submit(ctx, check, ch); err != nil {
		return nil, err
	}
	select {
	case res := <-ch:
		return res.Result, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// storeTrace - Records the trace against the check's session. Failures are logged; the verdict itself still stands.
func (p *Pool) storeTrace(check *Check, res *pipeline.Result) {
	if p.sessions == nil || check.SessionId == "" {
		return
	}

	// Fresh context so a caller that's already gone doesn't lose the trace
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.sessions.Put(ctx, check.SessionId, res.Trace); err != nil {
		log.Printf("[%s | %s] Failed to store trace: %s", check.SessionId, check.Source, err)
	}
}

// reportFlagged - Publishes flagged verdicts to pubsub and the audit webhook. Failures are logged.
func (p *Pool) reportFlagged(check *Check, res *pipeline.Result) {
	if !res.Trace.IsFlagged() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	labels := make([]string, 0, len(res.Trace.Triggered))
	for _, l := range res.Trace.Triggered {
		labels = append(labels, l.String())
	}
	log.Printf("[%s | %s] Flagged: %v", check.SessionId, check.Source, labels)

	if p.pubsubClient != nil {
		b, err := json.Marshal(&pubsub.FlaggedVerdict{
			SessionId:  check.SessionId,
			Text:       check.Text,
			MaskedText: res.Trace.MaskedText,
			Labels:     labels,
			Warnings:   res.Warnings,
		})
		if err == nil {
			err = p.pubsubClient.Publish(ctx, pubsub.TopicFlagged, string(b))
		}
		if err != nil {
			log.Printf("[%s | %s] Failed to publish flagged verdict: %s", check.SessionId, check.Source, err)
		}
		metrics.RecordFlaggedPublish(err == nil)
	}

	if p.auditPublisher != nil {
		err := p.auditPublisher.Publish(&audit.Report{
			SessionId:  check.SessionId,
			Text:       check.Text,
			MaskedText: res.Trace.MaskedText,
			Labels:     labels,
			Direction:  string(res.Trace.Direction),
			Warnings:   res.Warnings,
		})
		if err != nil {
			log.Printf("[%s | %s] Failed to publish audit report: %s", check.SessionId, check.Source, err)
		}
	}
}

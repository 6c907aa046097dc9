package queue

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matrix-org/postguard/audit"
	"github.com/matrix-org/postguard/classification"
	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/enhance"
	"github.com/matrix-org/postguard/metrics"
	"github.com/matrix-org/postguard/pubsub"
	"github.com/matrix-org/postguard/session"
	"github.com/matrix-org/postguard/test"
	"github.com/matrix-org/postguard/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedTokenizer struct {
	tok *tokenizer.Tokenizer
}

func (f *fixedTokenizer) Tokenizer() *tokenizer.Tokenizer {
	return f.tok
}

// gatedTokenizer - Holds every pipeline run until released, counting how many runs asked for a tokenizer.
type gatedTokenizer struct {
	tok     *tokenizer.Tokenizer
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedTokenizer) Tokenizer() *tokenizer.Tokenizer {
	g.calls.Add(1)
	<-g.release
	return g.tok
}

func makePool(t *testing.T, provider TokenizerProvider, sessions session.Store, ps pubsub.Client) *Pool {
	pool, err := NewPool(&PoolConfig{
		ConcurrentPools: 1,
		SizePerPool:     5,
		MaxTextLength:   100,
	}, provider, enhance.NewDefault(nil), sessions, ps, nil)
	require.NoError(t, err)
	require.NotNil(t, pool)
	t.Cleanup(func() {
		_ = pool.Close(time.Second)
	})
	return pool
}

func TestPool(t *testing.T) {
	sessions := session.NewMemoryStore(time.Minute)
	ps := test.NewMemoryPubsub(t)
	defer ps.Close()
	pool := makePool(t, &fixedTokenizer{tokenizer.New(test.MustMakeLexicon(t))}, sessions, ps)

	ch := make(chan *PoolResult, 1)
	err := pool.Submit(context.Background(), &Check{
		SessionId: "session1",
		Text:      "Hello everyone! Have a great day",
		Source:    metrics.CheckSourceHttp,
	}, ch)
	assert.NoError(t, err)

	poolResult := <-ch
	require.NotNil(t, poolResult)
	assert.NoError(t, poolResult.Err)
	assert.Equal(t, "session1", poolResult.SessionId)
	assert.Equal(t, "Hello everyone! Have a great day", poolResult.Result.Text)
	assert.Empty(t, poolResult.Result.Warnings)

	trace, err := sessions.Get(context.Background(), "session1")
	assert.NoError(t, err)
	require.NotNil(t, trace)
	assert.Equal(t, classification.Safe, trace.ContentLabel)
}

func TestPoolSendsAuditWebhook(t *testing.T) {
	bodyCh := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodyCh <- string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	srvUrl, err := url.Parse(srv.URL)
	require.NoError(t, err)

	auditQueue := test.MustMakeAuditQueue(1)
	defer auditQueue.Release(time.Second)
	publisher := audit.NewPublisher(&config.InstanceConfig{
		AuditWebhookUrl:       srv.URL,
		AllowedWebhookDomains: []string{srvUrl.Host},
	}, auditQueue)

	pool, err := NewPool(&PoolConfig{
		ConcurrentPools: 1,
		SizePerPool:     5,
		MaxTextLength:   100,
	}, &fixedTokenizer{tokenizer.New(test.MustMakeLexicon(t))}, nil, nil, nil, publisher)
	require.NoError(t, err)
	defer pool.Close(time.Second)

	// Safe text never reaches the webhook
	_, err = pool.Check(context.Background(), &Check{SessionId: "safe", Text: "Have a great day", Source: metrics.CheckSourceCli})
	require.NoError(t, err)
	_, err = pool.Check(context.Background(), &Check{SessionId: "flagged", Text: "You are a stupid person", Source: metrics.CheckSourceCli})
	require.NoError(t, err)

	select {
	case body := <-bodyCh:
		assert.Contains(t, body, "<code>flagged</code>")
		assert.Contains(t, body, "You are a ****** person")
	case <-time.After(5 * time.Second):
		t.Fatal("audit webhook not called")
	}
}

func TestPoolPublishesFlaggedVerdicts(t *testing.T) {
	ctx := context.Background()
	ps := test.NewMemoryPubsub(t)
	defer ps.Close()
	flaggedCh, err := ps.Subscribe(ctx, pubsub.TopicFlagged)
	require.NoError(t, err)

	pool := makePool(t, &fixedTokenizer{tokenizer.New(test.MustMakeLexicon(t))}, nil, ps)
	res, err := pool.Check(ctx, &Check{
		SessionId: "session1",
		Text:      "You are a stupid person",
		Source:    metrics.CheckSourceNats,
	})
	require.NoError(t, err)
	assert.Equal(t, "You are a ****** person", res.Text)
	assert.Equal(t, []string{"this post may contain hate speech"}, res.Warnings)

	select {
	case val := <-flaggedCh:
		verdict := &pubsub.FlaggedVerdict{}
		require.NoError(t, json.Unmarshal([]byte(val), verdict))
		assert.Equal(t, "session1", verdict.SessionId)
		assert.Equal(t, "You are a stupid person", verdict.Text)
		assert.Equal(t, []string{"Hate"}, verdict.Labels)
	case <-time.After(5 * time.Second):
		t.Fatal("flagged verdict not published")
	}
}

func TestPoolReportsSharedChecksOnce(t *testing.T) {
	ctx := context.Background()
	ps := test.NewMemoryPubsub(t)
	defer ps.Close()

	provider := &gatedTokenizer{
		tok:     tokenizer.New(test.MustMakeLexicon(t)),
		release: make(chan struct{}),
	}
	sessions := session.NewMemoryStore(time.Minute)
	pool := makePool(t, provider, sessions, ps)

	const checks = 4
	wg := sync.WaitGroup{}
	for i := 0; i < checks; i++ {
		wg.Add(1)
		go func(sessionId string) {
			defer wg.Done()
			res, err := pool.Check(ctx, &Check{SessionId: sessionId, Text: "You are a stupid person", Source: metrics.CheckSourceHttp})
			assert.NoError(t, err)
			if assert.NotNil(t, res) {
				assert.Equal(t, "You are a ****** person", res.Text)
			}
		}("session" + strconv.Itoa(i))
	}

	// Let the checks pile up behind the first run
	time.Sleep(100 * time.Millisecond)
	close(provider.release)
	wg.Wait()

	runs := int(provider.calls.Load())
	assert.GreaterOrEqual(t, runs, 1)
	assert.Len(t, ps.Published(pubsub.TopicFlagged), runs)

	// Every caller still has its own trace
	for i := 0; i < checks; i++ {
		trace, err := sessions.Get(ctx, "session"+strconv.Itoa(i))
		assert.NoError(t, err)
		assert.NotNil(t, trace)
	}
}

func TestPoolConcurrentChecks(t *testing.T) {
	pool := makePool(t, &fixedTokenizer{tokenizer.New(test.MustMakeLexicon(t))}, nil, nil)

	texts := map[string]string{
		"I will kill him":         "I will **** him",
		"You are a stupid person": "You are a ****** person",
		"#fun #coding #python":    "<span class='hashtag'>#fun</span> <span class='hashtag'>#coding</span> <span class='hashtag'>#python</span>",
	}
	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		for text, expected := range texts {
			wg.Add(1)
			go func(text string, expected string) {
				defer wg.Done()
				res, err := pool.Check(context.Background(), &Check{Text: text, Source: metrics.CheckSourceCli})
				assert.NoError(t, err)
				if assert.NotNil(t, res) {
					assert.Equal(t, expected, res.Text)
				}
			}(text, expected)
		}
	}
	wg.Wait()
}

func TestPoolHandlesErrors(t *testing.T) {
	pool := makePool(t, &fixedTokenizer{nil}, nil, nil)

	ch := make(chan *PoolResult, 1)
	err := pool.Submit(context.Background(), &Check{Text: "anything", Source: metrics.CheckSourceHttp}, ch)
	assert.NoError(t, err)

	poolResult := <-ch
	require.NotNil(t, poolResult)
	assert.Equal(t, &PoolResult{
		Result: nil,
		Err:    ErrNoTokenizer,
	}, poolResult)
}

func TestPoolRejectsLongText(t *testing.T) {
	pool := makePool(t, &fixedTokenizer{tokenizer.New(test.MustMakeLexicon(t))}, nil, nil)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	err := pool.Submit(context.Background(), &Check{Text: string(long), Source: metrics.CheckSourceHttp}, nil)
	assert.ErrorIs(t, err, ErrTextTooLong)
}

func TestPoolCancelledContext(t *testing.T) {
	pool := makePool(t, &fixedTokenizer{tokenizer.New(test.MustMakeLexicon(t))}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := pool.Check(ctx, &Check{Text: "hello", Source: metrics.CheckSourceHttp})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

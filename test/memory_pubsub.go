package test

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/matrix-org/postguard/pubsub"
	"github.com/stretchr/testify/assert"
)

// MemoryPubsub - An in-process pubsub.Client. Delivery is asynchronous, like the real clients, and every published
// value is also recorded so tests can count what was sent without subscribing first.
type MemoryPubsub struct {
	t           *testing.T
	lock        sync.Mutex
	subscribers map[string][]chan string
	published   map[string][]string
}

func NewMemoryPubsub(t *testing.T) *MemoryPubsub {
	return &MemoryPubsub{
		t:           t,
		subscribers: make(map[string][]chan string),
		published:   make(map[string][]string),
	}
}

func (m *MemoryPubsub) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, chans := range m.subscribers {
		for _, ch := range chans {
			go sendThenClose(ch)
		}
	}
	m.subscribers = make(map[string][]chan string)
	return nil
}

func sendThenClose(ch chan string) {
	ch <- pubsub.ClosingValue
	close(ch)
}

func (m *MemoryPubsub) Publish(ctx context.Context, topic string, val string) error {
	assert.NotNil(m.t, ctx, "context is required")
	assert.NotEmpty(m.t, topic, "topic is required")

	m.lock.Lock()
	defer m.lock.Unlock()

	m.published[topic] = append(m.published[topic], val)
	for _, ch := range m.subscribers[topic] {
		// Async to avoid blocking calling code
		go func(ch chan string) {
			ch <- val
		}(ch)
	}

	return nil
}

func (m *MemoryPubsub) Subscribe(ctx context.Context, topic string) (<-chan string, error) {
	assert.NotNil(m.t, ctx, "context is required")
	assert.NotEmpty(m.t, topic, "topic is required")

	m.lock.Lock()
	defer m.lock.Unlock()

	ch := make(chan string)
	m.subscribers[topic] = append(m.subscribers[topic], ch)
	return ch, nil
}

func (m *MemoryPubsub) Unsubscribe(ctx context.Context, ch <-chan string) error {
	assert.NotNil(m.t, ctx, "context is required")
	assert.NotNil(m.t, ch, "ch is required")

	m.lock.Lock()
	defer m.lock.Unlock()

	for topic, chans := range m.subscribers {
		if i := slices.IndexFunc(chans, func(c chan string) bool { return c == ch }); i >= 0 {
			go sendThenClose(chans[i])
			m.subscribers[topic] = slices.Delete(chans, i, i+1)
			return nil
		}
	}

	return nil
}

// SubscriberCount - The number of open subscriptions to the topic.
func (m *MemoryPubsub) SubscriberCount(topic string) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.subscribers[topic])
}

// Published - Every value published to the topic so far, oldest first.
func (m *MemoryPubsub) Published(topic string) []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return slices.Clone(m.published[topic])
}

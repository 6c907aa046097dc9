package pubsub

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeDetachedPubsub - A PostgresPubsub with subscribers but no database or listener behind it.
func makeDetachedPubsub(topics ...string) (*PostgresPubsub, map[string]chan string) {
	p := &PostgresPubsub{subscribers: make(map[string][]chan string)}
	chans := make(map[string]chan string)
	for _, topic := range topics {
		ch := make(chan string)
		chans[topic] = ch
		p.subscribers[topic] = append(p.subscribers[topic], ch)
	}
	return p, chans
}

func receive(t *testing.T, ch <-chan string) string {
	select {
	case val := <-ch:
		return val
	case <-time.After(5 * time.Second):
		t.Fatal("nothing received")
		return ""
	}
}

func TestPostgresPubsubDeliversToTopic(t *testing.T) {
	t.Parallel()

	p, chans := makeDetachedPubsub(TopicKeywordsUpdated, "other")
	go p.deliver(TopicKeywordsUpdated, "postgres")
	assert.Equal(t, "postgres", receive(t, chans[TopicKeywordsUpdated]))

	select {
	case val := <-chans["other"]:
		t.Fatalf("unexpected value on other topic: %s", val)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPostgresPubsubBroadcastsReconnects(t *testing.T) {
	t.Parallel()

	p, chans := makeDetachedPubsub(TopicKeywordsUpdated, "other")
	p.broadcast(ReconnectedValue)
	assert.Equal(t, ReconnectedValue, receive(t, chans[TopicKeywordsUpdated]))
	assert.Equal(t, ReconnectedValue, receive(t, chans["other"]))
}

func TestPostgresPubsubRejectsLargePayloads(t *testing.T) {
	t.Parallel()

	p, _ := makeDetachedPubsub()
	err := p.Publish(context.Background(), TopicKeywordsUpdated, strings.Repeat("a", MaxNotifyPayload+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestPostgresPubsubUnsubscribeAndClose(t *testing.T) {
	t.Parallel()

	p, chans := makeDetachedPubsub(TopicKeywordsUpdated, "other")
	require.NoError(t, p.Unsubscribe(context.Background(), chans[TopicKeywordsUpdated]))
	assert.Equal(t, ClosingValue, receive(t, chans[TopicKeywordsUpdated]))
	assert.Empty(t, p.subscribers[TopicKeywordsUpdated])

	require.NoError(t, p.Close())
	assert.Equal(t, ClosingValue, receive(t, chans["other"]))
	_, ok := <-chans["other"]
	assert.False(t, ok)
}

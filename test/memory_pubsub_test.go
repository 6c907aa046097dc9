package test

import (
	"context"
	"testing"

	"github.com/matrix-org/postguard/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The fakes get tested too, so other packages' tests can trust them
func TestMemoryPubsub(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ps := NewMemoryPubsub(t)
	topic := pubsub.TopicFlagged

	ch1, err := ps.Subscribe(ctx, topic)
	require.NoError(t, err)
	require.NotNil(t, ch1)

	require.NoError(t, ps.Publish(ctx, topic, "first"))
	assert.Equal(t, "first", <-ch1)

	// A second subscriber receives alongside the first
	ch2, err := ps.Subscribe(ctx, topic)
	require.NoError(t, err)

	require.NoError(t, ps.Publish(ctx, topic, "second"))
	assert.Equal(t, "second", <-ch1)
	assert.Equal(t, "second", <-ch2)

	// Closing the pubsub closes every subscriber
	require.NoError(t, ps.Close())
	assert.Equal(t, pubsub.ClosingValue, <-ch1)
	assert.Equal(t, pubsub.ClosingValue, <-ch2)
	_, ok := <-ch1
	assert.False(t, ok)
}

func TestMemoryPubsubUnsubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ps := NewMemoryPubsub(t)
	topic := pubsub.ResultTopic("session1")

	ch, err := ps.Subscribe(ctx, topic)
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, topic, "result"))
	assert.Equal(t, "result", <-ch)

	require.NoError(t, ps.Unsubscribe(ctx, ch))
	require.NoError(t, ps.Publish(ctx, topic, "result"))
	assert.Equal(t, pubsub.ClosingValue, <-ch) // not "result" this time
}

func TestMemoryPubsubSubscriberCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ps := NewMemoryPubsub(t)

	ch, err := ps.Subscribe(ctx, pubsub.TopicCheck)
	require.NoError(t, err)
	assert.Equal(t, 1, ps.SubscriberCount(pubsub.TopicCheck))
	assert.Equal(t, 0, ps.SubscriberCount(pubsub.TopicFlagged))

	require.NoError(t, ps.Unsubscribe(ctx, ch))
	assert.Equal(t, 0, ps.SubscriberCount(pubsub.TopicCheck))
	assert.Equal(t, pubsub.ClosingValue, <-ch)
}

func TestMemoryPubsubRecordsPublished(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ps := NewMemoryPubsub(t)

	// Recorded even with nobody listening
	require.NoError(t, ps.Publish(ctx, pubsub.TopicKeywordsUpdated, "postgres"))
	require.NoError(t, ps.Publish(ctx, pubsub.TopicKeywordsUpdated, "file"))
	assert.Equal(t, []string{"postgres", "file"}, ps.Published(pubsub.TopicKeywordsUpdated))
	assert.Empty(t, ps.Published(pubsub.TopicFlagged))
}

package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNatsSubscriptionDelivery(t *testing.T) {
	t.Parallel()

	s := newNatsSubscription()
	go s.deliver("one")
	assert.Equal(t, "one", <-s.ch)

	s.close()
	assert.Equal(t, ClosingValue, <-s.ch)
	_, ok := <-s.ch
	assert.False(t, ok, "channel should be closed")

	// Delivering after close must neither block nor panic
	finished := make(chan struct{})
	go func() {
		s.deliver("late")
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked after close")
	}
}

func TestNatsSubscriptionCloseUnblocksDelivery(t *testing.T) {
	t.Parallel()

	s := newNatsSubscription()
	finished := make(chan struct{})
	go func() {
		s.deliver("nobody reads this")
		close(finished)
	}()

	// Give the delivery a moment to block on the unread channel
	time.Sleep(10 * time.Millisecond)
	s.close()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("deliver stayed blocked after close")
	}
	assert.Equal(t, ClosingValue, <-s.ch)
}

func TestResultTopic(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "postguard.result.abc", ResultTopic("abc"))
}

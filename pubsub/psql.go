package pubsub

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/matrix-org/postguard/storage"
)

// MaxNotifyPayload - Postgres rejects NOTIFY payloads of 8000 bytes or more.
const MaxNotifyPayload = 7999

// ReconnectedValue - Sent to every subscriber after the listener reconnects, because notifications sent while it
// was disconnected are lost. Keyword subscribers reload on it.
const ReconnectedValue = "<<RECONNECTED>>"

var ErrPayloadTooLarge = errors.New("payload too large for a postgres notification")

type PostgresPubsubConnectionConfig struct {
	Uri                  string
	MinReconnectInterval time.Duration
	MaxReconnectInterval time.Duration
}

// PostgresPubsub - A Client over Postgres LISTEN/NOTIFY, used to announce keyword list changes between processes
// sharing a database. Topics must be valid channel names, and payloads must fit in MaxNotifyPayload.
type PostgresPubsub struct {
	db          *storage.PostgresStorage
	listener    *pq.Listener
	lock        sync.Mutex
	subscribers map[string][]chan string
}

func NewPostgresPubsub(db *storage.PostgresStorage, config *PostgresPubsubConnectionConfig) (*PostgresPubsub, error) {
	p := &PostgresPubsub{
		db:          db,
		subscribers: make(map[string][]chan string),
	}
	p.listener = pq.NewListener(config.Uri, config.MinReconnectInterval, config.MaxReconnectInterval, p.onListenerEvent)
	go p.notifyLoop()
	return p, nil
}

func (p *PostgresPubsub) onListenerEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventDisconnected:
		log.Printf("[pubsub | postgres] Listener disconnected: %v", err)
	case pq.ListenerEventConnectionAttemptFailed:
		log.Printf("[pubsub | postgres] Listener connection attempt failed: %v", err)
	case pq.ListenerEventReconnected:
		log.Println("[pubsub | postgres] Listener reconnected; telling subscribers they may have missed notices")
		p.broadcast(ReconnectedValue)
	}
}

func (p *PostgresPubsub) notifyLoop() {
	for {
		select {
		case n, ok := <-p.listener.Notify:
			if !ok {
				return // listener closed
			}
			if n == nil {
				continue // reconnect; handled by onListenerEvent
			}
			log.Printf("[pubsub | postgres] Notice on %s: '%s'", n.Channel, n.Extra)
			p.deliver(n.Channel, n.Extra)
		case <-time.After(30 * time.Second):
			//goland:noinspection GoUnhandledErrorResult
			go p.listener.Ping()
		}
	}
}

// deliver - Sends the value to the topic's subscribers, in subscription order.
func (p *PostgresPubsub) deliver(topic string, val string) {
	p.lock.Lock()
	chans := append([]chan string(nil), p.subscribers[topic]...)
	p.lock.Unlock()
	for _, ch := range chans {
		ch <- val
	}
}

// broadcast - Sends the value to every subscriber of every topic without blocking the caller.
func (p *PostgresPubsub) broadcast(val string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, chans := range p.subscribers {
		for _, ch := range chans {
			go func(ch chan string) {
				ch <- val
			}(ch)
		}
	}
}

func (p *PostgresPubsub) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, chans := range p.subscribers {
		for _, ch := range chans {
			go closeSubscriber(ch)
		}
	}
	p.subscribers = make(map[string][]chan string)
	if p.listener == nil {
		return nil
	}
	return p.listener.Close()
}

func closeSubscriber(ch chan string) {
	ch <- ClosingValue
	close(ch)
}

func (p *PostgresPubsub) Publish(ctx context.Context, topic string, val string) error {
	if len(val) > MaxNotifyPayload {
		return fmt.Errorf("%w: %d bytes on %s", ErrPayloadTooLarge, len(val), topic)
	}
	return p.db.SendNotify(ctx, topic, val)
}

func (p *PostgresPubsub) Subscribe(ctx context.Context, topic string) (<-chan string, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	ch := make(chan string)

	// LISTEN once per topic, no matter how many subscribers share it
	if len(p.subscribers[topic]) == 0 {
		err := p.listener.Listen(topic)
		if err != nil && !errors.Is(err, pq.ErrChannelAlreadyOpen) {
			return nil, err
		}
	}

	p.subscribers[topic] = append(p.subscribers[topic], ch)
	return ch, nil
}

func (p *PostgresPubsub) Unsubscribe(ctx context.Context, ch <-chan string) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	for topic, chans := range p.subscribers {
		for i, maybeCh := range chans {
			if maybeCh == ch {
				go closeSubscriber(maybeCh)
				p.subscribers[topic] = append(chans[:i], chans[i+1:]...)
				return nil
			}
		}
	}

	return nil
}

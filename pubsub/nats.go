package pubsub

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

type NatsConnectionConfig struct {
	Url           string
	Name          string
	ReconnectWait time.Duration
	MaxReconnects int // -1 for infinite
}

// NatsPubsub - A Client over NATS subjects. Values are sent as the raw message data.
type NatsPubsub struct {
	conn *nats.Conn
	lock sync.Mutex
	subs map[<-chan string]*natsSubscription
}

type natsSubscription struct {
	sub    *nats.Subscription
	ch     chan string
	done   chan struct{}
	lock   sync.Mutex
	closed bool
}

func newNatsSubscription() *natsSubscription {
	return &natsSubscription{
		ch:   make(chan string),
		done: make(chan struct{}),
	}
}

func (s *natsSubscription) deliver(val string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- val:
	case <-s.done:
	}
}

// close - Stops delivery, then sends the ClosingValue and closes the channel without blocking the caller.
func (s *natsSubscription) close() {
	close(s.done)
	go func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		s.closed = true
		s.ch <- ClosingValue
		close(s.ch)
	}()
}

func NewNatsPubsub(config *NatsConnectionConfig) (*NatsPubsub, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.Url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &NatsPubsub{
		conn: nc,
		subs: make(map[<-chan string]*natsSubscription),
	}, nil
}

func (n *NatsPubsub) Close() error {
	n.lock.Lock()
	defer n.lock.Unlock()

	for _, s := range n.subs {
		if err := s.sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", s.sub.Subject, err)
		}
		s.close()
	}
	n.subs = make(map[<-chan string]*natsSubscription)

	if err := n.conn.Drain(); err != nil {
		return fmt.Errorf("nats connection drain: %w", err)
	}
	return nil
}

func (n *NatsPubsub) Publish(ctx context.Context, topic string, val string) error {
	return n.conn.Publish(topic, []byte(val))
}

func (n *NatsPubsub) Subscribe(ctx context.Context, topic string) (<-chan string, error) {
	s := newNatsSubscription()
	sub, err := n.conn.Subscribe(topic, func(msg *nats.Msg) {
		s.deliver(string(msg.Data))
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", topic, err)
	}
	s.sub = sub

	n.lock.Lock()
	n.subs[s.ch] = s
	n.lock.Unlock()
	return s.ch, nil
}

func (n *NatsPubsub) Unsubscribe(ctx context.Context, ch <-chan string) error {
	n.lock.Lock()
	s, ok := n.subs[ch]
	delete(n.subs, ch)
	n.lock.Unlock()
	if !ok {
		return nil
	}

	err := s.sub.Unsubscribe()
	s.close()
	if err != nil {
		return fmt.Errorf("nats unsubscribe %s: %w", s.sub.Subject, err)
	}
	return nil
}

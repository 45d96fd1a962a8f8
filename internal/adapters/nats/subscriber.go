package natsadapter

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Subscriber implements ports.EventSubscriber with core NATS subscriptions.
// Relayed events are live only; nothing is replayed from the stream.
type Subscriber struct {
	conn *nats.Conn

	mu   sync.Mutex
	subs map[*nats.Subscription]struct{}
}

// NewSubscriber wraps an existing connection.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn, subs: make(map[*nats.Subscription]struct{})}
}

// SubscribeScreenEvents delivers raw event payloads for screenID, or for
// every screen when screenID is empty.
func (s *Subscriber) SubscribeScreenEvents(screenID string, handler func(data []byte)) (func(), error) {
	subject := SubjectPrefix + ">"
	if screenID != "" {
		subject = SubjectPrefix + screenID + ".>"
	}

	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, sub)
			s.mu.Unlock()
			_ = sub.Unsubscribe()
		})
	}, nil
}

// Close unsubscribes everything and drains.
func (s *Subscriber) Close() {
	s.mu.Lock()
	for sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = map[*nats.Subscription]struct{}{}
	s.mu.Unlock()
	_ = s.conn.Drain()
}

package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

const subscriptionBuffer = 64

// MemoryBroker is an in-process broker. Slow subscribers lose messages
// instead of blocking publishers.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[*memorySub]struct{}
	logger zerolog.Logger
	closed bool
}

// NewMemory creates a new in-memory broker.
func NewMemory(logger zerolog.Logger) *MemoryBroker {
	return &MemoryBroker{
		subs:   make(map[string]map[*memorySub]struct{}),
		logger: logger.With().Str("broker", "memory").Logger(),
	}
}

// Publish delivers msg to every subscriber of its table and key.
func (b *MemoryBroker) Publish(_ context.Context, msg Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs[topic(msg.Table, msg.Key)] {
		select {
		case s.ch <- msg:
		default:
			b.logger.Warn().Str("table", msg.Table).Str("kind", string(msg.Kind)).Msg("subscriber full, dropping event")
		}
	}
	return nil
}

// Subscribe registers a subscription for table rows matching key.
func (b *MemoryBroker) Subscribe(_ context.Context, table, key string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &memorySub{broker: b, topic: topic(table, key), ch: make(chan Message, subscriptionBuffer)}
	if b.closed {
		close(s.ch)
		s.done = true
		return s, nil
	}
	if b.subs[s.topic] == nil {
		b.subs[s.topic] = make(map[*memorySub]struct{})
	}
	b.subs[s.topic][s] = struct{}{}
	return s, nil
}

// Close tears down every open subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, set := range b.subs {
		for s := range set {
			s.done = true
			close(s.ch)
		}
	}
	b.subs = make(map[string]map[*memorySub]struct{})
	b.closed = true
	return nil
}

type memorySub struct {
	broker *MemoryBroker
	topic  string
	ch     chan Message
	done   bool
}

func (s *memorySub) C() <-chan Message { return s.ch }

func (s *memorySub) Close() error {
	b := s.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	delete(b.subs[s.topic], s)
	if len(b.subs[s.topic]) == 0 {
		delete(b.subs, s.topic)
	}
	close(s.ch)
	return nil
}

// Ensure MemoryBroker implements the Broker interface.
var _ Broker = (*MemoryBroker)(nil)

package remote

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/realtime"
)

// Subscription is a typed view over a broker subscription.
type Subscription[T any] struct {
	events chan domain.Event[T]
	raw    realtime.Subscription
	done   chan struct{}
	once   sync.Once
}

// Subscribe opens a broker subscription and decodes its records into T.
// Undecodable messages are logged and skipped.
func Subscribe[T any](ctx context.Context, b realtime.Broker, table, key string, logger zerolog.Logger) (*Subscription[T], error) {
	raw, err := b.Subscribe(ctx, table, key)
	if err != nil {
		return nil, err
	}
	s := &Subscription[T]{
		events: make(chan domain.Event[T]),
		raw:    raw,
		done:   make(chan struct{}),
	}
	go s.pump(table, logger)
	return s, nil
}

func (s *Subscription[T]) pump(table string, logger zerolog.Logger) {
	defer close(s.events)
	for msg := range s.raw.C() {
		var rec T
		if err := json.Unmarshal(msg.Record, &rec); err != nil {
			logger.Warn().Err(err).Str("table", table).Msg("skipping undecodable change event")
			continue
		}
		select {
		case s.events <- domain.Event[T]{Kind: msg.Kind, Record: rec}:
		case <-s.done:
			return
		}
	}
}

// Events yields decoded events until the subscription is closed.
func (s *Subscription[T]) Events() <-chan domain.Event[T] {
	return s.events
}

// Close unsubscribes. Events not yet received are dropped.
func (s *Subscription[T]) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.raw.Close()
	})
	return err
}

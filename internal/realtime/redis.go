package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBroker relays messages over Redis pub/sub so that every process
// sharing the remote store converges on the same changes.
type RedisBroker struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedis connects to url (e.g. "redis://localhost:6379"). Channels are
// named "<prefix>:<table>:<key>".
func NewRedis(ctx context.Context, url, prefix string, logger zerolog.Logger) (*RedisBroker, error) {
	if url == "" {
		return nil, fmt.Errorf("redis broker: url is required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis broker: invalid URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis broker: connection failed: %w", err)
	}

	return &RedisBroker{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("broker", "redis").Logger(),
	}, nil
}

func (b *RedisBroker) channel(table, key string) string {
	return b.prefix + ":" + topic(table, key)
}

func (b *RedisBroker) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("redis broker: marshal failed: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(msg.Table, msg.Key), data).Err(); err != nil {
		b.logger.Error().Err(err).Str("table", msg.Table).Msg("failed to publish event")
		return fmt.Errorf("redis broker: publish failed: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, table, key string) (Subscription, error) {
	ps := b.client.Subscribe(ctx, b.channel(table, key))
	// 等待订阅确认，连接失败时尽早返回错误
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis broker: subscribe failed: %w", err)
	}

	s := &redisSub{ps: ps, ch: make(chan Message, subscriptionBuffer), done: make(chan struct{})}
	go s.pump(b.logger)
	return s, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}

type redisSub struct {
	ps   *redis.PubSub
	ch   chan Message
	done chan struct{}
	once sync.Once
}

func (s *redisSub) pump(logger zerolog.Logger) {
	defer close(s.ch)
	for m := range s.ps.Channel() {
		var msg Message
		if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
			logger.Warn().Err(err).Str("channel", m.Channel).Msg("dropping malformed event")
			continue
		}
		select {
		case s.ch <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *redisSub) C() <-chan Message { return s.ch }

func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

var _ Broker = (*RedisBroker)(nil)

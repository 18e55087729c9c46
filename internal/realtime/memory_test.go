package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-dashboard/internal/domain"
)

func receive(t *testing.T, s Subscription) Message {
	t.Helper()
	select {
	case m, ok := <-s.C():
		require.True(t, ok, "subscription closed")
		return m
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestMemoryBroker_FiltersByTableAndKey(t *testing.T) {
	ctx := context.Background()
	b := NewMemory(zerolog.Nop())
	defer b.Close()

	mine, err := b.Subscribe(ctx, TableTransactions, "u1")
	require.NoError(t, err)
	other, err := b.Subscribe(ctx, TableTransactions, "u2")
	require.NoError(t, err)

	msg, err := NewMessage(TableTransactions, "u1", domain.Inserted, map[string]string{"id": "t1"})
	require.NoError(t, err)
	require.NoError(t, b.Publish(ctx, msg))

	got := receive(t, mine)
	assert.Equal(t, domain.Inserted, got.Kind)
	assert.JSONEq(t, `{"id":"t1"}`, string(got.Record))

	select {
	case m := <-other.C():
		t.Fatalf("unexpected message for other owner: %+v", m)
	default:
	}
}

func TestMemoryBroker_CloseSubscription(t *testing.T) {
	ctx := context.Background()
	b := NewMemory(zerolog.Nop())

	s, err := b.Subscribe(ctx, TableProfiles, "u1")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, ok := <-s.C()
	assert.False(t, ok)

	// publishing after close must not panic
	require.NoError(t, b.Publish(ctx, Message{Table: TableProfiles, Key: "u1", Kind: domain.Updated}))
}

func TestMemoryBroker_CloseBroker(t *testing.T) {
	ctx := context.Background()
	b := NewMemory(zerolog.Nop())
	s, err := b.Subscribe(ctx, TableProfiles, "u1")
	require.NoError(t, err)

	require.NoError(t, b.Close())
	_, ok := <-s.C()
	assert.False(t, ok)
	assert.NoError(t, s.Close())

	late, err := b.Subscribe(ctx, TableProfiles, "u1")
	require.NoError(t, err)
	_, ok = <-late.C()
	assert.False(t, ok)
}

func TestMemoryBroker_DropsWhenFull(t *testing.T) {
	ctx := context.Background()
	b := NewMemory(zerolog.Nop())
	defer b.Close()

	s, err := b.Subscribe(ctx, TableTransactions, "u1")
	require.NoError(t, err)
	for i := 0; i < subscriptionBuffer+10; i++ {
		require.NoError(t, b.Publish(ctx, Message{Table: TableTransactions, Key: "u1", Kind: domain.Updated}))
	}
	assert.Len(t, s.C(), subscriptionBuffer)
}

// Package realtime fans row-level change events out to subscribers.
package realtime

import (
	"context"
	"encoding/json"

	"finance-dashboard/internal/domain"
)

// Tables that publish change events.
const (
	TableProfiles     = "profiles"
	TableTransactions = "transactions"
	TableInvestments  = "investments"
)

// Message is one change to a row. Key is the value the subscription filters
// on: the owner id for transactions and investments, the row id for profiles.
type Message struct {
	Table  string           `json:"table"`
	Key    string           `json:"key"`
	Kind   domain.EventKind `json:"kind"`
	Record json.RawMessage  `json:"record"`
}

// Broker publishes messages and opens filtered subscriptions.
type Broker interface {
	Publish(ctx context.Context, msg Message) error
	Subscribe(ctx context.Context, table, key string) (Subscription, error)
	Close() error
}

// Subscription delivers messages until Close is called. The channel is
// closed once the subscription is torn down.
type Subscription interface {
	C() <-chan Message
	Close() error
}

// NewMessage encodes record into a message.
func NewMessage(table, key string, kind domain.EventKind, record any) (Message, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return Message{}, err
	}
	return Message{Table: table, Key: key, Kind: kind, Record: b}, nil
}

func topic(table, key string) string {
	return table + ":" + key
}

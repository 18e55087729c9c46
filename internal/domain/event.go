package domain

// EventKind tags a realtime change.
type EventKind string

const (
	Inserted EventKind = "inserted"
	Updated  EventKind = "updated"
	Removed  EventKind = "removed"
)

// Event is a realtime notification carrying the affected record.
// For Removed events only the record id is guaranteed to be set.
type Event[T any] struct {
	Kind   EventKind `json:"kind"`
	Record T         `json:"record"`
}

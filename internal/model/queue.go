package model

import "encoding/json"

// Queue identifies a queue of an external service desk by its id and display name.
// Fields are unexported so a Queue cannot change after NewQueue returns; values are
// safe to copy and share between goroutines. Queues compare with ==.
type Queue struct {
	id   string
	name string
}

// NewQueue returns a Queue holding id and name exactly as given.
// No validation is performed: empty strings are kept verbatim.
func NewQueue(id, name string) Queue {
	return Queue{id: id, name: name}
}

// ID returns the queue identifier.
func (q Queue) ID() string { return q.id }

// Name returns the queue display name.
func (q Queue) Name() string { return q.name }

type queueJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MarshalJSON encodes the queue as {"id": ..., "name": ...}.
func (q Queue) MarshalJSON() ([]byte, error) {
	return json.Marshal(queueJSON{ID: q.id, Name: q.name})
}

package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Op is the kind of change a message announces.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

var ErrInvalidMessage = errors.New("invalid record change message")

// RecordChangeMessage announces that a record changed in the local store.
// It carries only the key and version; the worker reads the record itself.
type RecordChangeMessage struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Op         Op        `json:"op"`
	Version    int64     `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRecordChangeMessage(collection, id string, op Op, version int64) *RecordChangeMessage {
	return &RecordChangeMessage{
		Collection: collection,
		ID:         id,
		Op:         op,
		Version:    version,
		Timestamp:  time.Now(),
	}
}

func (m *RecordChangeMessage) Validate() error {
	switch {
	case m.Collection == "":
		return fmt.Errorf("%w: missing collection", ErrInvalidMessage)
	case m.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidMessage)
	case m.Op != OpUpsert && m.Op != OpDelete:
		return fmt.Errorf("%w: op %q", ErrInvalidMessage, m.Op)
	case m.Version < 1:
		return fmt.Errorf("%w: version %d", ErrInvalidMessage, m.Version)
	}
	return nil
}

func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON decodes and validates a message body.
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

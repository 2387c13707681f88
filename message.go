package mediator

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single in-flight notification, command, or query. Messages are
// created per call and own no state beyond their payload; the dispatcher never
// retains them after the call completes.
type Message struct {
	// ID uniquely identifies this message instance.
	ID uuid.UUID

	// Type is the message's declared type identity. Dispatch is keyed on
	// Type.Key(), and middleware resolution walks Type's parent chain.
	Type *Type

	// CreatedAt is when the message was constructed.
	CreatedAt time.Time

	// Payload is the typed value handed to handlers. The dispatcher treats
	// it as opaque.
	Payload any
}

// NewMessage creates a message of the given type with a fresh ID and
// creation timestamp.
func NewMessage(t *Type, payload any) Message {
	return Message{
		ID:        uuid.New(),
		Type:      t,
		CreatedAt: time.Now(),
		Payload:   payload,
	}
}

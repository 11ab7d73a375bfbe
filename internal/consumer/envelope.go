package consumer

import (
	"context"

	"github.com/shahamitr/parichay-sub004/internal/domain"
)

// Envelope wraps a parsed event with its delivery callbacks: ack deletes the
// message from the queue, nack leaves it for redelivery. The batch writer
// acks only after the event is either stored or recognized as a duplicate.
type Envelope struct {
	Event *domain.Event
	ack   func(context.Context) error
	nack  func(context.Context) error
}

// NewEnvelope creates a new message envelope
func NewEnvelope(event *domain.Event, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Event: event,
		ack:   ack,
		nack:  nack,
	}
}

// ID returns the event's deterministic content hash, the key the
// idempotency gate dedupes on.
func (e *Envelope) ID() string {
	return e.Event.EventID
}

// Ack acknowledges successful processing
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack != nil {
		return e.ack(ctx)
	}
	return nil
}

// Nack flags the message for redelivery
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack != nil {
		return e.nack(ctx)
	}
	return nil
}

package consumer

import (
	"context"

	"github.com/shahamitr/parichay-sub004/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into events
type MessageParser interface {
	Parse(body []byte) (*domain.Event, error)
}

// DedupeChecker reports whether an event ID is being seen for the first time
type DedupeChecker interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
}

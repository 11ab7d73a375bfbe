package repository

import (
	"context"
	"time"

	"github.com/shahamitr/parichay-sub004/internal/analytics"
	"github.com/shahamitr/parichay-sub004/internal/domain"
)

// EventScope selects a tenant: brand required, branch optional.
type EventScope struct {
	BrandID  string
	BranchID string
}

// EventWindow is a scoped, optionally time-bounded slice of the event store.
// Zero From/To mean an open end on that side.
type EventWindow struct {
	Scope EventScope
	From  time.Time
	To    time.Time
}

// EventRepository defines the interface for event storage operations
type EventRepository interface {
	// InsertBatch inserts a batch of events into the storage
	InsertBatch(ctx context.Context, events []*domain.Event) (int, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error

	// StreamWindow streams the aggregation projection of every event in the
	// window, ascending by time, invoking fn once per row. A non-nil error
	// from fn aborts the stream.
	StreamWindow(ctx context.Context, window EventWindow, fn func(analytics.Event) error) error

	// StreamRecent streams events since the given instant, descending by
	// time, invoking fn once per row.
	StreamRecent(ctx context.Context, scope EventScope, since time.Time, fn func(analytics.Event) error) error
}

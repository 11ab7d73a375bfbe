package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/shahamitr/parichay-sub004/internal/analytics"
	"github.com/shahamitr/parichay-sub004/internal/domain"
	"github.com/shahamitr/parichay-sub004/internal/repository"
)

// aggregation projection: the only columns the fold reads
const projectionColumns = "event_type, session_id, url, referrer, user_agent, timestamp, metadata"

// Repository implements EventRepository for ClickHouse
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

// InitSchema initializes the ClickHouse schema with ReplacingMergeTree engine
func (r *Repository) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS events (
		event_id String,
		brand_id LowCardinality(String),
		branch_id LowCardinality(String),
		event_type LowCardinality(String),
		session_id String,
		url String,
		referrer String,
		user_agent String,
		timestamp Int64,
		metadata String,
		processed_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (brand_id, event_id)
	ORDER BY (brand_id, event_id, timestamp)
	PARTITION BY toYYYYMM(toDateTime(timestamp))
	SETTINGS index_granularity = 8192
	`

	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of events into ClickHouse
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, event := range events {
		if event.Version == 0 {
			event.Version = uint64(time.Now().UnixNano())
		}

		metadataJSON := event.Metadata
		if metadataJSON == "" {
			metadataJSON = "{}"
		}

		err := batch.Append(
			event.EventID,
			event.BrandID,
			event.BranchID,
			event.EventType,
			event.SessionID,
			event.URL,
			event.Referrer,
			event.UserAgent,
			event.Timestamp,
			metadataJSON,
			event.ProcessedAt,
			event.Version,
		)

		if err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// StreamWindow streams the aggregation projection of every event in the
// window, ascending by time. Rows never accumulate service-side: each one is
// handed to fn as it is scanned, so memory stays bounded regardless of how
// many events a tenant has in the window.
func (r *Repository) StreamWindow(ctx context.Context, window repository.EventWindow, fn func(analytics.Event) error) error {
	whereClause, args := scopeFilter(window.Scope)
	if !window.From.IsZero() {
		whereClause += " AND timestamp >= ?"
		args = append(args, window.From.Unix())
	}
	if !window.To.IsZero() {
		whereClause += " AND timestamp <= ?"
		args = append(args, window.To.Unix())
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events FINAL
		%s
		ORDER BY timestamp ASC
	`, projectionColumns, whereClause)

	return r.streamRows(ctx, query, args, fn)
}

// StreamRecent streams events since the given instant, newest first.
func (r *Repository) StreamRecent(ctx context.Context, scope repository.EventScope, since time.Time, fn func(analytics.Event) error) error {
	whereClause, args := scopeFilter(scope)
	whereClause += " AND timestamp >= ?"
	args = append(args, since.Unix())

	query := fmt.Sprintf(`
		SELECT %s
		FROM events FINAL
		%s
		ORDER BY timestamp DESC
	`, projectionColumns, whereClause)

	return r.streamRows(ctx, query, args, fn)
}

func scopeFilter(scope repository.EventScope) (string, []interface{}) {
	whereClause := "WHERE brand_id = ?"
	args := []interface{}{scope.BrandID}
	if scope.BranchID != "" {
		whereClause += " AND branch_id = ?"
		args = append(args, scope.BranchID)
	}
	return whereClause, args
}

func (r *Repository) streamRows(ctx context.Context, query string, args []interface{}, fn func(analytics.Event) error) error {
	rows, err := r.client.Conn().Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query events: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close event rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var (
			eventType    string
			sessionID    string
			pageURL      string
			referrer     string
			userAgent    string
			timestamp    int64
			metadataJSON string
		)
		if err := rows.Scan(&eventType, &sessionID, &pageURL, &referrer, &userAgent, &timestamp, &metadataJSON); err != nil {
			return fmt.Errorf("failed to scan event row: %w", err)
		}

		if err := fn(analytics.Event{
			EventType: eventType,
			SessionID: sessionID,
			URL:       pageURL,
			Referrer:  referrer,
			UserAgent: userAgent,
			Timestamp: time.Unix(timestamp, 0),
			Metadata:  decodeMetadata(metadataJSON),
		}); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating event rows: %w", err)
	}

	return nil
}

// decodeMetadata parses the stored metadata JSON. Producers own the shape;
// anything unparseable degrades to an empty bag instead of failing the fold.
func decodeMetadata(raw string) map[string]interface{} {
	if raw == "" || raw == "{}" {
		return map[string]interface{}{}
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return map[string]interface{}{}
	}
	return metadata
}

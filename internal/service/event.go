package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shahamitr/parichay-sub004/internal/dto"
	"github.com/shahamitr/parichay-sub004/internal/metrics"
	"github.com/shahamitr/parichay-sub004/internal/queue"
	"github.com/shahamitr/parichay-sub004/internal/session"
)

// EventService accepts tracked interactions and publishes them to the queue
type EventService struct {
	publisher queue.QueuePublisher
	sessions  *session.Manager
	log       *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(publisher queue.QueuePublisher, sessions *session.Manager, log *zap.Logger) *EventService {
	return &EventService{
		publisher: publisher,
		sessions:  sessions,
		log:       log,
	}
}

// computeEventID generates a deterministic event ID based on event content.
// A redelivered or double-submitted event hashes to the same ID, which is
// what the consumer's idempotency gate keys on.
func computeEventID(event *dto.TrackEventRequest) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		event.BrandID,
		event.BranchID,
		event.EventType,
		event.SessionID,
		event.URL,
		event.Timestamp,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ProcessEvent validates and publishes a single event. Requests without a
// session ID get a fresh one minted; the caller echoes it back to the
// tracking client, which replays it on the visitor's subsequent events.
func (s *EventService) ProcessEvent(event *dto.TrackEventRequest) (string, string, error) {
	ctx := context.Background()

	currentTime := time.Now().Unix()
	if event.Timestamp > currentTime+1 {
		s.log.Warn("Timestamp validation failed: future timestamp",
			zap.Int64("event_timestamp", event.Timestamp),
			zap.Int64("current_time", currentTime),
			zap.String("event_type", event.EventType))
		metrics.EventsRejected.Inc()
		return "", "", fmt.Errorf("timestamp cannot be in the future: %d > %d", event.Timestamp, currentTime)
	}

	if event.SessionID == "" {
		event.SessionID = s.sessions.Start().ID
	}

	eventID := computeEventID(event)

	err := s.publisher.PublishEvent(ctx, event, eventID)
	if err != nil {
		return "", "", fmt.Errorf("failed to publish event to queue: %w", err)
	}

	metrics.EventsAccepted.WithLabelValues(event.EventType).Inc()

	return eventID, event.SessionID, nil
}

// ProcessBulkEvents validates and processes multiple events
func (s *EventService) ProcessBulkEvents(events []dto.TrackEventRequest) ([]string, []string, error) {
	var eventIDs []string
	var errors []string

	for i, event := range events {
		eventID, _, err := s.ProcessEvent(&event)
		if err != nil {
			errors = append(errors, err.Error())
			s.log.Warn("Failed to process event in bulk",
				zap.Int("index", i),
				zap.Error(err),
				zap.String("event_type", event.EventType))
			continue
		}
		eventIDs = append(eventIDs, eventID)
	}

	return eventIDs, errors, nil
}

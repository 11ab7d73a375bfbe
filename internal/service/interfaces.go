package service

import (
	"context"

	"github.com/shahamitr/parichay-sub004/internal/analytics"
	"github.com/shahamitr/parichay-sub004/internal/dto"
)

// EventServicer defines the interface for event ingestion operations
type EventServicer interface {
	ProcessEvent(event *dto.TrackEventRequest) (eventID, sessionID string, err error)
	ProcessBulkEvents(events []dto.TrackEventRequest) ([]string, []string, error)
}

// AnalyticsServicer defines the interface for summary computation
type AnalyticsServicer interface {
	GetSummary(ctx context.Context, brandID string, req *dto.GetSummaryRequest) (*analytics.Summary, error)
	GetRealtime(ctx context.Context, brandID, branchID string) (*analytics.RealtimeSnapshot, error)
}

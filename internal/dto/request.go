package dto

import "time"

// TrackEventRequest represents a single tracked interaction
type TrackEventRequest struct {
	BrandID   string                 `json:"brand_id" binding:"required" example:"brand_123"`
	BranchID  string                 `json:"branch_id" example:"branch_456"`
	EventType string                 `json:"event_type" binding:"required" example:"page_view"`
	SessionID string                 `json:"session_id" example:"f2a47cb1-9f7e-4b3a-8a2d-6c1e5b9d0f42"`
	URL       string                 `json:"url" example:"https://acme.cardfolio.app/downtown"`
	Referrer  string                 `json:"referrer" example:"https://www.google.com/search"`
	UserAgent string                 `json:"user_agent" example:"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"`
	Timestamp int64                  `json:"timestamp" binding:"required" example:"1723475612"`
	Metadata  map[string]interface{} `json:"metadata" swaggertype:"object"`
}

// TrackEventsBulkRequest represents a bulk tracking request
type TrackEventsBulkRequest struct {
	Events []TrackEventRequest `json:"events" binding:"required,min=1,max=1000,dive"`
}

// GetSummaryRequest represents an analytics summary query.
// Dates are whole calendar days; end_date is inclusive.
type GetSummaryRequest struct {
	BranchID  string    `form:"branch_id" example:"branch_456"`
	StartDate time.Time `form:"start_date" time_format:"2006-01-02" example:"2025-08-01"`
	EndDate   time.Time `form:"end_date" time_format:"2006-01-02" example:"2025-08-31"`
}

// GetRealtimeRequest represents a realtime snapshot query
type GetRealtimeRequest struct {
	BranchID string `form:"branch_id" example:"branch_456"`
}

package domain

import "time"

// Event types recorded by the microsite tracking snippet.
const (
	EventPageView    = "page_view"
	EventClick       = "click"
	EventQRScan      = "qr_scan"
	EventFormSubmit  = "form_submit"
	EventScrollDepth = "scroll_depth"
	EventTimeOnPage  = "time_on_page"
	EventVideoPlay   = "video_play"
)

// Event represents a visitor interaction stored in ClickHouse.
// Events are write-once; nothing downstream mutates or deletes them.
type Event struct {
	EventID     string    `ch:"event_id"`
	BrandID     string    `ch:"brand_id"`
	BranchID    string    `ch:"branch_id"`
	EventType   string    `ch:"event_type"`
	SessionID   string    `ch:"session_id"`
	URL         string    `ch:"url"`
	Referrer    string    `ch:"referrer"`
	UserAgent   string    `ch:"user_agent"`
	Timestamp   int64     `ch:"timestamp"`
	Metadata    string    `ch:"metadata"`
	ProcessedAt time.Time `ch:"processed_at"`
	Version     uint64    `ch:"version"`
}

package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"event_type is required"`
}

// TrackEventResponse represents a successful event ingestion response.
// SessionID echoes the client's session, or the one minted for it when the
// request carried none.
type TrackEventResponse struct {
	EventID   string `json:"event_id" example:"evt_1a2b3c4d5e6f"`
	SessionID string `json:"session_id" example:"f2a47cb1-9f7e-4b3a-8a2d-6c1e5b9d0f42"`
	Status    string `json:"status" example:"accepted"`
}

// TrackBulkEventsResponse represents a successful bulk ingestion response
type TrackBulkEventsResponse struct {
	Accepted int      `json:"accepted" example:"5"`
	Rejected int      `json:"rejected" example:"0"`
	EventIDs []string `json:"event_ids,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

package consumer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mssola/useragent"

	"github.com/shahamitr/parichay-sub004/internal/domain"
)

// JSONEventParser implements MessageParser for JSON-formatted event messages
type JSONEventParser struct{}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{}
}

// Parse parses a JSON message body into an Event. When the tracking client
// did not resolve device info itself, it is derived here from the User-Agent
// so the metadata reaching the store always carries a deviceInfo bag when a
// User-Agent is known.
func (p *JSONEventParser) Parse(body []byte) (*domain.Event, error) {
	var msgBody map[string]interface{}
	if err := json.Unmarshal(body, &msgBody); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	metadata, _ := msgBody["metadata"].(map[string]interface{})
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	ua := getStringField(msgBody, "user_agent")
	enrichDeviceInfo(metadata, ua)

	metadataJSON := "{}"
	if len(metadata) > 0 {
		metadataBytes, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataJSON = string(metadataBytes)
	}

	event := &domain.Event{
		EventID:     getStringField(msgBody, "event_id"),
		BrandID:     getStringField(msgBody, "brand_id"),
		BranchID:    getStringField(msgBody, "branch_id"),
		EventType:   getStringField(msgBody, "event_type"),
		SessionID:   getStringField(msgBody, "session_id"),
		URL:         getStringField(msgBody, "url"),
		Referrer:    getStringField(msgBody, "referrer"),
		UserAgent:   ua,
		Timestamp:   getInt64Field(msgBody, "timestamp"),
		Metadata:    metadataJSON,
		ProcessedAt: time.Now(),
		Version:     uint64(time.Now().UnixNano()),
	}

	return event, nil
}

// enrichDeviceInfo fills metadata.deviceInfo from the User-Agent when the
// client did not send one. Existing deviceInfo is left untouched.
func enrichDeviceInfo(metadata map[string]interface{}, rawUA string) {
	if rawUA == "" {
		return
	}
	if _, ok := metadata["deviceInfo"]; ok {
		return
	}

	parsed := useragent.New(rawUA)

	device := "Desktop"
	if parsed.Bot() {
		device = "Bot"
	} else if parsed.Mobile() {
		device = "Mobile"
	}

	browser, _ := parsed.Browser()
	if browser == "" {
		browser = "Unknown"
	}

	osName := parsed.OSInfo().Name
	if osName == "" {
		osName = "Unknown"
	}

	metadata["deviceInfo"] = map[string]interface{}{
		"device":  device,
		"browser": browser,
		"os":      osName,
	}
}

// Helper functions for extracting fields from parsed JSON
func getStringField(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Field(m map[string]interface{}, key string) int64 {
	if val, ok := m[key].(float64); ok {
		return int64(val)
	}
	return 0
}

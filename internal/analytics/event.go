package analytics

import "time"

// Event is the fixed projection the aggregator consumes: a row streamed out
// of the event store with its metadata already decoded. Rows with malformed
// metadata arrive with an empty map rather than failing the fold.
type Event struct {
	EventType string
	SessionID string
	URL       string
	Referrer  string
	UserAgent string
	Timestamp time.Time
	Metadata  map[string]interface{}
}

// metaNumber reads a numeric field out of the metadata bag. JSON decoding
// yields float64 for all numbers.
func (e Event) metaNumber(key string) (float64, bool) {
	v, ok := e.Metadata[key].(float64)
	return v, ok
}

// metaObject reads a nested object out of the metadata bag.
func (e Event) metaObject(key string) (map[string]interface{}, bool) {
	v, ok := e.Metadata[key].(map[string]interface{})
	return v, ok
}

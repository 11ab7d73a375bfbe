package analytics

import "time"

const (
	// RealtimeWindow is the fixed lookback for the realtime snapshot,
	// independent of any caller-supplied range.
	RealtimeWindow = 30 * time.Minute

	// activeWindow is the trailing sub-window that defines "active now".
	activeWindow = 5 * time.Minute

	recentEventLimit = 20
)

// RealtimeAccumulator folds a descending-by-time stream of the last
// RealtimeWindow of events into a RealtimeSnapshot.
type RealtimeAccumulator struct {
	now            time.Time
	activeCutoff   time.Time
	totalEvents    int
	activeSessions map[string]struct{}
	recent         []RecentEvent
}

// NewRealtimeAccumulator creates an accumulator anchored at now, which is
// injected so the 5-minute activity cutoff is testable.
func NewRealtimeAccumulator(now time.Time) *RealtimeAccumulator {
	return &RealtimeAccumulator{
		now:            now,
		activeCutoff:   now.Add(-activeWindow),
		activeSessions: make(map[string]struct{}),
		recent:         []RecentEvent{},
	}
}

// Add folds one event. The stream is ordered newest-first, so the first
// recentEventLimit rows are the recent-events feed.
func (a *RealtimeAccumulator) Add(e Event) {
	a.totalEvents++

	if e.SessionID != "" && !e.Timestamp.Before(a.activeCutoff) {
		a.activeSessions[e.SessionID] = struct{}{}
	}

	if len(a.recent) < recentEventLimit {
		a.recent = append(a.recent, RecentEvent{
			Type: e.EventType,
			Time: e.Timestamp.UTC().Format(time.RFC3339),
			Page: e.URL,
		})
	}
}

// Snapshot derives the realtime payload from the accumulated state.
func (a *RealtimeAccumulator) Snapshot() *RealtimeSnapshot {
	return &RealtimeSnapshot{
		ActiveVisitors: len(a.activeSessions),
		TotalEvents:    a.totalEvents,
		RecentEvents:   a.recent,
	}
}

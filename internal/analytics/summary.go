package analytics

// Summary is the derived metrics object served to dashboard widgets. It is
// computed fresh on every request and never persisted. Field names follow
// the dashboard's JSON contract.
type Summary struct {
	TotalViews       int              `json:"totalViews"`
	UniqueVisitors   int              `json:"uniqueVisitors"`
	AvgTimeOnPage    float64          `json:"avgTimeOnPage"`
	BounceRate       float64          `json:"bounceRate"`
	TopPages         []PageCount      `json:"topPages"`
	TopReferrers     []ReferrerCount  `json:"topReferrers"`
	DeviceBreakdown  []BreakdownEntry `json:"deviceBreakdown"`
	BrowserBreakdown []BreakdownEntry `json:"browserBreakdown"`
	OSBreakdown      []BreakdownEntry `json:"osBreakdown"`
	HourlyTraffic    []HourBucket     `json:"hourlyTraffic"`
	DailyTraffic     []DayBucket      `json:"dailyTraffic"`
	ConversionFunnel []FunnelStep     `json:"conversionFunnel"`
	HeatmapData      []HeatmapPoint   `json:"heatmapData"`
}

// PageCount is a page-view count for one URL
type PageCount struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// ReferrerCount is an event count for one referrer hostname
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int    `json:"count"`
}

// BreakdownEntry is a count with its share of the grouping total
type BreakdownEntry struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// HourBucket is one hour-of-day histogram slot, 0-23
type HourBucket struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// DayBucket is per-calendar-day traffic, date formatted YYYY-MM-DD
type DayBucket struct {
	Date     string `json:"date"`
	Views    int    `json:"views"`
	Sessions int    `json:"sessions"`
}

// FunnelStep is one conversion funnel milestone. Dropoff is the percentage
// decrease relative to the previous step's count; 0 for the first step.
type FunnelStep struct {
	Step    string  `json:"step"`
	Count   int     `json:"count"`
	Dropoff float64 `json:"dropoff"`
}

// HeatmapPoint is a raw click coordinate, value always 1 (no binning)
type HeatmapPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value int     `json:"value"`
}

// RealtimeSnapshot is the "who's online now" widget payload
type RealtimeSnapshot struct {
	ActiveVisitors int           `json:"activeVisitors"`
	TotalEvents    int           `json:"totalEvents"`
	RecentEvents   []RecentEvent `json:"recentEvents"`
}

// RecentEvent is a recent interaction projected for the realtime feed
type RecentEvent struct {
	Type string `json:"type"`
	Time string `json:"time"`
	Page string `json:"page"`
}

package analytics

import (
	"math"
	"net/url"
	"sort"
	"time"
)

const topListSize = 10

// Funnel milestones, in order. Each step is an independent count of matching
// events, not a sequential cohort: a visitor counted at a later step need not
// have been counted at an earlier one.
var funnelSteps = [4]string{"Page View", "50% Scroll", "Button Click", "Form Submit"}

const (
	funnelStepPageView = iota
	funnelStepScroll
	funnelStepClick
	funnelStepFormSubmit
)

// Event type tags as written by the tracking snippet. Mirrored here so the
// fold has no dependency on the storage model.
const (
	typePageView    = "page_view"
	typeClick       = "click"
	typeFormSubmit  = "form_submit"
	typeScrollDepth = "scroll_depth"
	typeTimeOnPage  = "time_on_page"
)

type dayAgg struct {
	views    int
	sessions map[string]struct{}
}

// Accumulator folds a stream of event rows into a Summary. Memory grows with
// the cardinality of sessions, pages and days in the window, not with the raw
// event count. It is not safe for concurrent use; each request owns its own
// accumulator.
type Accumulator struct {
	loc *time.Location

	totalEvents      int
	totalViews       int
	sessions         map[string]struct{}
	sessionPageViews map[string]int

	timeOnPageSum   float64
	timeOnPageCount int

	pageCounts     map[string]int
	referrerCounts map[string]int

	deviceCounts  map[string]int
	browserCounts map[string]int
	osCounts      map[string]int

	hourly [24]int
	daily  map[string]*dayAgg

	funnelCounts [4]int
	heatmap      []HeatmapPoint
}

// NewAccumulator creates an empty accumulator. Hour-of-day and calendar-day
// bucketing use loc; nil falls back to UTC.
func NewAccumulator(loc *time.Location) *Accumulator {
	if loc == nil {
		loc = time.UTC
	}
	return &Accumulator{
		loc:              loc,
		sessions:         make(map[string]struct{}),
		sessionPageViews: make(map[string]int),
		pageCounts:       make(map[string]int),
		referrerCounts:   make(map[string]int),
		deviceCounts:     make(map[string]int),
		browserCounts:    make(map[string]int),
		osCounts:         make(map[string]int),
		daily:            make(map[string]*dayAgg),
		heatmap:          []HeatmapPoint{},
	}
}

// Add folds one event row into the accumulator.
func (a *Accumulator) Add(e Event) {
	a.totalEvents++

	localTS := e.Timestamp.In(a.loc)
	a.hourly[localTS.Hour()]++

	day := localTS.Format("2006-01-02")
	d, ok := a.daily[day]
	if !ok {
		d = &dayAgg{sessions: make(map[string]struct{})}
		a.daily[day] = d
	}

	if e.SessionID != "" {
		a.sessions[e.SessionID] = struct{}{}
		d.sessions[e.SessionID] = struct{}{}
	}

	switch e.EventType {
	case typePageView:
		a.totalViews++
		d.views++
		a.funnelCounts[funnelStepPageView]++
		if e.URL != "" {
			a.pageCounts[e.URL]++
		}
		if e.SessionID != "" {
			a.sessionPageViews[e.SessionID]++
		}
	case typeTimeOnPage:
		if seconds, ok := e.metaNumber("seconds"); ok {
			a.timeOnPageSum += seconds
			a.timeOnPageCount++
		}
	case typeScrollDepth:
		if depth, ok := e.metaNumber("depth"); ok && depth >= 50 {
			a.funnelCounts[funnelStepScroll]++
		}
	case typeClick:
		a.funnelCounts[funnelStepClick]++
		if loc, ok := e.metaObject("locationInfo"); ok {
			x, xok := loc["x"].(float64)
			y, yok := loc["y"].(float64)
			if xok && yok {
				a.heatmap = append(a.heatmap, HeatmapPoint{X: x, Y: y, Value: 1})
			}
		}
	case typeFormSubmit:
		a.funnelCounts[funnelStepFormSubmit]++
	}

	if host, ok := referrerHost(e.Referrer); ok {
		a.referrerCounts[host]++
	}

	a.countDevice(e)
}

// countDevice attributes the event to device/browser/os groups, defaulting
// each missing field to "Unknown" so every event lands in a bucket.
func (a *Accumulator) countDevice(e Event) {
	device, browser, os := "Unknown", "Unknown", "Unknown"
	if info, ok := e.metaObject("deviceInfo"); ok {
		if v, ok := info["device"].(string); ok && v != "" {
			device = v
		}
		if v, ok := info["browser"].(string); ok && v != "" {
			browser = v
		}
		if v, ok := info["os"].(string); ok && v != "" {
			os = v
		}
	}
	a.deviceCounts[device]++
	a.browserCounts[browser]++
	a.osCounts[os]++
}

// referrerHost extracts the hostname from a referrer string. Only parseable
// absolute URLs count; anything else is skipped.
func referrerHost(referrer string) (string, bool) {
	if referrer == "" {
		return "", false
	}
	u, err := url.Parse(referrer)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", false
	}
	return u.Hostname(), true
}

// Summarize derives the Summary from the accumulated state. It does not
// mutate the accumulator, so folding further events and summarizing again is
// legal. An empty accumulator yields a fully-populated zero Summary.
func (a *Accumulator) Summarize() *Summary {
	s := &Summary{
		TotalViews:       a.totalViews,
		UniqueVisitors:   len(a.sessions),
		AvgTimeOnPage:    0,
		TopPages:         []PageCount{},
		TopReferrers:     []ReferrerCount{},
		HourlyTraffic:    make([]HourBucket, 24),
		DailyTraffic:     []DayBucket{},
		HeatmapData:      a.heatmap,
		DeviceBreakdown:  breakdown(a.deviceCounts),
		BrowserBreakdown: breakdown(a.browserCounts),
		OSBreakdown:      breakdown(a.osCounts),
	}

	if a.timeOnPageCount > 0 {
		s.AvgTimeOnPage = round1(a.timeOnPageSum / float64(a.timeOnPageCount))
	}

	if len(a.sessions) > 0 {
		bounced := 0
		for _, views := range a.sessionPageViews {
			if views == 1 {
				bounced++
			}
		}
		s.BounceRate = round1(float64(bounced) / float64(len(a.sessions)) * 100)
	}

	for _, kv := range sortedCounts(a.pageCounts, topListSize) {
		s.TopPages = append(s.TopPages, PageCount{URL: kv.key, Count: kv.count})
	}
	for _, kv := range sortedCounts(a.referrerCounts, topListSize) {
		s.TopReferrers = append(s.TopReferrers, ReferrerCount{Referrer: kv.key, Count: kv.count})
	}

	for hour := 0; hour < 24; hour++ {
		s.HourlyTraffic[hour] = HourBucket{Hour: hour, Count: a.hourly[hour]}
	}

	days := make([]string, 0, len(a.daily))
	for day := range a.daily {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		d := a.daily[day]
		s.DailyTraffic = append(s.DailyTraffic, DayBucket{
			Date:     day,
			Views:    d.views,
			Sessions: len(d.sessions),
		})
	}

	s.ConversionFunnel = a.funnel()

	return s
}

// funnel builds the conversion funnel in two passes: all step counts first,
// then dropoffs against the completed counts. The dropoff of step i is the
// percentage decrease from step i-1; the first step is always 0.
func (a *Accumulator) funnel() []FunnelStep {
	steps := make([]FunnelStep, len(funnelSteps))
	for i, name := range funnelSteps {
		steps[i] = FunnelStep{Step: name, Count: a.funnelCounts[i]}
	}
	for i := 1; i < len(steps); i++ {
		prev := steps[i-1].Count
		if prev > 0 {
			steps[i].Dropoff = round1(float64(prev-steps[i].Count) / float64(prev) * 100)
		}
	}
	return steps
}

type countedKey struct {
	key   string
	count int
}

// sortedCounts orders a frequency map descending by count, ties broken by
// key, truncated to limit (no truncation when limit <= 0). The deterministic
// tie-break keeps Summarize idempotent over identical inputs.
func sortedCounts(counts map[string]int, limit int) []countedKey {
	out := make([]countedKey, 0, len(counts))
	for k, c := range counts {
		out = append(out, countedKey{key: k, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// breakdown converts a frequency map into sorted entries with each group's
// share of the total. Shares sum to ~100 within rounding when the total is
// nonzero.
func breakdown(counts map[string]int) []BreakdownEntry {
	total := 0
	for _, c := range counts {
		total += c
	}

	entries := []BreakdownEntry{}
	for _, kv := range sortedCounts(counts, 0) {
		entry := BreakdownEntry{Name: kv.key, Count: kv.count}
		if total > 0 {
			entry.Percentage = round1(float64(kv.count) / float64(total) * 100)
		}
		entries = append(entries, entry)
	}
	return entries
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

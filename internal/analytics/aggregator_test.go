package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testBase = time.Date(2025, 8, 10, 14, 30, 0, 0, time.UTC)

func pageView(session, url string, ts time.Time) Event {
	return Event{
		EventType: "page_view",
		SessionID: session,
		URL:       url,
		Timestamp: ts,
		Metadata:  map[string]interface{}{},
	}
}

func foldAll(loc *time.Location, events []Event) *Summary {
	acc := NewAccumulator(loc)
	for _, e := range events {
		acc.Add(e)
	}
	return acc.Summarize()
}

func TestAccumulator_EmptyWindow(t *testing.T) {
	s := foldAll(time.UTC, nil)

	assert.Equal(t, 0, s.TotalViews)
	assert.Equal(t, 0, s.UniqueVisitors)
	assert.Equal(t, 0.0, s.AvgTimeOnPage)
	assert.Equal(t, 0.0, s.BounceRate)
	assert.Empty(t, s.TopPages)
	assert.Empty(t, s.TopReferrers)
	assert.Empty(t, s.DeviceBreakdown)
	assert.Empty(t, s.DailyTraffic)
	assert.Empty(t, s.HeatmapData)

	assert.Len(t, s.HourlyTraffic, 24)
	for hour, bucket := range s.HourlyTraffic {
		assert.Equal(t, hour, bucket.Hour)
		assert.Equal(t, 0, bucket.Count)
	}

	assert.Len(t, s.ConversionFunnel, 4)
	for _, step := range s.ConversionFunnel {
		assert.Equal(t, 0, step.Count)
		assert.Equal(t, 0.0, step.Dropoff)
	}
}

func TestAccumulator_TotalViewsCountsOnlyPageViews(t *testing.T) {
	events := []Event{
		pageView("s1", "/", testBase),
		pageView("s1", "/about", testBase),
		{EventType: "click", SessionID: "s1", Timestamp: testBase, Metadata: map[string]interface{}{}},
		{EventType: "qr_scan", SessionID: "s2", Timestamp: testBase, Metadata: map[string]interface{}{}},
		{EventType: "video_play", SessionID: "s2", Timestamp: testBase, Metadata: map[string]interface{}{}},
	}

	s := foldAll(time.UTC, events)

	assert.Equal(t, 2, s.TotalViews)
}

func TestAccumulator_UniqueVisitorsSpanAllEventTypes(t *testing.T) {
	events := []Event{
		pageView("s1", "/", testBase),
		{EventType: "click", SessionID: "s2", Timestamp: testBase, Metadata: map[string]interface{}{}},
		{EventType: "qr_scan", SessionID: "s3", Timestamp: testBase, Metadata: map[string]interface{}{}},
	}

	s := foldAll(time.UTC, events)

	// Sessions that never produced a page view still count as visitors.
	assert.Equal(t, 3, s.UniqueVisitors)
}

func TestAccumulator_BounceRate(t *testing.T) {
	// 10 page views across 3 sessions: s1 bounces with exactly 1, the
	// other two have several each.
	events := []Event{
		pageView("s1", "/", testBase),
	}
	for i := 0; i < 4; i++ {
		events = append(events, pageView("s2", "/", testBase))
	}
	for i := 0; i < 5; i++ {
		events = append(events, pageView("s3", "/", testBase))
	}

	s := foldAll(time.UTC, events)

	assert.Equal(t, 10, s.TotalViews)
	assert.InDelta(t, 33.3, s.BounceRate, 0.05)
	assert.GreaterOrEqual(t, s.BounceRate, 0.0)
	assert.LessOrEqual(t, s.BounceRate, 100.0)
}

func TestAccumulator_BounceRateNoSessions(t *testing.T) {
	// An event without a session ID creates no session to bounce.
	s := foldAll(time.UTC, []Event{
		{EventType: "page_view", Timestamp: testBase, Metadata: map[string]interface{}{}},
	})

	assert.Equal(t, 0.0, s.BounceRate)
}

func TestAccumulator_AvgTimeOnPage(t *testing.T) {
	events := []Event{
		{EventType: "time_on_page", SessionID: "s1", Timestamp: testBase,
			Metadata: map[string]interface{}{"seconds": 30.0}},
		{EventType: "time_on_page", SessionID: "s1", Timestamp: testBase,
			Metadata: map[string]interface{}{"seconds": 90.0}},
		// Missing seconds does not drag the mean down.
		{EventType: "time_on_page", SessionID: "s1", Timestamp: testBase,
			Metadata: map[string]interface{}{}},
		pageView("s1", "/", testBase),
	}

	s := foldAll(time.UTC, events)

	assert.Equal(t, 60.0, s.AvgTimeOnPage)
}

func TestAccumulator_TopPagesSortedAndTruncated(t *testing.T) {
	var events []Event
	for i := 0; i < 12; i++ {
		url := fmt.Sprintf("/page-%02d", i)
		for j := 0; j <= i; j++ {
			events = append(events, pageView("s1", url, testBase))
		}
	}

	s := foldAll(time.UTC, events)

	assert.Len(t, s.TopPages, 10)
	assert.Equal(t, "/page-11", s.TopPages[0].URL)
	assert.Equal(t, 12, s.TopPages[0].Count)
	for i := 1; i < len(s.TopPages); i++ {
		assert.GreaterOrEqual(t, s.TopPages[i-1].Count, s.TopPages[i].Count)
	}
}

func TestAccumulator_TopReferrersSkipsMalformed(t *testing.T) {
	events := []Event{
		{EventType: "page_view", SessionID: "s1", Timestamp: testBase,
			Referrer: "https://www.google.com/search?q=cards", Metadata: map[string]interface{}{}},
		{EventType: "page_view", SessionID: "s1", Timestamp: testBase,
			Referrer: "https://www.google.com/maps", Metadata: map[string]interface{}{}},
		{EventType: "page_view", SessionID: "s1", Timestamp: testBase,
			Referrer: "https://t.co/abc", Metadata: map[string]interface{}{}},
		// Not absolute URLs: silently skipped, never "Unknown".
		{EventType: "page_view", SessionID: "s1", Timestamp: testBase,
			Referrer: "/internal/path", Metadata: map[string]interface{}{}},
		{EventType: "page_view", SessionID: "s1", Timestamp: testBase,
			Referrer: "::not a url::", Metadata: map[string]interface{}{}},
		{EventType: "page_view", SessionID: "s1", Timestamp: testBase,
			Referrer: "", Metadata: map[string]interface{}{}},
	}

	s := foldAll(time.UTC, events)

	assert.Len(t, s.TopReferrers, 2)
	assert.Equal(t, "www.google.com", s.TopReferrers[0].Referrer)
	assert.Equal(t, 2, s.TopReferrers[0].Count)
	assert.Equal(t, "t.co", s.TopReferrers[1].Referrer)
}

func TestAccumulator_DeviceBreakdown(t *testing.T) {
	withDevice := func(device, browser, os string) Event {
		return Event{
			EventType: "page_view", SessionID: "s1", Timestamp: testBase,
			Metadata: map[string]interface{}{
				"deviceInfo": map[string]interface{}{
					"device": device, "browser": browser, "os": os,
				},
			},
		}
	}

	events := []Event{
		withDevice("Mobile", "Chrome", "Android"),
		withDevice("Mobile", "Safari", "iOS"),
		withDevice("Desktop", "Chrome", "Windows"),
		// No deviceInfo at all: lands in Unknown for every axis.
		pageView("s1", "/", testBase),
	}

	s := foldAll(time.UTC, events)

	assert.Equal(t, "Mobile", s.DeviceBreakdown[0].Name)
	assert.Equal(t, 2, s.DeviceBreakdown[0].Count)
	assert.Equal(t, 50.0, s.DeviceBreakdown[0].Percentage)

	for _, breakdown := range [][]BreakdownEntry{s.DeviceBreakdown, s.BrowserBreakdown, s.OSBreakdown} {
		total := 0.0
		seen := map[string]bool{}
		for _, entry := range breakdown {
			total += entry.Percentage
			assert.False(t, seen[entry.Name])
			seen[entry.Name] = true
		}
		assert.InDelta(t, 100.0, total, 0.5)
	}

	assert.True(t, func() bool {
		for _, e := range s.OSBreakdown {
			if e.Name == "Unknown" && e.Count == 1 {
				return true
			}
		}
		return false
	}())
}

func TestAccumulator_HourlyTraffic(t *testing.T) {
	events := []Event{
		pageView("s1", "/", time.Date(2025, 8, 10, 0, 5, 0, 0, time.UTC)),
		pageView("s1", "/", time.Date(2025, 8, 10, 14, 5, 0, 0, time.UTC)),
		pageView("s1", "/", time.Date(2025, 8, 10, 14, 55, 0, 0, time.UTC)),
		{EventType: "click", SessionID: "s1", Timestamp: time.Date(2025, 8, 10, 23, 59, 0, 0, time.UTC),
			Metadata: map[string]interface{}{}},
	}

	s := foldAll(time.UTC, events)

	assert.Len(t, s.HourlyTraffic, 24)
	assert.Equal(t, 1, s.HourlyTraffic[0].Count)
	assert.Equal(t, 2, s.HourlyTraffic[14].Count)
	assert.Equal(t, 1, s.HourlyTraffic[23].Count)

	sum := 0
	for _, bucket := range s.HourlyTraffic {
		sum += bucket.Count
	}
	assert.Equal(t, len(events), sum)
}

func TestAccumulator_HourlyTrafficRespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)

	// 23:00 UTC is 02:00 the next day at UTC+3.
	s := foldAll(loc, []Event{
		pageView("s1", "/", time.Date(2025, 8, 10, 23, 0, 0, 0, time.UTC)),
	})

	assert.Equal(t, 1, s.HourlyTraffic[2].Count)
	assert.Equal(t, 0, s.HourlyTraffic[23].Count)
	assert.Equal(t, "2025-08-11", s.DailyTraffic[0].Date)
}

func TestAccumulator_DailyTraffic(t *testing.T) {
	day1 := time.Date(2025, 8, 10, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 8, 11, 10, 0, 0, 0, time.UTC)

	var events []Event
	for i := 0; i < 5; i++ {
		events = append(events, pageView("s1", "/", day1))
	}
	for i := 0; i < 3; i++ {
		events = append(events, pageView("s2", "/", day2))
	}
	// Fold out of order: later day first.
	events[0], events[5] = events[5], events[0]

	s := foldAll(time.UTC, events)

	assert.Len(t, s.DailyTraffic, 2)
	assert.Equal(t, "2025-08-10", s.DailyTraffic[0].Date)
	assert.Equal(t, 5, s.DailyTraffic[0].Views)
	assert.Equal(t, 1, s.DailyTraffic[0].Sessions)
	assert.Equal(t, "2025-08-11", s.DailyTraffic[1].Date)
	assert.Equal(t, 3, s.DailyTraffic[1].Views)
}

func TestAccumulator_ConversionFunnel(t *testing.T) {
	var events []Event
	for i := 0; i < 4; i++ {
		events = append(events, pageView("s1", "/", testBase))
	}
	for i := 0; i < 3; i++ {
		events = append(events, Event{EventType: "scroll_depth", SessionID: "s1", Timestamp: testBase,
			Metadata: map[string]interface{}{"depth": 75.0}})
	}
	// Below the 50% milestone, not counted.
	events = append(events, Event{EventType: "scroll_depth", SessionID: "s1", Timestamp: testBase,
		Metadata: map[string]interface{}{"depth": 30.0}})
	for i := 0; i < 2; i++ {
		events = append(events, Event{EventType: "click", SessionID: "s1", Timestamp: testBase,
			Metadata: map[string]interface{}{}})
	}
	events = append(events, Event{EventType: "form_submit", SessionID: "s1", Timestamp: testBase,
		Metadata: map[string]interface{}{}})

	s := foldAll(time.UTC, events)

	assert.Len(t, s.ConversionFunnel, 4)
	assert.Equal(t, []int{4, 3, 2, 1}, []int{
		s.ConversionFunnel[0].Count,
		s.ConversionFunnel[1].Count,
		s.ConversionFunnel[2].Count,
		s.ConversionFunnel[3].Count,
	})

	assert.Equal(t, 0.0, s.ConversionFunnel[0].Dropoff)
	assert.Equal(t, 25.0, s.ConversionFunnel[1].Dropoff)
	assert.InDelta(t, 33.3, s.ConversionFunnel[2].Dropoff, 0.05)
	assert.Equal(t, 50.0, s.ConversionFunnel[3].Dropoff)
}

func TestAccumulator_FunnelStepsAreIndependentCounts(t *testing.T) {
	// A form submit with no page view, scroll or click before it still
	// lands in the last step.
	s := foldAll(time.UTC, []Event{
		{EventType: "form_submit", SessionID: "s1", Timestamp: testBase, Metadata: map[string]interface{}{}},
	})

	assert.Equal(t, 0, s.ConversionFunnel[0].Count)
	assert.Equal(t, 1, s.ConversionFunnel[3].Count)
	// Previous step is zero, so no dropoff is computable.
	assert.Equal(t, 0.0, s.ConversionFunnel[3].Dropoff)
}

func TestAccumulator_HeatmapExcludesClicksWithoutLocation(t *testing.T) {
	events := []Event{
		{EventType: "click", SessionID: "s1", Timestamp: testBase,
			Metadata: map[string]interface{}{
				"locationInfo": map[string]interface{}{"x": 120.0, "y": 460.0},
			}},
		{EventType: "click", SessionID: "s1", Timestamp: testBase,
			Metadata: map[string]interface{}{}},
	}

	s := foldAll(time.UTC, events)

	assert.Len(t, s.HeatmapData, 1)
	assert.Equal(t, HeatmapPoint{X: 120, Y: 460, Value: 1}, s.HeatmapData[0])
}

func TestAccumulator_Idempotence(t *testing.T) {
	events := []Event{
		pageView("s1", "/", testBase),
		pageView("s2", "/about", testBase.Add(time.Hour)),
		{EventType: "click", SessionID: "s1", Timestamp: testBase,
			Referrer: "https://instagram.com/acme", Metadata: map[string]interface{}{}},
		{EventType: "time_on_page", SessionID: "s2", Timestamp: testBase,
			Metadata: map[string]interface{}{"seconds": 42.0}},
	}

	first := foldAll(time.UTC, events)
	second := foldAll(time.UTC, events)

	assert.Equal(t, first, second)

	// Summarize does not mutate the accumulator either.
	acc := NewAccumulator(time.UTC)
	for _, e := range events {
		acc.Add(e)
	}
	assert.Equal(t, acc.Summarize(), acc.Summarize())
}

package aggregate

import (
	"testing"
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/PartyProtect/revive-your-hair-website/pkg/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"

func humanEvent(visitorID string, req *domain.TrackRequest) Event {
	return Event{Request: req, Agent: detector.AgentHuman, VisitorID: visitorID, UserAgent: iphoneUA}
}

func ptr[T any](v T) *T {
	return &v
}

func today(doc *domain.Document) *domain.DailyStats {
	return doc.DailyStats[DateKey(testNow)]
}

func TestRecord_PageviewNewVisitor(t *testing.T) {
	doc := NewDocument(testNow)

	res, err := Record(doc, humanEvent("v1", &domain.TrackRequest{
		Type:     "pageview",
		Page:     "/treatments",
		Referrer: "https://www.google.com/search",
		UTM:      &domain.UTM{Campaign: "spring", Source: "google"},
		Language: "en-US",
		Timezone: "Europe/Amsterdam",
	}), testNow, DefaultLimits())

	require.NoError(t, err)
	assert.Equal(t, domain.TrackResult{Tracked: true, VisitorID: "v1"}, res)

	day := today(doc)
	assert.Equal(t, int64(1), day.PageViews)
	assert.Equal(t, 1, day.UniqueVisitors.Len())
	assert.Equal(t, int64(1), day.NewVisitors)
	assert.Equal(t, int64(0), day.ReturningVisitors)
	assert.Equal(t, int64(1), day.PageViewsByPath.Get("/treatments"))
	assert.Equal(t, int64(1), day.Referrers.Get("google.com"))
	assert.Equal(t, int64(1), day.Devices.Get(detector.DeviceMobile))
	assert.Equal(t, int64(1), day.UTMCampaigns.Get("spring | src:google"))
	assert.Equal(t, int64(1), day.Languages.Get("en-us"))
	assert.Equal(t, int64(1), day.Timezones.Get("Europe/Amsterdam"))

	require.Len(t, doc.PageViews, 1)
	assert.Equal(t, "/treatments", doc.PageViews[0].Page)
	require.Contains(t, doc.Visitors, "v1")
	assert.Equal(t, int64(1), doc.Visitors["v1"].PageViews)
	assert.Equal(t, testNow, doc.Visitors["v1"].FirstSeen)
}

func TestRecord_SecondPageviewSameDayIsNotUnique(t *testing.T) {
	doc := NewDocument(testNow)
	req := &domain.TrackRequest{Type: "pageview", Page: "/"}

	_, err := Record(doc, humanEvent("v1", req), testNow, DefaultLimits())
	require.NoError(t, err)
	_, err = Record(doc, humanEvent("v1", req), testNow.Add(time.Minute), DefaultLimits())
	require.NoError(t, err)

	day := today(doc)
	assert.Equal(t, int64(2), day.PageViews)
	assert.Equal(t, 1, day.UniqueVisitors.Len())
	assert.Equal(t, int64(1), day.NewVisitors)
	assert.Equal(t, int64(0), day.ReturningVisitors)
	assert.Equal(t, testNow.Add(time.Minute), doc.Visitors["v1"].LastSeen)
}

func TestRecord_ReturningVisitorOnLaterDay(t *testing.T) {
	doc := NewDocument(testNow)
	req := &domain.TrackRequest{Type: "pageview", Page: "/"}

	_, err := Record(doc, humanEvent("v1", req), testNow.Add(-24*time.Hour), DefaultLimits())
	require.NoError(t, err)
	_, err = Record(doc, humanEvent("v1", req), testNow, DefaultLimits())
	require.NoError(t, err)

	day := today(doc)
	assert.Equal(t, int64(0), day.NewVisitors)
	assert.Equal(t, int64(1), day.ReturningVisitors)
	assert.Equal(t, 1, len(doc.Visitors))
}

func TestRecord_PageviewWithoutUTMLeavesCampaignsEmpty(t *testing.T) {
	doc := NewDocument(testNow)

	_, err := Record(doc, humanEvent("v1", &domain.TrackRequest{Type: "pageview", Page: "/"}), testNow, DefaultLimits())
	require.NoError(t, err)

	day := today(doc)
	assert.Equal(t, 0, day.UTMCampaigns.Len())
	assert.Equal(t, int64(1), day.Referrers.Get("Direct"))
	assert.Equal(t, int64(1), day.Languages.Get("unknown"))
	assert.Equal(t, int64(1), day.Timezones.Get("Unknown"))
}

func TestRecord_SessionBounce(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		pages    *int
		bounce   bool
	}{
		{"single page short visit", 15000, ptr(1), true},
		{"several pages", 15000, ptr(3), false},
		{"single page long visit", 30000, ptr(1), false},
		{"page count not reported", 1000, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(testNow)

			res, err := Record(doc, humanEvent("v1", &domain.TrackRequest{
				Type:      "session",
				Duration:  ptr(tt.duration),
				Pages:     tt.pages,
				SessionID: "s-1",
			}), testNow, DefaultLimits())
			require.NoError(t, err)
			assert.True(t, res.Tracked)

			day := today(doc)
			assert.Equal(t, int64(1), day.Sessions)
			assert.Equal(t, tt.duration, day.SessionDurations.Total)
			assert.Equal(t, int64(1), day.SessionDurations.Count)
			if tt.bounce {
				assert.Equal(t, int64(1), day.Bounces)
			} else {
				assert.Equal(t, int64(0), day.Bounces)
			}
			assert.Equal(t, int64(1), doc.Visitors["v1"].Sessions)
		})
	}
}

func TestRecord_SessionLogDefaultsToOnePage(t *testing.T) {
	doc := NewDocument(testNow)

	_, err := Record(doc, humanEvent("v1", &domain.TrackRequest{Type: "session", Duration: ptr(42.0)}), testNow, DefaultLimits())
	require.NoError(t, err)

	require.Len(t, doc.Sessions, 1)
	assert.Equal(t, 1, doc.Sessions[0].Pages)
}

func TestRecord_CustomEvents(t *testing.T) {
	doc := NewDocument(testNow)
	events := []*domain.TrackRequest{
		{Type: "event", EventName: domain.EventFormSubmit},
		{Type: "event", EventName: domain.EventCTAClick},
		{Type: "event", EventName: domain.EventCTAClick},
		{Type: "event", EventName: domain.EventScrollDepth, EventData: map[string]any{"percent": 50.0}},
		{Type: "event", EventName: domain.EventScrollDepth, EventData: map[string]any{"percent": "90"}},
		{Type: "event", EventName: domain.EventPageLoad, EventData: map[string]any{"fullLoad": 1200.0}},
		{Type: "event", EventName: domain.EventPageLoad, EventData: map[string]any{"fullLoad": 0.0}},
		{Type: "event", EventName: "video_play", EventData: map[string]any{"id": "intro"}},
	}

	for _, req := range events {
		_, err := Record(doc, humanEvent("v1", req), testNow, DefaultLimits())
		require.NoError(t, err)
	}

	day := today(doc)
	assert.Equal(t, int64(1), day.Conversions.Forms)
	assert.Equal(t, int64(2), day.Conversions.CTAClicks)
	assert.Equal(t, 140.0, day.ScrollDepth.Total)
	assert.Equal(t, int64(2), day.ScrollDepth.Count)
	assert.Equal(t, 90.0, day.ScrollDepth.Max)
	assert.Equal(t, 1200.0, day.LoadTimes.Total)
	assert.Equal(t, int64(1), day.LoadTimes.Count)
	assert.Len(t, day.Events, len(events))
	assert.Len(t, doc.Events, len(events))
	assert.Equal(t, "intro", doc.Events[len(events)-1].EventData["id"])
	assert.Equal(t, int64(0), day.PageViews)
	assert.Empty(t, doc.Visitors)
}

func TestRecord_CrawlerOnlyTouchesCrawlerLog(t *testing.T) {
	doc := NewDocument(testNow)

	res, err := Record(doc, Event{
		Request:   &domain.TrackRequest{Type: "pageview", Page: "/"},
		Agent:     detector.AgentCrawler,
		VisitorID: "c1",
		UserAgent: "Googlebot/2.1",
	}, testNow, DefaultLimits())

	require.NoError(t, err)
	assert.Equal(t, domain.TrackResult{Tracked: false, Reason: domain.ReasonCrawler}, res)

	day := today(doc)
	assert.Equal(t, int64(1), day.Crawlers)
	assert.Equal(t, int64(0), day.PageViews)
	assert.Equal(t, 0, day.UniqueVisitors.Len())
	assert.Empty(t, doc.Visitors)
	assert.Empty(t, doc.PageViews)
	require.Len(t, doc.CrawlerLogs, 1)
	assert.Equal(t, "Googlebot/2.1", doc.CrawlerLogs[0].UserAgent)
}

func TestRecord_BotOnlyTouchesBotLog(t *testing.T) {
	doc := NewDocument(testNow)

	res, err := Record(doc, Event{
		Request:   &domain.TrackRequest{Type: "session", Duration: ptr(10.0)},
		Agent:     detector.AgentMalicious,
		VisitorID: "b1",
		UserAgent: "curl/8.4.0",
	}, testNow, DefaultLimits())

	require.NoError(t, err)
	assert.Equal(t, domain.TrackResult{Tracked: false, Reason: domain.ReasonBot}, res)

	day := today(doc)
	assert.Equal(t, int64(1), day.Bots)
	assert.Equal(t, int64(0), day.Sessions)
	assert.Empty(t, doc.Sessions)
	assert.Empty(t, doc.Visitors)
	assert.Len(t, doc.BotHits, 1)
}

func TestRecord_InvalidEventLeavesDocumentUntouched(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
	}{
		{"nil request", Event{Agent: detector.AgentHuman, VisitorID: "v1"}},
		{"missing visitor", Event{Request: &domain.TrackRequest{Type: "pageview", Page: "/"}, Agent: detector.AgentHuman}},
		{"pageview without page", humanEvent("v1", &domain.TrackRequest{Type: "pageview"})},
		{"unknown type", humanEvent("v1", &domain.TrackRequest{Type: "click"})},
		{"session without duration", humanEvent("v1", &domain.TrackRequest{Type: "session"})},
		{"negative duration", humanEvent("v1", &domain.TrackRequest{Type: "session", Duration: ptr(-1.0)})},
		{"negative pages", humanEvent("v1", &domain.TrackRequest{Type: "session", Duration: ptr(1.0), Pages: ptr(-2)})},
		{"event without name", humanEvent("v1", &domain.TrackRequest{Type: "event"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(testNow)

			_, err := Record(doc, tt.ev, testNow, DefaultLimits())

			assert.ErrorIs(t, err, ErrInvalidEvent)
			assert.Empty(t, doc.DailyStats)
			assert.Empty(t, doc.Visitors)
			assert.Empty(t, doc.PageViews)
			assert.Empty(t, doc.Sessions)
			assert.Empty(t, doc.Events)
		})
	}
}

func TestRecord_LogsAreBounded(t *testing.T) {
	doc := NewDocument(testNow)
	limits := DefaultLimits()
	limits.PageViews = 3

	for i := 0; i < 5; i++ {
		page := "/p" + string(rune('a'+i))
		_, err := Record(doc, humanEvent("v1", &domain.TrackRequest{Type: "pageview", Page: page}), testNow, limits)
		require.NoError(t, err)
	}

	require.Len(t, doc.PageViews, 3)
	assert.Equal(t, "/pc", doc.PageViews[0].Page)
	assert.Equal(t, "/pe", doc.PageViews[2].Page)
	assert.Equal(t, int64(5), today(doc).PageViews)
}

func TestRecord_UsesUTCDay(t *testing.T) {
	doc := NewDocument(testNow)
	loc := time.FixedZone("UTC-5", -5*60*60)
	lateEvening := time.Date(2026, 3, 14, 22, 0, 0, 0, loc)

	_, err := Record(doc, humanEvent("v1", &domain.TrackRequest{Type: "pageview", Page: "/"}), lateEvening, DefaultLimits())
	require.NoError(t, err)

	assert.Contains(t, doc.DailyStats, "2026-03-15")
}

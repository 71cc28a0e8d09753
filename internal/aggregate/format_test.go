package aggregate

import (
	"encoding/json"
	"testing"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_NilDayIsZero(t *testing.T) {
	summary := Format("2026-03-15", nil, DefaultBreakdownSizes())

	assert.Equal(t, "2026-03-15", summary.Date)
	assert.Equal(t, int64(0), summary.PageViews)
	assert.Equal(t, int64(0), summary.BounceRate)
	assert.Equal(t, int64(0), summary.ScrollDepth.Average)
	assert.NotNil(t, summary.PageBreakdown)
	assert.Empty(t, summary.PageBreakdown)
}

func TestFormat_Averages(t *testing.T) {
	day := &domain.DailyStats{
		Sessions:         3,
		Bounces:          1,
		ScrollDepth:      domain.ScrollDepth{Total: 155, Count: 2, Max: 90},
		LoadTimes:        domain.Timing{Total: 2501, Count: 2},
		SessionDurations: domain.Timing{Total: 100000, Count: 3},
		UniqueVisitors:   domain.NewVisitorSet("a", "b"),
		Events:           []domain.DayEvent{{Name: "cta_click"}},
	}

	summary := Format("2026-03-15", day, DefaultBreakdownSizes())

	assert.Equal(t, int64(33), summary.BounceRate)
	assert.Equal(t, int64(78), summary.ScrollDepth.Average)
	assert.Equal(t, 90.0, summary.ScrollDepth.Max)
	assert.Equal(t, int64(1251), summary.LoadTimes.Average)
	assert.Equal(t, int64(33333), summary.SessionDuration.Average)
	assert.Equal(t, int64(3), summary.SessionDuration.Count)
	assert.Equal(t, 2, summary.UniqueVisitors)
	assert.Equal(t, 1, summary.Events)
}

func TestFormat_TopNBreaksTiesByInsertionOrder(t *testing.T) {
	var day domain.DailyStats
	require.NoError(t, json.Unmarshal([]byte(`{"pageViewsByPath":{"/a":5,"/b":9,"/c":9}}`), &day))

	sizes := DefaultBreakdownSizes()
	sizes.Paths = 2
	summary := Format("2026-03-15", &day, sizes)

	assert.Equal(t, []domain.CounterEntry{
		{Label: "/b", Value: 9},
		{Label: "/c", Value: 9},
	}, summary.PageBreakdown)
}

func TestFormat_DefaultSizes(t *testing.T) {
	day := &domain.DailyStats{}
	for _, d := range []string{"Mobile", "Desktop", "Tablet", "TV", "Watch", "Car"} {
		day.Devices.Inc(d, 1)
	}
	for i := 0; i < 10; i++ {
		day.Timezones.Inc(string(rune('A'+i)), int64(i))
	}

	summary := Format("2026-03-15", day, DefaultBreakdownSizes())

	assert.Len(t, summary.Devices, 5)
	require.Len(t, summary.Timezones, 6)
	assert.Equal(t, "J", summary.Timezones[0].Label)
}

func TestLastDays_NewestSevenAscending(t *testing.T) {
	doc := NewDocument(testNow)
	for _, key := range []string{"2026-03-01", "2026-03-09", "2026-03-03", "2026-03-10", "2026-03-05", "2026-03-07", "2026-03-02", "2026-03-08"} {
		Ensure(doc, key).PageViews = 1
	}

	days := LastDays(doc, 7, DefaultBreakdownSizes())

	require.Len(t, days, 7)
	assert.Equal(t, "2026-03-02", days[0].Date)
	assert.Equal(t, "2026-03-10", days[6].Date)
}

func TestReport(t *testing.T) {
	doc := NewDocument(testNow)
	for i := 0; i < 120; i++ {
		doc.PageViews = append(doc.PageViews, domain.PageViewLog{Page: "/", VisitorID: "v"})
		doc.Events = append(doc.Events, domain.EventLog{EventName: "e"})
	}
	doc.Visitors["v1"] = &domain.VisitorRecord{}
	doc.Visitors["v2"] = &domain.VisitorRecord{}
	Ensure(doc, DateKey(testNow)).PageViews = 4

	report := Report(doc, DateKey(testNow), DefaultBreakdownSizes(), 90)

	assert.Equal(t, int64(4), report.Today.PageViews)
	assert.Len(t, report.Last7Days, 1)
	assert.Equal(t, 2, report.TotalVisitors)
	assert.Len(t, report.RecentPageViews, 100)
	assert.Len(t, report.RecentEvents, 50)
	assert.Empty(t, report.RecentSessions)
	assert.NotNil(t, report.RecentSessions)
	assert.Equal(t, 90, report.DataRetentionDays)
}

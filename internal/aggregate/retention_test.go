package aggregate

import (
	"testing"
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/stretchr/testify/assert"
)

const retention = 90 * 24 * time.Hour

func daysAgo(n int) time.Time {
	return testNow.Add(-time.Duration(n) * 24 * time.Hour)
}

func TestSweep_DropsExpiredDaysAndLogs(t *testing.T) {
	doc := NewDocument(testNow)
	Ensure(doc, DateKey(daysAgo(95)))
	Ensure(doc, DateKey(daysAgo(10)))

	doc.PageViews = []domain.PageViewLog{{Timestamp: daysAgo(95)}, {Timestamp: daysAgo(1)}}
	doc.Sessions = []domain.SessionLog{{Timestamp: daysAgo(91)}}
	doc.Events = []domain.EventLog{{Timestamp: daysAgo(2)}}
	doc.CrawlerLogs = []domain.AgentHit{{Timestamp: daysAgo(100)}, {Timestamp: daysAgo(120)}}
	doc.BotHits = []domain.AgentHit{{Timestamp: daysAgo(89)}}
	doc.Visitors["old"] = &domain.VisitorRecord{FirstSeen: daysAgo(200), LastSeen: daysAgo(200)}

	res := Sweep(doc, testNow, retention)

	assert.Equal(t, SweepResult{Days: 1, PageViews: 1, Sessions: 1, CrawlerLogs: 2}, res)
	assert.Equal(t, 5, res.Total())
	assert.NotContains(t, doc.DailyStats, DateKey(daysAgo(95)))
	assert.Contains(t, doc.DailyStats, DateKey(daysAgo(10)))
	assert.Len(t, doc.PageViews, 1)
	assert.Empty(t, doc.Sessions)
	assert.Len(t, doc.Events, 1)
	assert.Empty(t, doc.CrawlerLogs)
	assert.Len(t, doc.BotHits, 1)
	assert.Contains(t, doc.Visitors, "old")
}

func TestSweep_CutoffDayIsKept(t *testing.T) {
	doc := NewDocument(testNow)
	cutoff := DateKey(daysAgo(90))
	Ensure(doc, cutoff)
	Ensure(doc, DateKey(daysAgo(91)))

	Sweep(doc, testNow, retention)

	assert.Contains(t, doc.DailyStats, cutoff)
	assert.NotContains(t, doc.DailyStats, DateKey(daysAgo(91)))
}

func TestSweep_IsIdempotent(t *testing.T) {
	doc := NewDocument(testNow)
	Ensure(doc, DateKey(daysAgo(95)))
	doc.PageViews = []domain.PageViewLog{{Timestamp: daysAgo(95)}}

	first := Sweep(doc, testNow, retention)
	second := Sweep(doc, testNow, retention)

	assert.Equal(t, 2, first.Total())
	assert.Equal(t, 0, second.Total())
}

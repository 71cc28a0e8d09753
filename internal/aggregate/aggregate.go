package aggregate

import (
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
)

const dateLayout = "2006-01-02"

// Limits caps the raw logs kept in the document. The oldest entry is evicted
// once a log is full.
type Limits struct {
	PageViews   int
	Sessions    int
	Events      int
	CrawlerLogs int
	BotHits     int
	DayEvents   int
}

func DefaultLimits() Limits {
	return Limits{
		PageViews:   5000,
		Sessions:    1000,
		Events:      2000,
		CrawlerLogs: 500,
		BotHits:     500,
		DayEvents:   2000,
	}
}

// BreakdownSizes is the N of each top-N list in a DailySummary.
type BreakdownSizes struct {
	Paths     int
	Referrers int
	Devices   int
	UTM       int
	Languages int
	Timezones int
}

func DefaultBreakdownSizes() BreakdownSizes {
	return BreakdownSizes{
		Paths:     8,
		Referrers: 8,
		Devices:   5,
		UTM:       8,
		Languages: 8,
		Timezones: 6,
	}
}

// DateKey is the UTC calendar date of t.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func NewDocument(now time.Time) *domain.Document {
	created := now.UTC()
	doc := &domain.Document{
		Metadata: domain.Metadata{
			CreatedAt: &created,
			Version:   domain.DocumentVersion,
		},
	}
	Normalize(doc)
	return doc
}

// Normalize brings a freshly decoded document into canonical shape: no nil
// slices or maps, and every day entry passed through Ensure.
func Normalize(doc *domain.Document) {
	if doc.PageViews == nil {
		doc.PageViews = []domain.PageViewLog{}
	}
	if doc.Sessions == nil {
		doc.Sessions = []domain.SessionLog{}
	}
	if doc.Events == nil {
		doc.Events = []domain.EventLog{}
	}
	if doc.CrawlerLogs == nil {
		doc.CrawlerLogs = []domain.AgentHit{}
	}
	if doc.BotHits == nil {
		doc.BotHits = []domain.AgentHit{}
	}

	if doc.Visitors == nil {
		doc.Visitors = make(map[string]*domain.VisitorRecord)
	}
	for id, v := range doc.Visitors {
		if v == nil || id == "" {
			delete(doc.Visitors, id)
		}
	}

	if doc.DailyStats == nil {
		doc.DailyStats = make(map[string]*domain.DailyStats)
	}
	for key := range doc.DailyStats {
		Ensure(doc, key)
	}
}

// Ensure returns the day entry for dateKey, creating a zero-valued one when
// absent and coercing a partial or legacy entry in place. Calling it twice
// yields the same structure.
func Ensure(doc *domain.Document, dateKey string) *domain.DailyStats {
	if doc.DailyStats == nil {
		doc.DailyStats = make(map[string]*domain.DailyStats)
	}

	day := doc.DailyStats[dateKey]
	if day == nil {
		day = &domain.DailyStats{}
		doc.DailyStats[dateKey] = day
	}

	day.UniqueVisitors.Normalize()
	if day.Events == nil {
		day.Events = []domain.DayEvent{}
	}

	clamp(&day.PageViews)
	clamp(&day.Bots)
	clamp(&day.Crawlers)
	clamp(&day.Sessions)
	clamp(&day.Bounces)
	clamp(&day.NewVisitors)
	clamp(&day.ReturningVisitors)
	clamp(&day.Conversions.Forms)
	clamp(&day.Conversions.CTAClicks)
	clamp(&day.ScrollDepth.Count)
	clamp(&day.LoadTimes.Count)
	clamp(&day.SessionDurations.Count)

	return day
}

func clamp(n *int64) {
	if *n < 0 {
		*n = 0
	}
}

func pushWithLimit[T any](list []T, item T, limit int) []T {
	list = append(list, item)
	if limit > 0 && len(list) > limit {
		list = append(list[:0:0], list[len(list)-limit:]...)
	}
	return list
}

// lastN returns a copy of the newest n entries.
func lastN[T any](list []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(list) > n {
		list = list[len(list)-n:]
	}
	out := make([]T, len(list))
	copy(out, list)
	return out
}

package aggregate

import (
	"math"
	"slices"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
)

// Format builds the read-optimized view of one day. A nil day formats as all
// zeros.
func Format(dateKey string, day *domain.DailyStats, sizes BreakdownSizes) domain.DailySummary {
	if day == nil {
		day = &domain.DailyStats{}
	}

	return domain.DailySummary{
		Date:              dateKey,
		PageViews:         day.PageViews,
		UniqueVisitors:    day.UniqueVisitors.Len(),
		Bots:              day.Bots,
		Crawlers:          day.Crawlers,
		Sessions:          day.Sessions,
		Bounces:           day.Bounces,
		BounceRate:        percentage(day.Bounces, day.Sessions),
		Events:            len(day.Events),
		NewVisitors:       day.NewVisitors,
		ReturningVisitors: day.ReturningVisitors,
		Conversions:       day.Conversions,
		PageBreakdown:     day.PageViewsByPath.Top(sizes.Paths),
		Referrers:         day.Referrers.Top(sizes.Referrers),
		Devices:           day.Devices.Top(sizes.Devices),
		UTMCampaigns:      day.UTMCampaigns.Top(sizes.UTM),
		Languages:         day.Languages.Top(sizes.Languages),
		Timezones:         day.Timezones.Top(sizes.Timezones),
		ScrollDepth: domain.ScrollSummary{
			Average: average(day.ScrollDepth.Total, day.ScrollDepth.Count),
			Max:     day.ScrollDepth.Max,
			Count:   day.ScrollDepth.Count,
		},
		LoadTimes: domain.TimingSummary{
			Average: average(day.LoadTimes.Total, day.LoadTimes.Count),
			Count:   day.LoadTimes.Count,
		},
		SessionDuration: domain.TimingSummary{
			Average: average(day.SessionDurations.Total, day.SessionDurations.Count),
			Count:   day.SessionDurations.Count,
		},
	}
}

// LastDays formats the newest n recorded days in ascending date order. Days
// without an entry are not filled in.
func LastDays(doc *domain.Document, n int, sizes BreakdownSizes) []domain.DailySummary {
	keys := make([]string, 0, len(doc.DailyStats))
	for k := range doc.DailyStats {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	keys = lastN(keys, n)

	out := make([]domain.DailySummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, Format(k, doc.DailyStats[k], sizes))
	}
	return out
}

// Report assembles the stats view with todayKey as the current day.
func Report(doc *domain.Document, todayKey string, sizes BreakdownSizes, retentionDays int) domain.StatsReport {
	return domain.StatsReport{
		Today:             Format(todayKey, doc.DailyStats[todayKey], sizes),
		Last7Days:         LastDays(doc, 7, sizes),
		TotalVisitors:     len(doc.Visitors),
		RecentPageViews:   lastN(doc.PageViews, 100),
		RecentEvents:      lastN(doc.Events, 50),
		RecentSessions:    lastN(doc.Sessions, 100),
		RecentCrawlers:    lastN(doc.CrawlerLogs, 100),
		RecentBotHits:     lastN(doc.BotHits, 100),
		DataRetentionDays: retentionDays,
	}
}

func average(total float64, count int64) int64 {
	if count <= 0 {
		return 0
	}
	return int64(math.Round(total / float64(count)))
}

func percentage(part, whole int64) int64 {
	if whole <= 0 {
		return 0
	}
	return int64(math.Round(float64(part) / float64(whole) * 100))
}

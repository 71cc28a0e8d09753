package aggregate

import (
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
)

// SweepResult counts what one retention pass removed.
type SweepResult struct {
	Days        int
	PageViews   int
	Sessions    int
	Events      int
	CrawlerLogs int
	BotHits     int
}

func (r SweepResult) Total() int {
	return r.Days + r.PageViews + r.Sessions + r.Events + r.CrawlerLogs + r.BotHits
}

// Sweep drops day entries dated before the UTC date of now-retention and raw
// log entries older than retention. The visitor map is left as is.
func Sweep(doc *domain.Document, now time.Time, retention time.Duration) SweepResult {
	var res SweepResult

	cutoff := DateKey(now.Add(-retention))
	for key := range doc.DailyStats {
		if key < cutoff {
			delete(doc.DailyStats, key)
			res.Days++
		}
	}

	keep := func(ts time.Time) bool {
		return now.Sub(ts) < retention
	}

	doc.PageViews, res.PageViews = filter(doc.PageViews, func(e domain.PageViewLog) bool { return keep(e.Timestamp) })
	doc.Sessions, res.Sessions = filter(doc.Sessions, func(e domain.SessionLog) bool { return keep(e.Timestamp) })
	doc.Events, res.Events = filter(doc.Events, func(e domain.EventLog) bool { return keep(e.Timestamp) })
	doc.CrawlerLogs, res.CrawlerLogs = filter(doc.CrawlerLogs, func(e domain.AgentHit) bool { return keep(e.Timestamp) })
	doc.BotHits, res.BotHits = filter(doc.BotHits, func(e domain.AgentHit) bool { return keep(e.Timestamp) })

	return res
}

func filter[T any](list []T, keep func(T) bool) ([]T, int) {
	kept := list[:0]
	for _, e := range list {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	removed := len(list) - len(kept)
	clear(list[len(kept):])
	return kept, removed
}

package aggregate

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/PartyProtect/revive-your-hair-website/pkg/detector"
	"github.com/spf13/cast"
)

var ErrInvalidEvent = errors.New("invalid tracking event")

const bounceThresholdMs = 30000

// Event is one classified request ready to be folded into the document.
type Event struct {
	Request   *domain.TrackRequest
	Agent     detector.Agent
	VisitorID string
	UserAgent string
}

// parsed holds every value Record needs, resolved before the document is
// touched so that a bad event leaves it unchanged.
type parsed struct {
	kind      domain.EventType
	page      string
	duration  float64
	pages     int
	reported  bool
	eventName string
	percent   float64
	fullLoad  float64
}

// Record applies ev to doc. Crawler and bot traffic only reaches its own hit
// log and day counter; human traffic updates the raw logs, the visitor map
// and today's aggregate.
func Record(doc *domain.Document, ev Event, now time.Time, limits Limits) (domain.TrackResult, error) {
	p, err := parse(ev)
	if err != nil {
		return domain.TrackResult{}, err
	}

	now = now.UTC()
	day := Ensure(doc, DateKey(now))
	if doc.Visitors == nil {
		doc.Visitors = make(map[string]*domain.VisitorRecord)
	}
	req := ev.Request

	switch ev.Agent {
	case detector.AgentCrawler:
		doc.CrawlerLogs = pushWithLimit(doc.CrawlerLogs, agentHit(ev, now), limits.CrawlerLogs)
		day.Crawlers++
		return domain.TrackResult{Tracked: false, Reason: domain.ReasonCrawler}, nil
	case detector.AgentMalicious:
		doc.BotHits = pushWithLimit(doc.BotHits, agentHit(ev, now), limits.BotHits)
		day.Bots++
		return domain.TrackResult{Tracked: false, Reason: domain.ReasonBot}, nil
	}

	switch p.kind {
	case domain.EventPageview:
		recordPageview(doc, day, ev, p, now, limits)
	case domain.EventSession:
		recordSession(doc, day, ev, p, now, limits)
	case domain.EventCustom:
		doc.Events = pushWithLimit(doc.Events, domain.EventLog{
			Timestamp: now,
			VisitorID: ev.VisitorID,
			EventName: p.eventName,
			EventData: maps.Clone(req.EventData),
		}, limits.Events)
		day.Events = pushWithLimit(day.Events, domain.DayEvent{Name: p.eventName, Timestamp: now}, limits.DayEvents)

		switch p.eventName {
		case domain.EventFormSubmit:
			day.Conversions.Forms++
		case domain.EventCTAClick:
			day.Conversions.CTAClicks++
		case domain.EventScrollDepth:
			day.ScrollDepth.Total += p.percent
			day.ScrollDepth.Count++
			if p.percent > day.ScrollDepth.Max {
				day.ScrollDepth.Max = p.percent
			}
		case domain.EventPageLoad:
			if p.fullLoad > 0 {
				day.LoadTimes.Total += p.fullLoad
				day.LoadTimes.Count++
			}
		}

		if v, ok := doc.Visitors[ev.VisitorID]; ok {
			v.LastSeen = now
		}
	}

	return domain.TrackResult{Tracked: true, VisitorID: ev.VisitorID}, nil
}

func recordPageview(doc *domain.Document, day *domain.DailyStats, ev Event, p parsed, now time.Time, limits Limits) {
	req := ev.Request

	doc.PageViews = pushWithLimit(doc.PageViews, domain.PageViewLog{
		Timestamp: now,
		VisitorID: ev.VisitorID,
		Page:      p.page,
		Referrer:  req.Referrer,
		SessionID: req.SessionID,
	}, limits.PageViews)
	day.PageViews++

	visitor := visitorRecord(doc, ev.VisitorID, now)
	returning := visitor.PageViews > 0
	visitor.LastSeen = now
	visitor.PageViews++

	if day.UniqueVisitors.Add(ev.VisitorID) {
		if returning {
			day.ReturningVisitors++
		} else {
			day.NewVisitors++
		}
	}

	day.PageViewsByPath.Inc(p.page, 1)
	day.Referrers.Inc(ReferrerLabel(req.Referrer), 1)
	day.Devices.Inc(detector.DetectDeviceType(ev.UserAgent), 1)
	if label := UTMLabel(req.UTM); label != "" {
		day.UTMCampaigns.Inc(label, 1)
	}
	day.Languages.Inc(LanguageLabel(req.Language), 1)
	day.Timezones.Inc(TimezoneLabel(req.Timezone), 1)
}

func recordSession(doc *domain.Document, day *domain.DailyStats, ev Event, p parsed, now time.Time, limits Limits) {
	doc.Sessions = pushWithLimit(doc.Sessions, domain.SessionLog{
		Timestamp: now,
		VisitorID: ev.VisitorID,
		SessionID: ev.Request.SessionID,
		Duration:  p.duration,
		Pages:     p.pages,
	}, limits.Sessions)
	day.Sessions++

	visitor := visitorRecord(doc, ev.VisitorID, now)
	visitor.Sessions++
	visitor.LastSeen = now

	day.SessionDurations.Total += p.duration
	day.SessionDurations.Count++

	// A session without a reported page count is logged as one page but is
	// not treated as a bounce.
	if p.reported && p.pages == 1 && p.duration < bounceThresholdMs {
		day.Bounces++
	}
}

func visitorRecord(doc *domain.Document, id string, now time.Time) *domain.VisitorRecord {
	v, ok := doc.Visitors[id]
	if !ok {
		v = &domain.VisitorRecord{FirstSeen: now, LastSeen: now}
		doc.Visitors[id] = v
	}
	return v
}

func agentHit(ev Event, now time.Time) domain.AgentHit {
	return domain.AgentHit{
		Timestamp: now,
		Page:      ev.Request.Page,
		Referrer:  ev.Request.Referrer,
		UserAgent: ev.UserAgent,
		VisitorID: ev.VisitorID,
	}
}

func parse(ev Event) (parsed, error) {
	req := ev.Request
	if req == nil {
		return parsed{}, fmt.Errorf("%w: missing request", ErrInvalidEvent)
	}
	if ev.VisitorID == "" {
		return parsed{}, fmt.Errorf("%w: missing visitor id", ErrInvalidEvent)
	}

	p := parsed{kind: domain.EventType(req.Type), page: req.Page, pages: 1}

	switch p.kind {
	case domain.EventPageview:
		if p.page == "" {
			return parsed{}, fmt.Errorf("%w: page is required", ErrInvalidEvent)
		}
	case domain.EventSession:
		if req.Duration == nil || !finite(*req.Duration) || *req.Duration < 0 {
			return parsed{}, fmt.Errorf("%w: session duration must be a non-negative number", ErrInvalidEvent)
		}
		p.duration = *req.Duration
		if req.Pages != nil {
			if *req.Pages < 0 {
				return parsed{}, fmt.Errorf("%w: pages must not be negative", ErrInvalidEvent)
			}
			p.pages = *req.Pages
			p.reported = true
		}
	case domain.EventCustom:
		if req.EventName == "" {
			return parsed{}, fmt.Errorf("%w: event name is required", ErrInvalidEvent)
		}
		p.eventName = req.EventName
		p.percent = payloadNumber(req.EventData, "percent")
		p.fullLoad = payloadNumber(req.EventData, "fullLoad")
	default:
		return parsed{}, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, req.Type)
	}

	return p, nil
}

// payloadNumber reads a numeric field from free-form event data. Strings,
// numbers and booleans are coerced; anything else is 0.
func payloadNumber(data map[string]any, key string) float64 {
	n, err := cast.ToFloat64E(data[key])
	if err != nil || !finite(n) {
		return 0
	}
	return n
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

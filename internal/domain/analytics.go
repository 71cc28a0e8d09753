package domain

import "time"

type EventType string

const (
	EventPageview EventType = "pageview"
	EventSession  EventType = "session"
	EventCustom   EventType = "event"
)

// Named events with dedicated daily counters.
const (
	EventFormSubmit  = "form_submit"
	EventCTAClick    = "cta_click"
	EventScrollDepth = "scroll_depth"
	EventPageLoad    = "page_load"
)

type UTM struct {
	Campaign    string `json:"campaign,omitempty"`
	Source      string `json:"source,omitempty"`
	Medium      string `json:"medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
}

// TrackRequest is the JSON body accepted by the ingestion endpoint.
type TrackRequest struct {
	Type      string         `json:"type" validate:"required,oneof=pageview session event"`
	Page      string         `json:"page,omitempty" validate:"required_if=Type pageview,max=2048"`
	Referrer  string         `json:"referrer,omitempty" validate:"max=2048"`
	Duration  *float64       `json:"duration,omitempty" validate:"required_if=Type session,omitempty,gte=0"`
	Pages     *int           `json:"pages,omitempty" validate:"omitempty,gte=0"`
	SessionID string         `json:"sessionId,omitempty" validate:"max=128"`
	UTM       *UTM           `json:"utm,omitempty"`
	Language  string         `json:"language,omitempty"`
	Timezone  string         `json:"timezone,omitempty"`
	EventName string         `json:"eventName,omitempty" validate:"required_if=Type event,max=128"`
	EventData map[string]any `json:"eventData,omitempty"`
}

// TrackInput carries a validated request together with what the transport
// layer knows about the caller.
type TrackInput struct {
	Request   *TrackRequest
	ClientIP  string
	UserAgent string
}

type TrackResult struct {
	Tracked   bool   `json:"tracked"`
	Reason    string `json:"reason,omitempty"`
	VisitorID string `json:"visitorId,omitempty"`
}

const (
	ReasonCrawler            = "crawler"
	ReasonBot                = "bot"
	ReasonStorageUnavailable = "storage_unavailable"
)

type ScrollSummary struct {
	Average int64   `json:"average"`
	Max     float64 `json:"max"`
	Count   int64   `json:"count"`
}

type TimingSummary struct {
	Average int64 `json:"average"`
	Count   int64 `json:"count"`
}

// DailySummary is the read-optimized view of one DailyStats entry.
type DailySummary struct {
	Date              string         `json:"date"`
	PageViews         int64          `json:"pageViews"`
	UniqueVisitors    int            `json:"uniqueVisitors"`
	Bots              int64          `json:"bots"`
	Crawlers          int64          `json:"crawlers"`
	Sessions          int64          `json:"sessions"`
	Bounces           int64          `json:"bounces"`
	BounceRate        int64          `json:"bounceRate"`
	Events            int            `json:"events"`
	NewVisitors       int64          `json:"newVisitors"`
	ReturningVisitors int64          `json:"returningVisitors"`
	Conversions       Conversions    `json:"conversions"`
	PageBreakdown     []CounterEntry `json:"pageBreakdown"`
	Referrers         []CounterEntry `json:"referrers"`
	Devices           []CounterEntry `json:"devices"`
	UTMCampaigns      []CounterEntry `json:"utmCampaigns"`
	Languages         []CounterEntry `json:"languages"`
	Timezones         []CounterEntry `json:"timezones"`
	ScrollDepth       ScrollSummary  `json:"scrollDepth"`
	LoadTimes         TimingSummary  `json:"loadTimes"`
	SessionDuration   TimingSummary  `json:"sessionDuration"`
}

type StatsReport struct {
	GeneratedAt       time.Time      `json:"generatedAt"`
	Today             DailySummary   `json:"today"`
	Last7Days         []DailySummary `json:"last7Days"`
	TotalVisitors     int            `json:"totalVisitors"`
	RecentPageViews   []PageViewLog  `json:"recentPageViews"`
	RecentEvents      []EventLog     `json:"recentEvents"`
	RecentSessions    []SessionLog   `json:"recentSessions"`
	RecentCrawlers    []AgentHit     `json:"recentCrawlers"`
	RecentBotHits     []AgentHit     `json:"recentBotHits"`
	DataRetentionDays int            `json:"dataRetentionDays"`
}

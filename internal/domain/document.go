package domain

import (
	"errors"
	"time"
)

// ErrDocumentNotFound is returned by stores when no analytics document has
// been persisted yet.
var ErrDocumentNotFound = errors.New("analytics document not found")

const DocumentVersion = "2.0"

// Document is the whole persisted analytics state. It is read, mutated and
// written back as one unit.
type Document struct {
	PageViews   []PageViewLog             `json:"pageViews"`
	Sessions    []SessionLog              `json:"sessions"`
	Events      []EventLog                `json:"events"`
	CrawlerLogs []AgentHit                `json:"crawlerLogs"`
	BotHits     []AgentHit                `json:"botHits"`
	Visitors    map[string]*VisitorRecord `json:"visitors"`
	DailyStats  map[string]*DailyStats    `json:"dailyStats"`
	Metadata    Metadata                  `json:"metadata"`
}

type Metadata struct {
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
	Version     string     `json:"version,omitempty"`
}

type VisitorRecord struct {
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	PageViews int64     `json:"pageViews"`
	Sessions  int64     `json:"sessions"`
}

type PageViewLog struct {
	Timestamp time.Time `json:"timestamp"`
	VisitorID string    `json:"visitorId"`
	Page      string    `json:"page"`
	Referrer  string    `json:"referrer,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
}

type SessionLog struct {
	Timestamp time.Time `json:"timestamp"`
	VisitorID string    `json:"visitorId"`
	SessionID string    `json:"sessionId,omitempty"`
	Duration  float64   `json:"duration"`
	Pages     int       `json:"pages"`
}

type EventLog struct {
	Timestamp time.Time      `json:"timestamp"`
	VisitorID string         `json:"visitorId"`
	EventName string         `json:"eventName"`
	EventData map[string]any `json:"eventData,omitempty"`
}

// AgentHit is the minimal entry kept for crawler and bot traffic.
type AgentHit struct {
	Timestamp time.Time `json:"timestamp"`
	Page      string    `json:"page,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	UserAgent string    `json:"userAgent"`
	VisitorID string    `json:"visitorId"`
}

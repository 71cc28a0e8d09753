package domain

import "time"

// DailyStats is the per-calendar-day rollup keyed by ISO date (YYYY-MM-DD).
type DailyStats struct {
	PageViews         int64       `json:"pageViews"`
	UniqueVisitors    VisitorSet  `json:"uniqueVisitors"`
	Bots              int64       `json:"bots"`
	Crawlers          int64       `json:"crawlers"`
	Sessions          int64       `json:"sessions"`
	Bounces           int64       `json:"bounces"`
	Events            []DayEvent  `json:"events"`
	NewVisitors       int64       `json:"newVisitors"`
	ReturningVisitors int64       `json:"returningVisitors"`
	PageViewsByPath   Counter     `json:"pageViewsByPath"`
	Referrers         Counter     `json:"referrers"`
	Devices           Counter     `json:"devices"`
	UTMCampaigns      Counter     `json:"utmCampaigns"`
	Languages         Counter     `json:"languages"`
	Timezones         Counter     `json:"timezones"`
	Conversions       Conversions `json:"conversions"`
	ScrollDepth       ScrollDepth `json:"scrollDepth"`
	LoadTimes         Timing      `json:"loadTimes"`
	SessionDurations  Timing      `json:"sessionDurations"`
}

type DayEvent struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

type Conversions struct {
	Forms     int64 `json:"forms"`
	CTAClicks int64 `json:"ctaClicks"`
}

type ScrollDepth struct {
	Total float64 `json:"total"`
	Count int64   `json:"count"`
	Max   float64 `json:"max"`
}

// Timing accumulates a running sum of milliseconds and the number of samples.
type Timing struct {
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

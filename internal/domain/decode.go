package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cast"
)

var errNotObject = errors.New("not a JSON object")

// fields holds the raw members of one JSON object. Accessors coerce loosely
// typed values and fall back to the zero value.
type fields map[string]json.RawMessage

func objectFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil || f == nil {
		return nil, errNotObject
	}
	return f, nil
}

func (f fields) value(name string) any {
	raw, ok := f[name]
	if !ok {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func (f fields) getString(name string) string {
	return cast.ToString(f.value(name))
}

func (f fields) getInt(name string) int {
	return cast.ToInt(f.value(name))
}

func (f fields) getInt64(name string) int64 {
	return cast.ToInt64(f.value(name))
}

func (f fields) getFloat64(name string) float64 {
	return cast.ToFloat64(f.value(name))
}

func (f fields) getTime(name string) time.Time {
	t, err := cast.ToTimeE(f.value(name))
	if err != nil {
		return time.Time{}
	}
	return t
}

// decode unmarshals the member into dst, leaving whatever could not be read
// at its zero value.
func (f fields) decode(name string, dst any) {
	if raw, ok := f[name]; ok {
		_ = json.Unmarshal(raw, dst)
	}
}

// decodeList reads a JSON array element by element and skips elements that
// do not decode. Anything other than an array yields nil.
func decodeList[T any](raw json.RawMessage) []T {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if isNull(item) {
			continue
		}
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// decodeMap reads a JSON object of entries. Entries that are null or do not
// decode are kept as nil so callers can decide whether to drop or rebuild
// them.
func decodeMap[T any](raw json.RawMessage) map[string]*T {
	var items map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}

	out := make(map[string]*T, len(items))
	for key, item := range items {
		if isNull(item) {
			out[key] = nil
			continue
		}
		v := new(T)
		if err := json.Unmarshal(item, v); err != nil {
			out[key] = nil
			continue
		}
		out[key] = v
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// UnmarshalJSON tolerates documents written by older releases: lists that are
// not arrays come back empty and malformed entries are skipped. Only a
// top-level value that is not an object is an error.
func (d *Document) UnmarshalJSON(data []byte) error {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	*d = Document{
		PageViews:   decodeList[PageViewLog](f["pageViews"]),
		Sessions:    decodeList[SessionLog](f["sessions"]),
		Events:      decodeList[EventLog](f["events"]),
		CrawlerLogs: decodeList[AgentHit](f["crawlerLogs"]),
		BotHits:     decodeList[AgentHit](f["botHits"]),
		Visitors:    decodeMap[VisitorRecord](f["visitors"]),
		DailyStats:  decodeMap[DailyStats](f["dailyStats"]),
	}
	f.decode("metadata", &d.Metadata)
	return nil
}

func (d *DailyStats) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return err
	}

	*d = DailyStats{
		PageViews:         f.getInt64("pageViews"),
		Bots:              f.getInt64("bots"),
		Crawlers:          f.getInt64("crawlers"),
		Sessions:          f.getInt64("sessions"),
		Bounces:           f.getInt64("bounces"),
		Events:            decodeList[DayEvent](f["events"]),
		NewVisitors:       f.getInt64("newVisitors"),
		ReturningVisitors: f.getInt64("returningVisitors"),
	}
	f.decode("uniqueVisitors", &d.UniqueVisitors)
	f.decode("pageViewsByPath", &d.PageViewsByPath)
	f.decode("referrers", &d.Referrers)
	f.decode("devices", &d.Devices)
	f.decode("utmCampaigns", &d.UTMCampaigns)
	f.decode("languages", &d.Languages)
	f.decode("timezones", &d.Timezones)
	f.decode("conversions", &d.Conversions)
	f.decode("scrollDepth", &d.ScrollDepth)
	f.decode("loadTimes", &d.LoadTimes)
	f.decode("sessionDurations", &d.SessionDurations)
	return nil
}

func (e *DayEvent) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return err
	}
	*e = DayEvent{Name: f.getString("name"), Timestamp: f.getTime("timestamp")}
	return nil
}

func (v *VisitorRecord) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return err
	}
	*v = VisitorRecord{
		FirstSeen: f.getTime("firstSeen"),
		LastSeen:  f.getTime("lastSeen"),
		PageViews: f.getInt64("pageViews"),
		Sessions:  f.getInt64("sessions"),
	}
	return nil
}

func (p *PageViewLog) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return err
	}
	*p = PageViewLog{
		Timestamp: f.getTime("timestamp"),
		VisitorID: f.getString("visitorId"),
		Page:      f.getString("page"),
		Referrer:  f.getString("referrer"),
		SessionID: f.getString("sessionId"),
	}
	return nil
}

func (s *SessionLog) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return err
	}
	*s = SessionLog{
		Timestamp: f.getTime("timestamp"),
		VisitorID: f.getString("visitorId"),
		SessionID: f.getString("sessionId"),
		Duration:  f.getFloat64("duration"),
		Pages:     f.getInt("pages"),
	}
	return nil
}

func (e *EventLog) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return err
	}
	*e = EventLog{
		Timestamp: f.getTime("timestamp"),
		VisitorID: f.getString("visitorId"),
		EventName: f.getString("eventName"),
	}
	if payload, ok := f.value("eventData").(map[string]any); ok {
		e.EventData = payload
	}
	return nil
}

func (a *AgentHit) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return err
	}
	*a = AgentHit{
		Timestamp: f.getTime("timestamp"),
		Page:      f.getString("page"),
		Referrer:  f.getString("referrer"),
		UserAgent: f.getString("userAgent"),
		VisitorID: f.getString("visitorId"),
	}
	return nil
}

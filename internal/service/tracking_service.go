package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/aggregate"
	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/PartyProtect/revive-your-hair-website/internal/logger"
	"github.com/PartyProtect/revive-your-hair-website/internal/metrics"
	"github.com/PartyProtect/revive-your-hair-website/pkg/anonymizer"
	"github.com/PartyProtect/revive-your-hair-website/pkg/detector"
)

// ErrStoreUnavailable wraps any load or save failure. Callers treat it as
// "not tracked" rather than as a server fault.
var ErrStoreUnavailable = errors.New("analytics store unavailable")

// DocumentStore persists the single analytics document. Load returns
// domain.ErrDocumentNotFound when nothing has been saved yet.
type DocumentStore interface {
	Load(ctx context.Context) (*domain.Document, error)
	Save(ctx context.Context, doc *domain.Document) error
	Ping(ctx context.Context) error
}

type Options struct {
	Salt         string
	Retention    time.Duration
	StoreTimeout time.Duration
	Backend      string
	Limits       aggregate.Limits
	Sizes        aggregate.BreakdownSizes
	Now          func() time.Time
}

// TrackingService runs one read-modify-write cycle against the store per
// request. Concurrent requests are last-writer-wins.
type TrackingService struct {
	store   DocumentStore
	metrics *metrics.Metrics
	opts    Options
}

func NewTrackingService(store DocumentStore, m *metrics.Metrics, opts Options) *TrackingService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 3 * time.Second
	}
	if opts.Retention <= 0 {
		opts.Retention = 90 * 24 * time.Hour
	}
	if opts.Limits == (aggregate.Limits{}) {
		opts.Limits = aggregate.DefaultLimits()
	}
	if opts.Sizes == (aggregate.BreakdownSizes{}) {
		opts.Sizes = aggregate.DefaultBreakdownSizes()
	}
	if opts.Backend == "" {
		opts.Backend = "unknown"
	}

	return &TrackingService{
		store:   store,
		metrics: m,
		opts:    opts,
	}
}

func (s *TrackingService) Track(ctx context.Context, in domain.TrackInput) (domain.TrackResult, error) {
	log := logger.FromContext(ctx)
	eventType := "unknown"
	if in.Request != nil {
		eventType = in.Request.Type
	}

	ev := aggregate.Event{
		Request:   in.Request,
		Agent:     detector.ClassifyAgent(in.UserAgent),
		VisitorID: anonymizer.HashIP(in.ClientIP, s.opts.Salt),
		UserAgent: in.UserAgent,
	}

	doc, err := s.load(ctx)
	if err != nil {
		s.metrics.TrackingOutcome(eventType, domain.ReasonStorageUnavailable)
		return domain.TrackResult{Tracked: false, Reason: domain.ReasonStorageUnavailable}, err
	}

	now := s.opts.Now()
	res, err := aggregate.Record(doc, ev, now, s.opts.Limits)
	if err != nil {
		s.metrics.TrackingOutcome(eventType, "invalid")
		return domain.TrackResult{}, err
	}

	if err := s.save(ctx, doc, now); err != nil {
		s.metrics.TrackingOutcome(eventType, domain.ReasonStorageUnavailable)
		return domain.TrackResult{Tracked: false, Reason: domain.ReasonStorageUnavailable}, err
	}

	outcome := "tracked"
	if !res.Tracked {
		outcome = res.Reason
	}
	s.metrics.TrackingOutcome(eventType, outcome)

	log.Debug("Tracking event recorded",
		"type", eventType,
		"agent", string(ev.Agent),
		"outcome", outcome,
	)

	return res, nil
}

// Stats sweeps expired data, persisting only when something was pruned, and
// returns the formatted report.
func (s *TrackingService) Stats(ctx context.Context) (*domain.StatsReport, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.opts.Now()
	if pruned := s.sweep(ctx, doc, now); pruned.Total() > 0 {
		if err := s.save(ctx, doc, now); err != nil {
			logger.FromContext(ctx).Warn("Failed to persist retention sweep", "error", err)
		}
	}

	report := aggregate.Report(doc, aggregate.DateKey(now), s.opts.Sizes, s.RetentionDays())
	report.GeneratedAt = now.UTC()
	return &report, nil
}

// Sweep runs one retention pass outside of a request.
func (s *TrackingService) Sweep(ctx context.Context) (aggregate.SweepResult, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return aggregate.SweepResult{}, err
	}

	now := s.opts.Now()
	res := s.sweep(ctx, doc, now)
	if res.Total() == 0 {
		return res, nil
	}

	if err := s.save(ctx, doc, now); err != nil {
		return res, err
	}
	return res, nil
}

// TimedInput is a tracking input with the time it should be recorded at.
type TimedInput struct {
	Input domain.TrackInput
	At    time.Time
}

type ImportResult struct {
	Tracked  int
	Filtered int
	Invalid  int
}

// Import records a batch of events with one load and one save. Invalid
// events are counted and skipped.
func (s *TrackingService) Import(ctx context.Context, events []TimedInput) (ImportResult, error) {
	var result ImportResult

	doc, err := s.load(ctx)
	if err != nil {
		return result, err
	}

	for _, e := range events {
		ev := aggregate.Event{
			Request:   e.Input.Request,
			Agent:     detector.ClassifyAgent(e.Input.UserAgent),
			VisitorID: anonymizer.HashIP(e.Input.ClientIP, s.opts.Salt),
			UserAgent: e.Input.UserAgent,
		}

		res, err := aggregate.Record(doc, ev, e.At, s.opts.Limits)
		switch {
		case err != nil:
			result.Invalid++
		case res.Tracked:
			result.Tracked++
		default:
			result.Filtered++
		}
	}

	if err := s.save(ctx, doc, s.opts.Now()); err != nil {
		return result, err
	}

	logger.FromContext(ctx).Info("Imported tracking events",
		"tracked", result.Tracked,
		"filtered", result.Filtered,
		"invalid", result.Invalid,
	)
	return result, nil
}

func (s *TrackingService) RetentionDays() int {
	return int(s.opts.Retention / (24 * time.Hour))
}

func (s *TrackingService) sweep(ctx context.Context, doc *domain.Document, now time.Time) aggregate.SweepResult {
	res := aggregate.Sweep(doc, now, s.opts.Retention)

	s.metrics.Pruned("days", res.Days)
	s.metrics.Pruned("pageViews", res.PageViews)
	s.metrics.Pruned("sessions", res.Sessions)
	s.metrics.Pruned("events", res.Events)
	s.metrics.Pruned("crawlerLogs", res.CrawlerLogs)
	s.metrics.Pruned("botHits", res.BotHits)

	if res.Total() > 0 {
		logger.FromContext(ctx).Info("Retention sweep pruned data",
			"days", res.Days,
			"page_views", res.PageViews,
			"sessions", res.Sessions,
			"events", res.Events,
			"crawler_logs", res.CrawlerLogs,
			"bot_hits", res.BotHits,
		)
	}
	return res
}

func (s *TrackingService) load(ctx context.Context) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	start := time.Now()
	doc, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		s.metrics.ObserveStore("load", s.opts.Backend, time.Since(start), nil)
		return aggregate.NewDocument(s.opts.Now()), nil
	}
	s.metrics.ObserveStore("load", s.opts.Backend, time.Since(start), err)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to load analytics document", "backend", s.opts.Backend, "error", err)
		return nil, fmt.Errorf("%w: load: %w", ErrStoreUnavailable, err)
	}

	aggregate.Normalize(doc)
	return doc, nil
}

func (s *TrackingService) save(ctx context.Context, doc *domain.Document, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	updated := now.UTC()
	doc.Metadata.LastUpdated = &updated
	doc.Metadata.Version = domain.DocumentVersion
	if doc.Metadata.CreatedAt == nil {
		doc.Metadata.CreatedAt = &updated
	}

	start := time.Now()
	err := s.store.Save(ctx, doc)
	s.metrics.ObserveStore("save", s.opts.Backend, time.Since(start), err)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to save analytics document", "backend", s.opts.Backend, "error", err)
		return fmt.Errorf("%w: save: %w", ErrStoreUnavailable, err)
	}
	return nil
}

package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

type Config struct {
	Max    int
	Window time.Duration
}

type Decision struct {
	Allowed           bool
	Limit             int
	Remaining         int
	RetryAfterSeconds int
	ResetAt           time.Time
}

type record struct {
	count   int
	resetAt time.Time
}

// Limiter is a per-key fixed-window counter held in process memory. Each
// instance owns its own map; state resets when the process restarts.
type Limiter struct {
	mu      sync.Mutex
	cfg     Config
	now     func() time.Time
	records map[string]*record
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func New(cfg Config, opts ...Option) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		records: make(map[string]*record),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check counts one request for key and reports whether it is within the
// window's budget.
func (l *Limiter) Check(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || now.After(rec.resetAt) {
		rec = &record{resetAt: now.Add(l.cfg.Window)}
		l.records[key] = rec
	}
	rec.count++

	d := Decision{
		Allowed:   rec.count <= l.cfg.Max,
		Limit:     l.cfg.Max,
		Remaining: max(l.cfg.Max-rec.count, 0),
		ResetAt:   rec.resetAt,
	}
	if !d.Allowed {
		d.RetryAfterSeconds = retryAfter(rec.resetAt.Sub(now))
	}
	return d
}

func retryAfter(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// Sweep drops keys whose window has expired and returns how many were removed.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, rec := range l.records {
		if now.After(rec.resetAt) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

func (l *Limiter) Reset() {
	l.mu.Lock()
	l.records = make(map[string]*record)
	l.mu.Unlock()
}

func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

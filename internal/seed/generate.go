package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/netip"
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/domain"
	"github.com/PartyProtect/revive-your-hair-website/internal/service"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Days           int
	VisitorsPerDay int
	Workers        int
	CrawlerRatio   float64
	Now            time.Time
	Seed           uint64
}

var (
	pages = []string{"/", "/pricing", "/blog/hair-loss-basics", "/blog/minoxidil-guide", "/contact", "/about"}

	referrers = []string{"", "", "https://www.google.com/search?q=hair", "https://duckduckgo.com/", "https://www.reddit.com/r/tressless", "newsletter"}

	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (iPad; CPU OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Mobile Safari/537.36",
	}

	crawlerAgent = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"

	languages = []string{"en-US", "en-GB", "de-DE", "nl-NL"}
	timezones = []string{"Europe/Amsterdam", "America/New_York", "Europe/London"}
)

// Generate fabricates visits for the last opts.Days days, one worker per day
// at most opts.Workers at a time. Output is ordered by day.
func Generate(ctx context.Context, opts Options) ([]service.TimedInput, error) {
	if opts.Days <= 0 || opts.VisitorsPerDay <= 0 {
		return nil, fmt.Errorf("days and visitors per day must be positive")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	byDay := make([][]service.TimedInput, opts.Days)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)

	for i := range opts.Days {
		eg.Go(func() error {
			dayStart := opts.Now.Add(-time.Duration(opts.Days-1-i) * 24 * time.Hour).Truncate(24 * time.Hour)
			r := rand.New(rand.NewPCG(opts.Seed, uint64(i)))

			var out []service.TimedInput
			for range opts.VisitorsPerDay {
				if err := ctx.Err(); err != nil {
					return err
				}

				at := dayStart.Add(time.Duration(r.IntN(86400)) * time.Second)
				if at.After(opts.Now) {
					at = opts.Now
				}
				out = append(out, visit(r, visitorIP(r), at, opts.CrawlerRatio)...)
			}
			byDay[i] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []service.TimedInput
	for _, day := range byDay {
		all = append(all, day...)
	}
	return all, nil
}

func visit(r *rand.Rand, ip string, at time.Time, crawlerRatio float64) []service.TimedInput {
	if r.Float64() < crawlerRatio {
		return []service.TimedInput{{
			Input: domain.TrackInput{
				Request:   &domain.TrackRequest{Type: string(domain.EventPageview), Page: pick(r, pages)},
				ClientIP:  ip,
				UserAgent: crawlerAgent,
			},
			At: at,
		}}
	}

	ua := pick(r, userAgents)
	sessionID := fmt.Sprintf("%016x", r.Uint64())
	input := func(req *domain.TrackRequest) domain.TrackInput {
		req.SessionID = sessionID
		return domain.TrackInput{Request: req, ClientIP: ip, UserAgent: ua}
	}

	n := 1 + r.IntN(4)
	var out []service.TimedInput
	for p := range n {
		req := &domain.TrackRequest{
			Type:     string(domain.EventPageview),
			Page:     pick(r, pages),
			Language: pick(r, languages),
			Timezone: pick(r, timezones),
		}
		if p == 0 {
			req.Referrer = pick(r, referrers)
			if r.IntN(5) == 0 {
				req.UTM = &domain.UTM{Campaign: "spring_launch", Source: "newsletter", Medium: "email"}
			}
		}
		out = append(out, service.TimedInput{Input: input(req), At: at.Add(time.Duration(p) * 40 * time.Second)})
	}

	if r.IntN(3) == 0 {
		out = append(out, service.TimedInput{
			Input: input(&domain.TrackRequest{
				Type:      string(domain.EventCustom),
				EventName: domain.EventScrollDepth,
				EventData: map[string]any{"percent": 25 * (1 + r.IntN(4))},
			}),
			At: at.Add(20 * time.Second),
		})
	}
	if r.IntN(5) == 0 {
		out = append(out, service.TimedInput{
			Input: input(&domain.TrackRequest{Type: string(domain.EventCustom), EventName: domain.EventCTAClick}),
			At:    at.Add(25 * time.Second),
		})
	}
	if r.IntN(10) == 0 {
		out = append(out, service.TimedInput{
			Input: input(&domain.TrackRequest{Type: string(domain.EventCustom), EventName: domain.EventFormSubmit}),
			At:    at.Add(35 * time.Second),
		})
	}

	duration := float64(5000 + r.IntN(240000))
	if n == 1 && r.IntN(2) == 0 {
		duration = float64(1000 + r.IntN(20000))
	}
	out = append(out, service.TimedInput{
		Input: input(&domain.TrackRequest{Type: string(domain.EventSession), Duration: &duration, Pages: &n}),
		At:    at.Add(time.Duration(n) * 40 * time.Second),
	})

	return out
}

// visitorIP draws a public-looking IPv4 address from r so that a fixed seed
// yields the same visitors.
func visitorIP(r *rand.Rand) string {
	return netip.AddrFrom4([4]byte{byte(1 + r.IntN(223)), byte(r.IntN(256)), byte(r.IntN(256)), byte(1 + r.IntN(254))}).String()
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

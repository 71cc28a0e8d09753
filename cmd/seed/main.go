package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/bootstrap"
	"github.com/PartyProtect/revive-your-hair-website/internal/config"
	"github.com/PartyProtect/revive-your-hair-website/internal/logger"
	"github.com/PartyProtect/revive-your-hair-website/internal/seed"
	"github.com/PartyProtect/revive-your-hair-website/internal/service"
)

func main() {
	days := flag.Int("days", 14, "Number of days of traffic to generate")
	visitors := flag.Int("visitors", 50, "Visitors per day")
	workers := flag.Int("workers", 4, "Days generated in parallel")
	crawlerRatio := flag.Float64("crawler-ratio", 0.05, "Share of visits made by search crawlers")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.Initialize(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "seed"}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Error("Failed to setup store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	events, err := seed.Generate(ctx, seed.Options{
		Days:           *days,
		VisitorsPerDay: *visitors,
		Workers:        *workers,
		CrawlerRatio:   *crawlerRatio,
		Now:            time.Now().UTC(),
		Seed:           uint64(time.Now().UnixNano()),
	})
	if err != nil {
		log.Error("Failed to generate traffic", "error", err)
		os.Exit(1)
	}

	svc := service.NewTrackingService(store, nil, service.Options{
		Salt:         cfg.Analytics.IPHashSalt,
		Retention:    cfg.Analytics.Retention(),
		StoreTimeout: time.Minute,
		Backend:      cfg.Store.Driver,
	})

	res, err := svc.Import(ctx, events)
	if err != nil {
		log.Error("Failed to import traffic", "error", err)
		os.Exit(1)
	}

	log.Info("Seed completed",
		"store", cfg.Store.Driver,
		"events", len(events),
		"tracked", res.Tracked,
		"filtered", res.Filtered,
		"invalid", res.Invalid,
	)
}

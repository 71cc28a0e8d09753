package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PartyProtect/revive-your-hair-website/internal/aggregate"
	"github.com/PartyProtect/revive-your-hair-website/internal/bootstrap"
	"github.com/PartyProtect/revive-your-hair-website/internal/config"
	"github.com/PartyProtect/revive-your-hair-website/internal/handler"
	"github.com/PartyProtect/revive-your-hair-website/internal/logger"
	"github.com/PartyProtect/revive-your-hair-website/internal/metrics"
	"github.com/PartyProtect/revive-your-hair-website/internal/server"
	"github.com/PartyProtect/revive-your-hair-website/internal/service"
	"github.com/PartyProtect/revive-your-hair-website/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	loggerConfig := logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Service:    "tracking",
	}

	if err := logger.Initialize(loggerConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.Get()
	log.Info("Starting tracking service",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"retention_days", cfg.Analytics.RetentionDays,
		"log_level", cfg.Log.Level,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 10*time.Second)
	store, closeStore, err := bootstrap.OpenStore(setupCtx, cfg)
	cancelSetup()
	if err != nil {
		log.Error("Failed to setup store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}

	trackingService := service.NewTrackingService(store, m, service.Options{
		Salt:         cfg.Analytics.IPHashSalt,
		Retention:    cfg.Analytics.Retention(),
		StoreTimeout: cfg.Store.Timeout,
		Backend:      cfg.Store.Driver,
		Limits:       aggregate.DefaultLimits(),
		Sizes:        aggregate.DefaultBreakdownSizes(),
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ingestLimiter := ratelimit.New(ratelimit.Config{Max: cfg.RateLimit.IngestMax, Window: cfg.RateLimit.IngestWindow})
	statsLimiter := ratelimit.New(ratelimit.Config{Max: cfg.RateLimit.StatsMax, Window: cfg.RateLimit.StatsWindow})
	ingestLimiter.StartSweeper(ctx, cfg.RateLimit.SweepInterval)
	statsLimiter.StartSweeper(ctx, cfg.RateLimit.SweepInterval)

	scheduler, err := setupRetention(cfg.Analytics.SweepSchedule, trackingService, log)
	if err != nil {
		log.Error("Failed to schedule retention sweep", "schedule", cfg.Analytics.SweepSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	trackingHandler := handler.NewTrackingHandler(
		trackingService,
		handler.Limiters{Ingest: ingestLimiter, Stats: statsLimiter},
		cfg.Analytics.APIKey,
		m,
	)
	healthHandler := handler.NewHealthHandler(cfg.Store.Driver, store)

	gin.SetMode(gin.ReleaseMode)
	router, err := server.NewRouter(cfg.Server.AllowedOrigins, cfg.Server.TrustedProxies, server.Handlers{
		Tracking: trackingHandler,
		Health:   healthHandler,
	}, m, registry)
	if err != nil {
		log.Error("Failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	gracefulShutdown(srv, cfg.Server.ShutdownTimeout, scheduler, stop, closeStore, log)
}

func setupRetention(schedule string, svc *service.TrackingService, log *slog.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		result, err := svc.Sweep(ctx)
		if err != nil {
			log.Warn("Retention sweep failed", "error", err)
			return
		}
		log.Info("Retention sweep completed",
			"retention_days", svc.RetentionDays(),
			"pruned", result.Total(),
		)
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

func gracefulShutdown(srv *http.Server, timeout time.Duration, scheduler *cron.Cron, stopBackground context.CancelFunc, closeStore func(), log *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		log.Warn("Retention sweep still running at shutdown")
	}
	stopBackground()

	closeStore()
	log.Info("Store connection closed")

	log.Info("Graceful shutdown completed")
	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
	}
}

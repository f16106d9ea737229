package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sensor-dashboard/internal/api"
	"sensor-dashboard/internal/config"
	"sensor-dashboard/internal/db"
	"sensor-dashboard/internal/feed"
	"sensor-dashboard/internal/logging"
	"sensor-dashboard/internal/metrics"
	"sensor-dashboard/internal/monitor"
	"sensor-dashboard/internal/notification"
	"sensor-dashboard/internal/presenter"
	"sensor-dashboard/internal/providers"
	"sensor-dashboard/internal/scheduler"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config load failed:", err)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		log.Fatal("Logger init failed:", err)
	}
	defer logger.Close()

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to DB when configured; the dashboard runs without it.
	var dbConn *db.DB
	if cfg.DB.DSN != "" {
		dbConn, err = db.New(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Fatalf("DB connect failed: %v", err)
		}
		defer dbConn.Close()
		if err := dbConn.EnsureSchema(ctx); err != nil {
			logger.Fatalf("DB schema failed: %v", err)
		}
	}

	// Initialize notification service
	var alertStore notification.Store
	if dbConn != nil {
		alertStore = dbConn
	}
	svc := notification.New(alertStore, logger, cfg)
	if cfg.Telegram.Token != "" {
		tg, err := providers.NewTelegram(cfg, logger)
		if err != nil {
			logger.Fatalf("Telegram init failed: %v", err)
		}
		svc.Register("telegram", tg.Send)
	}
	var wg sync.WaitGroup
	svc.Start(&wg)

	// Presentation side
	store := presenter.NewStore()
	ws := api.NewWebSocketManager(logger)
	store.Subscribe(ws.Broadcast)

	// One loop owns every monitor
	loop := scheduler.NewLoop(256)
	monitors := make([]*monitor.Monitor, 0, len(cfg.Variants))
	maxHistory := 0
	for _, variant := range cfg.Variants {
		profile := cfg.Profiles[variant]
		if profile.HistoryCapacity > maxHistory {
			maxHistory = profile.HistoryCapacity
		}
		m := monitor.New(variant, profile, loop, logger, store, svc)
		monitors = append(monitors, m)
	}
	registry := monitor.NewRegistry(monitors...)

	consumer := feed.NewConsumer(cfg, registry, logger)
	if dbConn != nil {
		consumer.WithArchive(dbConn)
	}

	server := &http.Server{
		Addr:              ":" + cfg.API.Port,
		Handler:           api.NewRouter(registry, store, ws, logger, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := loop.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	for _, m := range monitors {
		m.Start()
	}
	if dbConn != nil && maxHistory > 0 {
		snaps, err := dbConn.RecentSnapshots(ctx, maxHistory)
		if err != nil {
			logger.Warnf("Failed to preload history: %v", err)
		} else {
			registry.Preload(snaps)
		}
	}

	g.Go(func() error {
		return consumer.Run(gctx)
	})
	g.Go(func() error {
		logger.Infof("API started on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Service error: %v", err)
	}
	consumer.Close()
	svc.Stop()
	wg.Wait()
	logger.Infof("Service stopped")
}

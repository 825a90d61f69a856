package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"smarthome-sim/internal/config"
	"smarthome-sim/internal/engine"
	"smarthome-sim/internal/metrics"
	"smarthome-sim/internal/mirror"
	"smarthome-sim/internal/utils"
	"smarthome-sim/internal/web"

	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, cfgErr := config.LoadConfig()
	if cfg == nil {
		log.Fatalf("Failed to load config: %v", cfgErr)
	}

	logger, err := utils.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfgErr != nil {
		logger.Warn("config fallback", zap.Error(cfgErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sinks := connectSinks(ctx, cfg, logger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(true)
	}

	eng := engine.New(engine.Options{
		TickInterval:    cfg.App.TickInterval,
		HistoryCapacity: cfg.App.HistoryCapacity,
		Seed:            cfg.App.RandomSeed,
		Metrics:         m,
		Breaker:         mirror.DefaultBreakerSettings(),
	}, logger, sinks...)
	if err := eng.Start(ctx); err != nil {
		logger.Fatal("Failed to start engine", zap.Error(err))
	}

	webServer := web.NewWebServer(eng, handlerOf(m), logger)
	go func() {
		if err := webServer.Start(cfg.App.HTTPAddr); err != nil {
			logger.Error("web server failed", zap.Error(err))
			stop()
		}
	}()

	if cfg.MDNS.LocalName != "" {
		go startMDNSServer(ctx, cfg.MDNS.LocalName, logger)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("web shutdown", zap.Error(err))
	}
	eng.Stop()
	logger.Info("Shutdown complete")
}

func handlerOf(m *metrics.Metrics) http.Handler {
	if m == nil {
		return nil
	}
	return m.Handler()
}

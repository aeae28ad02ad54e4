// Command bot is the prayer time notification service.
//
// Usage:
//
//	prayer-bot
//	PORT=8081 prayer-bot
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/zain-malik9246/prayer-time-bot/internal/astro"
	"github.com/zain-malik9246/prayer-time-bot/internal/config"
	"github.com/zain-malik9246/prayer-time-bot/internal/liveness"
	"github.com/zain-malik9246/prayer-time-bot/internal/notify"
	"github.com/zain-malik9246/prayer-time-bot/internal/prayer"
	"github.com/zain-malik9246/prayer-time-bot/internal/scheduler"
	"github.com/zain-malik9246/prayer-time-bot/internal/timetable"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	loc := cfg.Location()

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Telegram transport
	telegram, err := notify.NewTelegram(cfg.BotToken, cfg.ChatID, cfg.RequestTimeout)
	if err != nil {
		logger.Error("Failed to initialize Telegram transport", "error", err)
		os.Exit(1)
	}
	logger.Info("Telegram transport ready", "chat_id", cfg.ChatID)

	// Timetable source: HTTP client plus optional SQLite day-cache
	client := timetable.NewClient(cfg.LUPTAPIKey, loc, cfg.RequestTimeout, logger)
	var store *timetable.Store
	if cfg.CachePath != "" {
		store, err = timetable.OpenStore(cfg.CachePath, loc)
		if err != nil {
			logger.Warn("Timetable cache disabled", "error", err)
		} else {
			defer store.Close()
			logger.Info("Timetable cache ready", "path", cfg.CachePath)
		}
	}
	if cfg.LUPTAPIKey == "" {
		logger.Info("No LUPT API key set; astronomical fallback will always be used")
	}

	engine := &prayer.Engine{
		Calc:         astro.NewCalculator(cfg.Timezone),
		Source:       timetable.NewSource(client, store, logger),
		Latitude:     cfg.Latitude,
		Longitude:    cfg.Longitude,
		RefLatitude:  config.ReferenceLatitude,
		RefLongitude: config.ReferenceLongitude,
		Location:     loc,
		Logger:       logger,
	}

	sched := scheduler.New(engine, telegram, loc, cfg.LocationLabel, logger)

	// Liveness server for the external supervisor
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      liveness.NewRouter(sched.Snapshot, loc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("Liveness server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Liveness server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Notification loop — blocks until interrupted
	logger.Info("Starting prayer time bot",
		"latitude", cfg.Latitude,
		"longitude", cfg.Longitude,
		"timezone", cfg.Timezone,
		"label", cfg.LocationLabel)
	sched.Run(ctx)

	// Graceful shutdown of the liveness server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Stopped")
}

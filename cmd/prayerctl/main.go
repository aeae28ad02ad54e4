// Command prayerctl is the operator CLI for the prayer time bot.
//
// Usage:
//
//	prayerctl times
//	prayerctl times --date 2026-09-01
//	prayerctl summary
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zain-malik9246/prayer-time-bot/internal/astro"
	"github.com/zain-malik9246/prayer-time-bot/internal/config"
	"github.com/zain-malik9246/prayer-time-bot/internal/notify"
	"github.com/zain-malik9246/prayer-time-bot/internal/prayer"
	"github.com/zain-malik9246/prayer-time-bot/internal/scheduler"
	"github.com/zain-malik9246/prayer-time-bot/internal/timetable"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "prayerctl",
		Short: "Prayer time bot operator CLI",
	}

	root.AddCommand(timesCmd())
	root.AddCommand(summaryCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// times command
// --------------------------------------------------------------------------

func timesCmd() *cobra.Command {
	var dateStr string
	cmd := &cobra.Command{
		Use:   "times",
		Short: "Compute and print the prayer windows for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engine, err := buildEngine()
			if err != nil {
				return err
			}
			loc := cfg.Location()

			day := time.Now().In(loc)
			if dateStr != "" {
				day, err = time.ParseInLocation("2006-01-02", dateStr, loc)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}

			sched, err := engine.Compute(context.Background(), day)
			if err != nil {
				return err
			}
			fmt.Println(scheduler.Summary(sched, cfg.LocationLabel, loc))
			return nil
		},
	}
	cmd.Flags().StringVar(&dateStr, "date", "", "Day to compute (YYYY-MM-DD, default today)")
	return cmd
}

// --------------------------------------------------------------------------
// summary command
// --------------------------------------------------------------------------

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Compute today's windows and send the summary message once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engine, err := buildEngine()
			if err != nil {
				return err
			}
			loc := cfg.Location()
			ctx := context.Background()

			sched, err := engine.Compute(ctx, time.Now().In(loc))
			if err != nil {
				return err
			}

			telegram, err := notify.NewTelegram(cfg.BotToken, cfg.ChatID, cfg.RequestTimeout)
			if err != nil {
				return err
			}
			if err := telegram.SendPre(ctx, scheduler.Summary(sched, cfg.LocationLabel, loc)); err != nil {
				return err
			}
			logger.Info("summary sent", "date", sched.Day.Format("2006-01-02"), "method", sched.Method)
			return nil
		},
	}
}

func buildEngine() (*config.Config, *prayer.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	loc := cfg.Location()

	client := timetable.NewClient(cfg.LUPTAPIKey, loc, cfg.RequestTimeout, logger)
	var store *timetable.Store
	if cfg.CachePath != "" {
		if s, err := timetable.OpenStore(cfg.CachePath, loc); err == nil {
			store = s
		} else {
			logger.Warn("timetable cache disabled", "error", err)
		}
	}

	return cfg, &prayer.Engine{
		Calc:         astro.NewCalculator(cfg.Timezone),
		Source:       timetable.NewSource(client, store, logger),
		Latitude:     cfg.Latitude,
		Longitude:    cfg.Longitude,
		RefLatitude:  config.ReferenceLatitude,
		RefLongitude: config.ReferenceLongitude,
		Location:     loc,
		Logger:       logger,
	}, nil
}

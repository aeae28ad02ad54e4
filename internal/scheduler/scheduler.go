// Package scheduler runs the minute-resolution notification loop. It holds
// the current day's window set, fires each (prayer, event) notification at
// most once per calendar day, and recomputes the set when the date rolls
// over.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/zain-malik9246/prayer-time-bot/internal/prayer"
)

// Notifier delivers outbound messages. Satisfied by *notify.Telegram.
type Notifier interface {
	Send(ctx context.Context, text string) error
	SendPre(ctx context.Context, text string) error
}

type eventKind string

const (
	kindStart    eventKind = "start"
	kindEnd      eventKind = "end"
	kindReminder eventKind = "reminder"
)

// Only fajr and maghrib get an "ended" notification; the other ends are
// routine boundaries.
var endNotify = map[prayer.Name]bool{
	prayer.Fajr:    true,
	prayer.Maghrib: true,
}

type firedKey struct {
	name prayer.Name
	kind eventKind
}

// Scheduler is the single owner of the current schedule. The schedule is
// replaced wholesale on each recomputation and published through an atomic
// pointer so the liveness server can read a consistent snapshot without
// locking.
type Scheduler struct {
	engine   *prayer.Engine
	notifier Notifier
	loc      *time.Location
	label    string
	logger   *slog.Logger
	now      func() time.Time

	schedule   atomic.Pointer[prayer.Schedule]
	currentDay time.Time
	fired      map[firedKey]struct{}
}

// New creates a Scheduler. The clock is the real one; tests swap it via
// SetClock.
func New(engine *prayer.Engine, notifier Notifier, loc *time.Location, label string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine:   engine,
		notifier: notifier,
		loc:      loc,
		label:    label,
		logger:   logger,
		now:      time.Now,
		fired:    make(map[firedKey]struct{}),
	}
}

// SetClock replaces the time source. Test hook.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Snapshot returns the current schedule, or nil before the first
// computation. Safe to call from other goroutines.
func (s *Scheduler) Snapshot() *prayer.Schedule {
	return s.schedule.Load()
}

// Run computes today's schedule, sends the daily summary, then ticks once a
// minute until ctx is cancelled. Blocks; intended to be called with `go` or
// as the main goroutine's last act.
func (s *Scheduler) Run(ctx context.Context) {
	s.recompute(ctx, s.now().In(s.loc))

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	s.logger.Info("notification loop started", "interval", time.Minute)
	for {
		select {
		case <-ticker.C:
			s.tick(ctx, s.now().In(s.loc))
		case <-ctx.Done():
			s.logger.Info("notification loop stopped")
			return
		}
	}
}

// tick evaluates one minute. Comparisons are "HH:MM" string equality — a
// delayed tick can miss a minute entirely; there is no backfill.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	hhmm := now.Format("15:04")

	// Daily reset: date rolled over, or the fixed 00:01 recomputation tick.
	if !sameDay(now, s.currentDay) || hhmm == "00:01" {
		s.recompute(ctx, now)
	}

	sched := s.schedule.Load()
	if sched == nil {
		return
	}

	// Reminders for every prayer.
	for _, name := range prayer.Names() {
		w := sched.Window(name)
		if hhmm == w.Reminder().In(s.loc).Format("15:04") && s.mark(name, kindReminder) {
			s.deliver(ctx, fmt.Sprintf("🔔 Reminder: %s ends soon at %s",
				name.Title(), w.End.In(s.loc).Format("15:04")))
		}
	}

	// Ended notifications, restricted set, sent before starts so an
	// end-at-same-minute-as-a-start ordering is deterministic.
	for _, name := range prayer.Names() {
		if !endNotify[name] {
			continue
		}
		w := sched.Window(name)
		if hhmm == w.End.In(s.loc).Format("15:04") && s.mark(name, kindEnd) {
			s.deliver(ctx, fmt.Sprintf("🚨 %s has ended: %s",
				name.Title(), w.End.In(s.loc).Format("15:04")))
		}
	}

	// Started notifications.
	for _, name := range prayer.Names() {
		w := sched.Window(name)
		if hhmm == w.Start.In(s.loc).Format("15:04") && s.mark(name, kindStart) {
			s.deliver(ctx, fmt.Sprintf("⏰ %s has started: %s",
				name.Title(), w.Start.In(s.loc).Format("15:04")))
		}
	}
}

// recompute swaps in a fresh schedule and sends the daily summary. On
// engine failure the previous schedule stays in place. The fired set is
// cleared only when the calendar day actually changes, so a repeated 00:01
// tick cannot re-arm already-fired events.
func (s *Scheduler) recompute(ctx context.Context, now time.Time) {
	sched, err := s.engine.Compute(ctx, now)
	if err != nil {
		s.logger.Error("schedule computation failed, keeping previous", "error", err)
		return
	}

	if !sameDay(now, s.currentDay) {
		s.fired = make(map[firedKey]struct{})
	}
	s.currentDay = now
	s.schedule.Store(sched)

	s.logger.Info("schedule computed",
		"date", now.Format("2006-01-02"), "method", sched.Method)

	if err := s.notifier.SendPre(ctx, Summary(sched, s.label, s.loc)); err != nil {
		s.logger.Warn("summary send failed", "error", err)
	}
}

// mark records a (prayer, kind) firing. Returns false if it already fired
// today.
func (s *Scheduler) mark(name prayer.Name, kind eventKind) bool {
	key := firedKey{name, kind}
	if _, ok := s.fired[key]; ok {
		return false
	}
	s.fired[key] = struct{}{}
	return true
}

func (s *Scheduler) deliver(ctx context.Context, text string) {
	s.logger.Info("notify", "message", text)
	if err := s.notifier.Send(ctx, text); err != nil {
		s.logger.Warn("notification send failed", "error", err)
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

package prayer

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/zain-malik9246/prayer-time-bot/internal/astro"
	"github.com/zain-malik9246/prayer-time-bot/internal/timetable"
)

// Calculator computes astronomical prayer instants for one day at a
// location. Satisfied by *astro.Calculator.
type Calculator interface {
	Times(day time.Time, lat, lon float64) (astro.Times, error)
}

// TimetableSource provides the official timetable row for one day.
// Satisfied by *timetable.Source.
type TimetableSource interface {
	Day(ctx context.Context, day time.Time) (*timetable.Row, error)
}

const (
	// maghribWindow is the fixed congregation duration assumed for the
	// maghrib window.
	maghribWindow = 30 * time.Minute

	// ishaCapAfterMaghrib bounds isha in the fallback path when the
	// twilight angle is never reached before midnight.
	ishaCapAfterMaghrib = 80 * time.Minute
)

const (
	methodOfficial = "LUPT (official, non-jamāʿat) · Hanafi/Mithl-2 · coord-adjusted"
	methodFallback = "MWL fallback (non-jamāʿat) · Hanafi"
)

// Engine produces one day's Schedule. When the official timetable is
// reachable it shifts the published instants by the per-event solar delta
// between the reference location and the observer; otherwise it computes
// everything astronomically at the observer's coordinates. Timetable
// failures never propagate — they select the fallback path.
type Engine struct {
	Calc   Calculator
	Source TimetableSource

	Latitude  float64
	Longitude float64

	RefLatitude  float64
	RefLongitude float64

	Location *time.Location
	Logger   *slog.Logger
}

// Compute builds the Schedule for the given calendar day. The returned
// error is reserved for calculator failure (invalid coordinates or zone),
// which startup validation makes unreachable in normal operation.
func (e *Engine) Compute(ctx context.Context, day time.Time) (*Schedule, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if e.Source != nil {
		row, err := e.Source.Day(ctx, day)
		if err == nil {
			return e.reconcile(day, row, logger)
		}
		logger.Info("timetable unavailable, using astronomical fallback",
			"date", day.Format("2006-01-02"), "error", err)
	}

	return e.fallback(day, logger)
}

// reconcile shifts the official instants by the per-anchor solar deltas.
// Asr is recomputed independently at the observer's coordinates: published
// timetables commonly report the Mithl-1 convention, and a plain shift
// would carry the wrong juristic method forward.
func (e *Engine) reconcile(day time.Time, row *timetable.Row, logger *slog.Logger) (*Schedule, error) {
	ref, err := e.Calc.Times(day, e.RefLatitude, e.RefLongitude)
	if err != nil {
		return nil, err
	}
	you, err := e.Calc.Times(day, e.Latitude, e.Longitude)
	if err != nil {
		return nil, err
	}

	dSunrise := deltaMinutes(you.Solar().Sunrise, ref.Solar().Sunrise)
	dNoon := deltaMinutes(you.Solar().SolarNoon, ref.Solar().SolarNoon)
	dSunset := deltaMinutes(you.Solar().Sunset, ref.Solar().Sunset)

	logger.Debug("solar deltas",
		"sunrise_min", int(dSunrise/time.Minute),
		"noon_min", int(dNoon/time.Minute),
		"sunset_min", int(dSunset/time.Minute))

	return e.assemble(day,
		row.Fajr.Add(dSunrise),
		row.Sunrise.Add(dSunrise),
		row.Dhuhr.Add(dNoon),
		you.Asr,
		row.Maghrib.Add(dSunset),
		row.Isha.Add(dSunset),
		methodOfficial,
	), nil
}

// fallback computes all instants at the observer's coordinates. Isha is
// capped to maghrib + 80 minutes when the astronomical instant lands in the
// final hour of the day.
func (e *Engine) fallback(day time.Time, logger *slog.Logger) (*Schedule, error) {
	t, err := e.Calc.Times(day, e.Latitude, e.Longitude)
	if err != nil {
		return nil, err
	}

	isha := t.Isha
	if isha.In(e.Location).Hour() >= 23 {
		isha = t.Maghrib.Add(ishaCapAfterMaghrib)
		logger.Debug("isha capped", "astronomical", t.Isha, "capped", isha)
	}

	return e.assemble(day, t.Fajr, t.Sunrise, t.Dhuhr, t.Asr, t.Maghrib, isha, methodFallback), nil
}

// assemble derives the window set from the six start instants. Each
// prayer's end is the next chronological boundary; isha and tahajjud end at
// the night's end (next fajr).
func (e *Engine) assemble(day time.Time, fajr, sunrise, dhuhr, asr, maghrib, isha time.Time, method string) *Schedule {
	nightStart := maghrib
	nightEnd := fajr
	if !nightEnd.After(nightStart) {
		nightEnd = fajr.AddDate(0, 0, 1)
	}

	// Final third of the night, rounded up so the notification never
	// fires a minute early.
	tahajjud := ceilMinute(nightStart.Add(nightEnd.Sub(nightStart) * 2 / 3))

	return &Schedule{
		Day:    day,
		Method: method,
		Windows: map[Name]Window{
			Fajr:     {Start: fajr, End: sunrise},
			Dhuhr:    {Start: dhuhr, End: asr},
			Asr:      {Start: asr, End: maghrib},
			Maghrib:  {Start: maghrib, End: maghrib.Add(maghribWindow)},
			Isha:     {Start: isha, End: nightEnd},
			Tahajjud: {Start: tahajjud, End: nightEnd},
		},
	}
}

// deltaMinutes is the offset from ref to you, rounded to a whole minute.
func deltaMinutes(you, ref time.Time) time.Duration {
	return time.Duration(math.Round(you.Sub(ref).Minutes())) * time.Minute
}

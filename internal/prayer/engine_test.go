package prayer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zain-malik9246/prayer-time-bot/internal/astro"
	"github.com/zain-malik9246/prayer-time-bot/internal/timetable"
)

// fakeCalc returns canned times per coordinate pair.
type fakeCalc struct {
	byCoord map[[2]float64]astro.Times
}

func (f *fakeCalc) Times(day time.Time, lat, lon float64) (astro.Times, error) {
	t, ok := f.byCoord[[2]float64{lat, lon}]
	if !ok {
		return astro.Times{}, errors.New("no canned times for coordinates")
	}
	return t, nil
}

type fakeSource struct {
	row *timetable.Row
	err error
}

func (f *fakeSource) Day(_ context.Context, _ time.Time) (*timetable.Row, error) {
	return f.row, f.err
}

var (
	refCoord = [2]float64{51.5162, -0.0650}
	youCoord = [2]float64{51.52, 0.19}
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(d time.Time, h, min int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), h, min, 0, 0, time.UTC)
}

func newEngine(calc Calculator, source TimetableSource) *Engine {
	return &Engine{
		Calc:         calc,
		Source:       source,
		Latitude:     youCoord[0],
		Longitude:    youCoord[1],
		RefLatitude:  refCoord[0],
		RefLongitude: refCoord[1],
		Location:     time.UTC,
	}
}

// Calculator fixture giving sunrise +4, noon +0, sunset -2 minute deltas
// between the reference and observer locations.
func deltaCalc(d time.Time) *fakeCalc {
	return &fakeCalc{byCoord: map[[2]float64]astro.Times{
		refCoord: {
			Fajr:    at(d, 3, 0),
			Sunrise: at(d, 4, 40),
			Dhuhr:   at(d, 13, 5),
			Asr:     at(d, 17, 0),
			Maghrib: at(d, 21, 0),
			Isha:    at(d, 22, 30),
		},
		youCoord: {
			Fajr:    at(d, 3, 4),
			Sunrise: at(d, 4, 44),
			Dhuhr:   at(d, 13, 5),
			Asr:     at(d, 17, 41),
			Maghrib: at(d, 20, 58),
			Isha:    at(d, 22, 28),
		},
	}}
}

func officialRow(d time.Time) *timetable.Row {
	return &timetable.Row{
		Fajr:    at(d, 4, 30),
		Sunrise: at(d, 4, 52),
		Dhuhr:   at(d, 13, 6),
		Asr:     at(d, 18, 20),
		Maghrib: at(d, 20, 15),
		Isha:    at(d, 21, 45),
	}
}

func TestReconcileAppliesSolarDeltas(t *testing.T) {
	d := day(2026, time.June, 15)
	e := newEngine(deltaCalc(d), &fakeSource{row: officialRow(d)})

	s, err := e.Compute(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, at(d, 4, 34), s.Window(Fajr).Start, "fajr shifted by sunrise delta +4")
	assert.Equal(t, at(d, 4, 56), s.Window(Fajr).End, "fajr ends at shifted sunrise")
	assert.Equal(t, at(d, 13, 6), s.Window(Dhuhr).Start, "dhuhr shifted by noon delta 0")
	assert.Equal(t, at(d, 20, 13), s.Window(Maghrib).Start, "maghrib shifted by sunset delta -2")
	assert.Equal(t, at(d, 20, 43), s.Window(Maghrib).End)
	assert.Equal(t, at(d, 21, 43), s.Window(Isha).Start, "isha shifted by sunset delta -2")
	assert.Contains(t, s.Method, "LUPT")
}

func TestReconcileRecomputesHanafiAsr(t *testing.T) {
	d := day(2026, time.June, 15)
	calc := deltaCalc(d)
	e := newEngine(calc, &fakeSource{row: officialRow(d)})

	s, err := e.Compute(context.Background(), d)
	require.NoError(t, err)

	// Asr comes from the calculator at the observer's coordinates, not
	// from the published value plus a shift.
	assert.Equal(t, calc.byCoord[youCoord].Asr, s.Window(Asr).Start)
	assert.NotEqual(t, officialRow(d).Asr.Add(4*time.Minute), s.Window(Asr).Start)
}

func TestBoundaryChaining(t *testing.T) {
	d := day(2026, time.June, 15)
	e := newEngine(deltaCalc(d), &fakeSource{row: officialRow(d)})

	s, err := e.Compute(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, s.Window(Fajr).End, at(d, 4, 56), "fajr ends at sunrise")
	assert.Equal(t, s.Window(Dhuhr).End, s.Window(Asr).Start)
	assert.Equal(t, s.Window(Asr).End, s.Window(Maghrib).Start)
	assert.Equal(t, s.Window(Isha).End, s.Window(Tahajjud).End, "isha and tahajjud share the night's end")
}

func TestMaghribWindowIsThirtyMinutesOnBothPaths(t *testing.T) {
	d := day(2026, time.June, 15)

	official := newEngine(deltaCalc(d), &fakeSource{row: officialRow(d)})
	s, err := official.Compute(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, s.Window(Maghrib).Start.Add(30*time.Minute), s.Window(Maghrib).End)

	fallback := newEngine(deltaCalc(d), &fakeSource{err: errors.New("down")})
	s, err = fallback.Compute(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, s.Window(Maghrib).Start.Add(30*time.Minute), s.Window(Maghrib).End)
}

func TestTahajjudFinalThirdWithCeiling(t *testing.T) {
	d := day(2026, time.June, 15)
	row := officialRow(d)
	row.Maghrib = at(d, 20, 16) // shifted -2 => 20:14; night = 20:14 -> 04:34+1d
	e := newEngine(deltaCalc(d), &fakeSource{row: row})

	s, err := e.Compute(context.Background(), d)
	require.NoError(t, err)

	nightStart := s.Window(Maghrib).Start
	nightEnd := s.Window(Tahajjud).End

	// 2/3 of 8h20m is 5h33m20s; the 20s must round the start forward to
	// the next whole minute, never back.
	assert.Equal(t, at(d, 20, 14), nightStart)
	assert.Equal(t, at(d.AddDate(0, 0, 1), 4, 34), nightEnd)
	assert.Equal(t, time.Date(d.Year(), d.Month(), d.Day()+1, 1, 48, 0, 0, time.UTC), s.Window(Tahajjud).Start)

	assert.True(t, s.Window(Tahajjud).Start.After(nightStart))
	assert.True(t, s.Window(Tahajjud).Start.Before(nightEnd))
}

func TestTahajjudStrictlyInsideNightOnFallback(t *testing.T) {
	d := day(2026, time.June, 15)
	e := newEngine(deltaCalc(d), &fakeSource{err: errors.New("down")})

	s, err := e.Compute(context.Background(), d)
	require.NoError(t, err)

	assert.True(t, s.Window(Tahajjud).Start.After(s.Window(Maghrib).Start))
	assert.True(t, s.Window(Tahajjud).Start.Before(s.Window(Tahajjud).End))
}

func TestRemindersTwentyMinutesBeforeEnd(t *testing.T) {
	d := day(2026, time.June, 15)
	e := newEngine(deltaCalc(d), &fakeSource{row: officialRow(d)})

	s, err := e.Compute(context.Background(), d)
	require.NoError(t, err)

	for _, name := range Names() {
		w := s.Window(name)
		r := w.Reminder()
		assert.Equal(t, w.End.Add(-20*time.Minute).Truncate(time.Minute), r, "reminder for %s", name)
		assert.Zero(t, r.Second())
		assert.Zero(t, r.Nanosecond())
	}
}

func TestFallbackIshaCap(t *testing.T) {
	d := day(2026, time.December, 15)

	build := func(isha time.Time) *Engine {
		calc := &fakeCalc{byCoord: map[[2]float64]astro.Times{
			youCoord: {
				Fajr:    at(d, 6, 10),
				Sunrise: at(d, 8, 0),
				Dhuhr:   at(d, 12, 0),
				Asr:     at(d, 13, 50),
				Maghrib: at(d, 15, 55),
				Isha:    isha,
			},
		}}
		return newEngine(calc, &fakeSource{err: errors.New("down")})
	}

	// Below the boundary: astronomical value kept.
	s, err := build(at(d, 22, 58)).Compute(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, at(d, 22, 58), s.Window(Isha).Start)

	// Hour >= 23: replaced by maghrib + 80 minutes.
	s, err = build(at(d, 23, 10)).Compute(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, at(d, 17, 15), s.Window(Isha).Start)
}

func TestFallbackOnSourceError(t *testing.T) {
	d := day(2026, time.June, 15)
	calc := deltaCalc(d)
	e := newEngine(calc, &fakeSource{err: errors.New("503 from LUPT")})

	s, err := e.Compute(context.Background(), d)
	require.NoError(t, err, "timetable failure must not propagate")

	you := calc.byCoord[youCoord]
	assert.Equal(t, you.Fajr, s.Window(Fajr).Start)
	assert.Equal(t, you.Sunrise, s.Window(Fajr).End)
	assert.Equal(t, you.Maghrib, s.Window(Maghrib).Start)
	assert.Contains(t, s.Method, "fallback")
}

func TestFallbackWhenSourceAbsent(t *testing.T) {
	d := day(2026, time.June, 15)
	e := newEngine(deltaCalc(d), nil)

	s, err := e.Compute(context.Background(), d)
	require.NoError(t, err)
	assert.Contains(t, s.Method, "fallback")
}

func TestCeilMinute(t *testing.T) {
	base := time.Date(2026, time.June, 15, 1, 45, 0, 0, time.UTC)
	assert.Equal(t, base, ceilMinute(base), "whole minute unchanged")
	assert.Equal(t, base.Add(time.Minute), ceilMinute(base.Add(time.Second)))
	assert.Equal(t, base.Add(time.Minute), ceilMinute(base.Add(59*time.Second)))
	assert.Equal(t, base.Add(time.Minute), ceilMinute(base.Add(time.Nanosecond)))
}

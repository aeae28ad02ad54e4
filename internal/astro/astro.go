// Package astro adapts the adhango astronomical library to the fixed
// calculation convention used throughout this service: 18° fajr angle,
// 17° isha angle, Muslim World League method, Hanafi (Mithl-2) asr and the
// twilight-angle high latitude rule.
//
// The angles and method do not affect the purely solar events (sunrise,
// solar noon, sunset); they matter for fajr, asr and isha.
package astro

import (
	"fmt"
	"time"

	calc "github.com/mnadev/adhango/pkg/calc"
	data "github.com/mnadev/adhango/pkg/data"
	util "github.com/mnadev/adhango/pkg/util"
)

// Times holds the six computed instants for one (location, date, zone),
// timezone-aware and recomputed per call.
type Times struct {
	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time
}

// SolarEvents is the subset of Times anchored directly to sun geometry.
type SolarEvents struct {
	Sunrise   time.Time
	SolarNoon time.Time
	Sunset    time.Time
}

// Solar returns the three solar anchor instants: sunrise, solar transit
// (dhuhr) and sunset (start of maghrib).
func (t Times) Solar() SolarEvents {
	return SolarEvents{
		Sunrise:   t.Sunrise,
		SolarNoon: t.Dhuhr,
		Sunset:    t.Maghrib,
	}
}

// Calculator computes prayer instants for a fixed IANA zone.
type Calculator struct {
	zone string
}

// NewCalculator creates a Calculator reporting instants in the given zone.
func NewCalculator(zone string) *Calculator {
	return &Calculator{zone: zone}
}

// Times computes the six instants for the given calendar day at (lat, lon).
func (c *Calculator) Times(day time.Time, lat, lon float64) (Times, error) {
	coords, err := util.NewCoordinates(lat, lon)
	if err != nil {
		return Times{}, fmt.Errorf("coordinates (%v, %v): %w", lat, lon, err)
	}

	date := data.NewDateComponents(time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC))

	params := calc.NewCalculationParametersBuilder().
		SetMethod(calc.MUSLIM_WORLD_LEAGUE).
		SetFajrAngle(18).
		SetIshaAngle(17).
		SetMadhab(calc.HANAFI).
		SetHighLatitudeRule(calc.TWILIGHT_ANGLE).
		Build()

	pt, err := calc.NewPrayerTimes(coords, date, params)
	if err != nil {
		return Times{}, fmt.Errorf("prayer times: %w", err)
	}
	if err := pt.SetTimeZone(c.zone); err != nil {
		return Times{}, fmt.Errorf("set timezone %q: %w", c.zone, err)
	}

	return Times{
		Fajr:    pt.Fajr,
		Sunrise: pt.Sunrise,
		Dhuhr:   pt.Dhuhr,
		Asr:     pt.Asr,
		Maghrib: pt.Maghrib,
		Isha:    pt.Isha,
	}, nil
}

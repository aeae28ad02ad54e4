// Package prayer holds the prayer window model and the solar reconciliation
// engine that produces one day's windows from the official timetable or,
// when that is unavailable, from pure astronomical computation.
package prayer

import "time"

// Name identifies a prayer window. Sunrise is an auxiliary instant — it is
// never notified itself, it only bounds the end of fajr.
type Name string

const (
	Fajr     Name = "fajr"
	Sunrise  Name = "sunrise"
	Dhuhr    Name = "dhuhr"
	Asr      Name = "asr"
	Maghrib  Name = "maghrib"
	Isha     Name = "isha"
	Tahajjud Name = "tahajjud"
)

// Names lists the six notifiable prayers in chronological order.
func Names() []Name {
	return []Name{Fajr, Dhuhr, Asr, Maghrib, Isha, Tahajjud}
}

// Title returns the capitalized display form of the name.
func (n Name) Title() string {
	if n == "" {
		return ""
	}
	s := string(n)
	return string(s[0]-'a'+'A') + s[1:]
}

// reminderLead is how long before a window's end the reminder fires.
const reminderLead = 20 * time.Minute

// Window is one prayer's start and end instant. End may fall on the
// following calendar day for the windows that span midnight (isha,
// tahajjud); comparisons must use the absolute instants.
type Window struct {
	Start time.Time
	End   time.Time
}

// Reminder is the instant of the 20-minute-before-end reminder, with
// seconds and sub-seconds zeroed.
func (w Window) Reminder() time.Time {
	return atMinute(w.End.Add(-reminderLead))
}

// Schedule is one day's complete window set. It is built once per calendar
// day and never mutated; a recomputation produces an entirely new value.
type Schedule struct {
	Day     time.Time
	Windows map[Name]Window
	Method  string
}

// Window returns the window for the given prayer.
func (s *Schedule) Window(n Name) Window {
	return s.Windows[n]
}

// atMinute zeroes the wall-clock seconds and sub-seconds of t.
func atMinute(t time.Time) time.Time {
	return t.Add(-time.Duration(t.Second())*time.Second - time.Duration(t.Nanosecond())*time.Nanosecond)
}

// ceilMinute rounds t up to the next whole minute. An instant already on a
// minute boundary is returned unchanged; any partial second rounds forward.
func ceilMinute(t time.Time) time.Time {
	m := atMinute(t)
	if m.Equal(t) {
		return t
	}
	return m.Add(time.Minute)
}

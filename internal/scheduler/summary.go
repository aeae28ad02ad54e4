package scheduler

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zain-malik9246/prayer-time-bot/internal/prayer"
)

// labelColumn is the fixed width of the label column in the daily summary.
const labelColumn = 24

var summaryEmoji = map[prayer.Name]string{
	prayer.Fajr:     "🌅",
	prayer.Dhuhr:    "🕛",
	prayer.Asr:      "🕒",
	prayer.Maghrib:  "🌇",
	prayer.Isha:     "🌃",
	prayer.Tahajjud: "🌌",
}

// Summary renders the daily prayer table. The caller wraps it in a
// preformatted block so the column alignment survives Telegram rendering.
func Summary(s *prayer.Schedule, label string, loc *time.Location) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📍 %s — %s\n", label, s.Day.Format("Mon 02-01-06"))

	for _, name := range prayer.Names() {
		w := s.Window(name)
		b.WriteString("\n")
		b.WriteString(row(summaryEmoji[name]+" "+name.Title()+" starts:", w.Start, loc))
		b.WriteString(row("   ⏳ Ends:", w.End, loc))
	}

	b.WriteString("\n" + s.Method)
	return b.String()
}

func row(label string, t time.Time, loc *time.Location) string {
	return padRight(label, labelColumn) + t.In(loc).Format("15:04") + "\n"
}

// padRight pads by rune count, not bytes, so emoji don't skew the column.
func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

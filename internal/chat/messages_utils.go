package chat

import (
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

var threadAgeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "now", DivBy: 1},
	{D: time.Hour, Format: "%dm", DivBy: time.Minute},
	{D: humanize.Day, Format: "%dh", DivBy: time.Hour},
	{D: humanize.Week, Format: "%dd", DivBy: humanize.Day},
}

var messageAgeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "Just now", DivBy: 1},
	{D: time.Hour, Format: "%dm ago", DivBy: time.Minute},
}

// formatThreadTime renders a thread row timestamp: now, 5m, 3h, 2d, then
// the calendar date.
func formatThreadTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if now.Sub(t) >= humanize.Week {
		return t.Local().Format("Jan 2")
	}
	return humanize.CustomRelTime(t, now, "", "", threadAgeMagnitudes)
}

// formatMessageTime renders a message footer timestamp.
func formatMessageTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if now.Sub(t) < time.Hour {
		return humanize.CustomRelTime(t, now, "", "", messageAgeMagnitudes)
	}
	lt, ln := t.Local(), now.Local()
	if sameDay(lt, ln) {
		return lt.Format("15:04")
	}
	if sameDay(lt, ln.AddDate(0, 0, -1)) {
		return "Yesterday " + lt.Format("15:04")
	}
	return lt.Format("Jan 2 15:04")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

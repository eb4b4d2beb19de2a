package chat

import (
	"testing"
	"time"
)

func TestFormatThreadTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"seconds", now.Add(-20 * time.Second), "now"},
		{"minutes", now.Add(-5 * time.Minute), "5m"},
		{"hours", now.Add(-3 * time.Hour), "3h"},
		{"days", now.Add(-2 * 24 * time.Hour), "2d"},
		{"week", now.Add(-8 * 24 * time.Hour), "Mar 2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatThreadTime(tc.at, now); got != tc.want {
				t.Fatalf("formatThreadTime: got %q want %q", got, tc.want)
			}
		})
	}
}

func TestFormatMessageTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"just now", now.Add(-10 * time.Second), "Just now"},
		{"minutes", now.Add(-15 * time.Minute), "15m ago"},
		{"today", time.Date(2025, 3, 10, 8, 30, 0, 0, time.Local), "08:30"},
		{"yesterday", time.Date(2025, 3, 9, 22, 5, 0, 0, time.Local), "Yesterday 22:05"},
		{"older", time.Date(2025, 2, 14, 9, 0, 0, 0, time.Local), "Feb 14 09:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatMessageTime(tc.at, now); got != tc.want {
				t.Fatalf("formatMessageTime: got %q want %q", got, tc.want)
			}
		})
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("hello world", 6); got != "hello…" {
		t.Fatalf("truncateLine: got %q", got)
	}
	if got := truncateLine("short", 10); got != "short" {
		t.Fatalf("truncateLine: got %q", got)
	}
	if got := truncateLine("anything", 0); got != "" {
		t.Fatalf("truncateLine zero width: got %q", got)
	}
}

func TestQuickIndex(t *testing.T) {
	if idx, ok := quickIndex("1"); !ok || idx != 0 {
		t.Fatalf("quickIndex(1): got %d %v", idx, ok)
	}
	if idx, ok := quickIndex("6"); !ok || idx != 5 {
		t.Fatalf("quickIndex(6): got %d %v", idx, ok)
	}
	for _, bad := range []string{"0", "7", "x", "12"} {
		if _, ok := quickIndex(bad); ok {
			t.Fatalf("quickIndex(%q) accepted", bad)
		}
	}
}

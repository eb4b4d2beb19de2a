package search

import (
	"strings"
	"sync"
	"time"
)

const (
	DefaultDelay    = 250 * time.Millisecond
	DefaultMinChars = 2
)

// Request is a query waiting out the debounce delay.
type Request struct {
	Seq   int
	Query string
}

// Debouncer collapses bursts of keystrokes into one query. Every keystroke
// supersedes the previous one; only the request whose delay elapses while it
// is still the latest may be issued.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	minChars int
	seq      int
}

// NewDebouncer returns a debouncer. Non-positive arguments take the defaults.
func NewDebouncer(delay time.Duration, minChars int) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return &Debouncer{delay: delay, minChars: minChars}
}

// Delay is the quiet period before a query is issued.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Input records a keystroke. It returns false when the trimmed query is
// below the minimum length: no request may be scheduled and any pending one
// is cancelled.
func (d *Debouncer) Input(query string) (Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	query = strings.TrimSpace(query)
	if len([]rune(query)) < d.minChars {
		return Request{}, false
	}
	return Request{Seq: d.seq, Query: query}, true
}

// Ready reports whether req survived its delay without being superseded.
func (d *Debouncer) Ready(req Request) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return req.Seq == d.seq
}

// Current reports whether a response for seq may still be shown.
func (d *Debouncer) Current(seq int) bool {
	return d.Ready(Request{Seq: seq})
}

// Cancel supersedes any pending request, e.g. when the search box is cleared.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
}

// Package ratelimit defines the sliding-window rate limit entity used
// to bound action frequency per actor and endpoint.
package ratelimit

import "time"

// Window tracks request counts for one (actor, endpoint) pair inside a
// fixed time window. A window is created on the first action and reset
// once the current time passes window_start + window_size.
type Window struct {
	Actor       string        `json:"actor"`
	Endpoint    string        `json:"endpoint"`
	WindowStart time.Time     `json:"window_start"`
	Count       int           `json:"count"`
	Limit       int           `json:"limit"`
	WindowSize  time.Duration `json:"window_size"`
}

// NewWindow opens a fresh window starting at now.
func NewWindow(actor, endpoint string, limit int, size time.Duration, now time.Time) *Window {
	return &Window{
		Actor:       actor,
		Endpoint:    endpoint,
		WindowStart: now,
		Count:       0,
		Limit:       limit,
		WindowSize:  size,
	}
}

// Expired reports whether the window has elapsed at the given time.
func (w *Window) Expired(now time.Time) bool {
	return now.Sub(w.WindowStart) > w.WindowSize
}

// Allow consumes one slot if the window has capacity. An expired
// window is reset before counting. Returns false when the limit is
// already reached; the caller decides how to react.
func (w *Window) Allow(now time.Time) bool {
	if w.Expired(now) {
		w.WindowStart = now
		w.Count = 0
	}
	if w.Count >= w.Limit {
		return false
	}
	w.Count++
	return true
}

// Key returns the logical identity of the window.
func (w *Window) Key() string {
	return w.Actor + "|" + w.Endpoint
}

// Package ratelimit enforces a fixed number of events per window and key.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Window admits at most max events per key in each window. A key's window
// opens on its first event and the full allowance returns only when it closes.
type Window struct {
	max    int
	window time.Duration

	mu          sync.Mutex
	buckets     map[string]*bucket
	lastCleanup time.Time
}

type bucket struct {
	// limiter starts full and refills one token per window, so it
	// never gains a token before the window is replaced.
	limiter *rate.Limiter
	start   time.Time
}

// New returns a limiter allowing max events per window for each key
func New(max int, window time.Duration) *Window {
	return &Window{
		max:     max,
		window:  window,
		buckets: make(map[string]*bucket),
	}
}

// Max is the number of events allowed per window
func (w *Window) Max() int { return w.max }

// Length is the window duration
func (w *Window) Length() time.Duration { return w.window }

// Allow reports whether key may proceed now
func (w *Window) Allow(key string) bool {
	ok, _ := w.AllowAt(key, time.Now())
	return ok
}

// AllowAt reports whether key may proceed at now. When it may not, the
// returned duration is the time left until its window closes.
func (w *Window) AllowAt(key string, now time.Time) (bool, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.cleanup(now)

	b, ok := w.buckets[key]
	if !ok || !now.Before(b.start.Add(w.window)) {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(w.window), w.max), start: now}
		w.buckets[key] = b
	}

	if b.limiter.AllowN(now, 1) {
		return true, 0
	}
	return false, b.start.Add(w.window).Sub(now)
}

// cleanup drops closed windows, at most once per window length
func (w *Window) cleanup(now time.Time) {
	if now.Sub(w.lastCleanup) < w.window {
		return
	}
	w.lastCleanup = now

	for key, b := range w.buckets {
		if !now.Before(b.start.Add(w.window)) {
			delete(w.buckets, key)
		}
	}
}

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindow_AllowsMaxPerWindow(t *testing.T) {
	limiter := New(100, 15*time.Minute)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	allowed := 0
	for i := 0; i < 900; i++ {
		if ok, _ := limiter.AllowAt("10.0.0.1", start.Add(time.Duration(i)*time.Second)); ok {
			allowed++
		}
	}
	assert.Equal(t, 100, allowed)
}

func TestWindow_RetryAfter(t *testing.T) {
	limiter := New(2, time.Minute)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	ok, _ := limiter.AllowAt("a", start)
	assert.True(t, ok)
	ok, _ = limiter.AllowAt("a", start.Add(10*time.Second))
	assert.True(t, ok)

	ok, retry := limiter.AllowAt("a", start.Add(45*time.Second))
	assert.False(t, ok)
	assert.Equal(t, 15*time.Second, retry)
}

func TestWindow_ResetsWhenWindowCloses(t *testing.T) {
	limiter := New(3, time.Minute)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		ok, _ := limiter.AllowAt("a", start)
		assert.True(t, ok)
	}
	ok, _ := limiter.AllowAt("a", start.Add(59*time.Second))
	assert.False(t, ok)

	next := start.Add(time.Minute)
	for i := 0; i < 3; i++ {
		ok, _ := limiter.AllowAt("a", next)
		assert.True(t, ok)
	}
	ok, _ = limiter.AllowAt("a", next)
	assert.False(t, ok)
}

func TestWindow_KeysAreIndependent(t *testing.T) {
	limiter := New(1, time.Minute)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	ok, _ := limiter.AllowAt("a", now)
	assert.True(t, ok)
	ok, _ = limiter.AllowAt("a", now)
	assert.False(t, ok)
	ok, _ = limiter.AllowAt("b", now)
	assert.True(t, ok)
}

func TestWindow_CleanupDropsClosedWindows(t *testing.T) {
	limiter := New(1, time.Minute)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	limiter.AllowAt("a", now)
	limiter.AllowAt("b", now.Add(2*time.Minute))

	assert.Len(t, limiter.buckets, 1)
	assert.Contains(t, limiter.buckets, "b")
}

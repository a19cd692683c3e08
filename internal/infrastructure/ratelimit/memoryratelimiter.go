package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimiter is a single-process sliding-window limiter used when
// redis is disabled. Counts are per-instance and best effort.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

func NewMemoryRateLimiter() RateLimiter {
	return &MemoryRateLimiter{
		entries: make(map[string][]time.Time),
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string, config RateLimitConfig) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// One timestamp list per key; the day window covers the shorter ones
	stamps := pruneBefore(l.entries[key], now.Add(-24*time.Hour))

	windows := []struct {
		duration time.Duration
		limit    int
	}{
		{time.Minute, config.RequestsPerMinute},
		{time.Hour, config.RequestsPerHour},
		{24 * time.Hour, config.RequestsPerDay},
	}

	for _, window := range windows {
		if window.limit <= 0 {
			continue
		}
		if countSince(stamps, now.Add(-window.duration)) >= window.limit {
			l.entries[key] = stamps
			return false, nil
		}
	}

	l.entries[key] = append(stamps, now)
	return true, nil
}

func (l *MemoryRateLimiter) GetRemaining(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	return int64(countSince(l.entries[key], now.Add(-window))), nil
}

func (l *MemoryRateLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, key)
	return nil
}

func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(stamps) && stamps[idx].Before(cutoff) {
		idx++
	}
	return stamps[idx:]
}

func countSince(stamps []time.Time, cutoff time.Time) int {
	count := 0
	for i := len(stamps) - 1; i >= 0; i-- {
		if stamps[i].Before(cutoff) {
			break
		}
		count++
	}
	return count
}

// Package ratelimit throttles the acquire endpoint per user_id.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 10 * time.Minute
	entryTTL        = 10 * time.Minute
)

// userLimiter holds a rate limiter and its last access time.
type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter provides per-user_id rate limiting for the acquire endpoint.
// A RequestsPerMinute of 0 disables throttling entirely.
type Limiter struct {
	limiters          sync.Map
	requestsPerMinute int
	burst             int
	stopChan          chan struct{}
}

// New creates a limiter and starts its cleanup goroutine. requestsPerMinute
// of 0 makes Allow always return true.
func New(requestsPerMinute, burst int) *Limiter {
	rl := &Limiter{
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		stopChan:          make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether a request from userID is allowed under the limit.
func (rl *Limiter) Allow(userID string) bool {
	if rl.requestsPerMinute <= 0 {
		return true
	}
	return rl.getLimiter(userID).Allow()
}

func (rl *Limiter) getLimiter(userID string) *rate.Limiter {
	now := time.Now()

	if existing, ok := rl.limiters.Load(userID); ok {
		entry := existing.(*userLimiter)
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(float64(rl.requestsPerMinute)/60.0), rl.burst)
	entry := &userLimiter{limiter: limiter, lastSeen: now}

	actual, _ := rl.limiters.LoadOrStore(userID, entry)
	return actual.(*userLimiter).limiter
}

func (rl *Limiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopChan:
			return
		}
	}
}

func (rl *Limiter) cleanup() {
	cutoff := time.Now().Add(-entryTTL)
	rl.limiters.Range(func(key, value interface{}) bool {
		entry := value.(*userLimiter)
		if entry.lastSeen.Before(cutoff) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// Stop terminates the cleanup goroutine.
func (rl *Limiter) Stop() {
	close(rl.stopChan)
}

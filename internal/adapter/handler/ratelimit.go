package handler

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterPruneInterval = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per key. Buckets that have refilled
// and sat unused for a prune interval are dropped, since a fresh bucket is
// indistinguishable from them.
type RateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	now       func() time.Time
	lastPrune time.Time
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    b,
		now:      time.Now,
	}
}

func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastPrune) >= limiterPruneInterval {
		rl.prune(now)
	}

	if e, exists := rl.limiters[key]; exists {
		e.lastSeen = now
		return e.limiter
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// Len reports how many keys currently hold a bucket.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) prune(now time.Time) {
	for key, e := range rl.limiters {
		if now.Sub(e.lastSeen) < limiterPruneInterval {
			continue
		}
		if e.limiter.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
	rl.lastPrune = now
}

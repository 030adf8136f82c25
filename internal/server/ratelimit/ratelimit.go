// Package ratelimit provides rate limiting functionality using token bucket algorithm.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket represents a token bucket rate limiter.
// It allows a burst of requests up to its capacity, with tokens refilling
// at a steady rate.
type TokenBucket struct {
	capacity   int        // Maximum tokens (burst capacity)
	refillRate float64    // Tokens per second
	tokens     float64    // Current tokens available
	lastRefill time.Time  // Last time tokens were refilled
	mu         sync.Mutex // Mutex for thread safety
}

// newTokenBucket creates a new token bucket with the specified capacity and refill rate.
func newTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity), // Start with full bucket
		lastRefill: time.Now(),
	}
}

// refill adds tokens for the time elapsed since the last refill.
// Callers must hold mu.
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now
}

// allow checks if a token is available and consumes it if so.
func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}

	return false
}

// status returns the remaining whole tokens and the time the bucket will be
// full again, without consuming a token.
func (tb *TokenBucket) status() (remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.refill(now)

	remaining = int(tb.tokens)
	if tb.tokens < float64(tb.capacity) {
		tokensNeeded := float64(tb.capacity) - tb.tokens
		secondsUntilFull := tokensNeeded / tb.refillRate
		resetTime = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	} else {
		resetTime = now
	}

	return remaining, resetTime
}

// nextToken returns how long until a single token becomes available.
func (tb *TokenBucket) nextToken() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())

	if tb.tokens >= 1.0 {
		return 0
	}
	needed := 1.0 - tb.tokens
	return time.Duration(needed / tb.refillRate * float64(time.Second))
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages rate limiting for multiple clients using token buckets,
// one bucket per client.
type Limiter struct {
	config *Config

	mu      sync.RWMutex
	buckets map[string]*TokenBucket
	access  map[string]time.Time // Last access per client, for eviction

	janitorTicker *time.Ticker
	janitorStop   chan struct{}
}

// NewLimiter creates a new rate limiter with the given configuration.
// A nil config uses defaults.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &Limiter{
		config:  config,
		buckets: make(map[string]*TokenBucket),
		access:  make(map[string]time.Time),
	}

	if config.JanitorInterval > 0 {
		limiter.janitorTicker = time.NewTicker(config.JanitorInterval)
		limiter.janitorStop = make(chan struct{})
		go limiter.janitor()
	}

	return limiter
}

// Allow checks if a request from the given client is allowed.
// Returns true if allowed, false if rate limited, along with rate limit
// information for response headers.
func (l *Limiter) Allow(clientID string) (bool, Info) {
	bucket := l.getBucket(clientID)

	l.mu.Lock()
	l.access[clientID] = time.Now()
	l.mu.Unlock()

	allowed := bucket.allow()
	remaining, resetTime := bucket.status()

	var retryAfter time.Duration
	if !allowed {
		retryAfter = bucket.nextToken()
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      l.config.Burst,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

// getBucket gets or creates the token bucket for the given client.
func (l *Limiter) getBucket(clientID string) *TokenBucket {
	l.mu.RLock()
	bucket, exists := l.buckets[clientID]
	l.mu.RUnlock()

	if exists {
		return bucket
	}

	capacity := l.config.Burst
	if capacity < 1 {
		capacity = 1
	}
	bucket = newTokenBucket(capacity, l.config.RPS)

	l.mu.Lock()
	defer l.mu.Unlock()
	// Double-check after acquiring write lock
	if existing, exists := l.buckets[clientID]; exists {
		return existing
	}
	l.buckets[clientID] = bucket
	return bucket
}

// janitor periodically evicts buckets of idle clients.
func (l *Limiter) janitor() {
	for {
		select {
		case <-l.janitorTicker.C:
			l.evictIdle()
		case <-l.janitorStop:
			return
		}
	}
}

// evictIdle removes buckets whose clients have been idle past the TTL.
func (l *Limiter) evictIdle() {
	cutoff := time.Now().Add(-l.config.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for clientID, last := range l.access {
		if last.Before(cutoff) {
			delete(l.buckets, clientID)
			delete(l.access, clientID)
		}
	}
}

// Size returns the number of tracked clients.
func (l *Limiter) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Stop stops the janitor goroutine.
func (l *Limiter) Stop() {
	if l.janitorTicker != nil {
		l.janitorTicker.Stop()
	}
	if l.janitorStop != nil {
		close(l.janitorStop)
	}
}

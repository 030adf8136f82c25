package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestTokenBucket_Allow(t *testing.T) {
	bucket := newTokenBucket(10, 1.0) // 10 tokens, 1 token per second

	// Should allow 10 requests immediately (burst)
	for i := 0; i < 10; i++ {
		if !bucket.allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// 11th request should be denied (no tokens left)
	if bucket.allow() {
		t.Error("Expected 11th request to be denied")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(3, 10.0) // 10 tokens per second

	// Consume all tokens
	for i := 0; i < 3; i++ {
		bucket.allow()
	}
	if bucket.allow() {
		t.Error("Expected request to be denied with empty bucket")
	}

	// Wait for at least one token to refill
	time.Sleep(150 * time.Millisecond)

	if !bucket.allow() {
		t.Error("Expected request to be allowed after refill")
	}
}

func TestTokenBucket_Status(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	remaining, resetTime := bucket.status()
	if remaining != 10 {
		t.Errorf("Expected 10 remaining tokens, got %d", remaining)
	}
	if resetTime.After(time.Now().Add(time.Second)) {
		t.Error("Expected full bucket to reset immediately")
	}

	bucket.allow()
	remaining, resetTime = bucket.status()
	if remaining != 9 {
		t.Errorf("Expected 9 remaining tokens, got %d", remaining)
	}
	if !resetTime.After(time.Now()) {
		t.Error("Reset time should be in the future after consuming a token")
	}
}

func TestTokenBucket_NextToken(t *testing.T) {
	bucket := newTokenBucket(1, 2.0) // refills in 500ms

	if bucket.nextToken() != 0 {
		t.Error("Expected no wait with a full bucket")
	}

	bucket.allow()
	wait := bucket.nextToken()
	if wait <= 0 {
		t.Error("Expected positive wait with an empty bucket")
	}
	if wait > 500*time.Millisecond {
		t.Errorf("Expected wait of at most 500ms, got %v", wait)
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{RPS: 1, Burst: 3})
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// Should allow requests up to burst capacity
	for i := 0; i < 3; i++ {
		allowed, rateInfo := limiter.Allow(clientID)
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 3 {
			t.Errorf("Expected limit 3, got %d", rateInfo.Limit)
		}
	}

	// 4th request should be denied
	allowed, rateInfo := limiter.Allow(clientID)
	if allowed {
		t.Error("Expected 4th request to be denied")
	}
	if rateInfo.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", rateInfo.Remaining)
	}
	if rateInfo.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	limiter := NewLimiter(&Config{RPS: 1, Burst: 1})
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("client-a"); !allowed {
		t.Error("Expected first request from client-a to be allowed")
	}
	if allowed, _ := limiter.Allow("client-a"); allowed {
		t.Error("Expected second request from client-a to be denied")
	}

	// A different client has its own bucket
	if allowed, _ := limiter.Allow("client-b"); !allowed {
		t.Error("Expected first request from client-b to be allowed")
	}
}

func TestLimiter_ConcurrentRequests(t *testing.T) {
	// Refill rate is negligible within the test window
	limiter := NewLimiter(&Config{RPS: 0.001, Burst: 10})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("shared-client"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 10 {
		t.Errorf("Expected exactly 10 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_EvictIdle(t *testing.T) {
	limiter := NewLimiter(&Config{RPS: 1, Burst: 1, IdleTTL: time.Hour})
	defer limiter.Stop()

	limiter.Allow("client-a")
	limiter.Allow("client-b")
	if limiter.Size() != 2 {
		t.Fatalf("Expected 2 tracked clients, got %d", limiter.Size())
	}

	// Backdate one client past the TTL
	limiter.mu.Lock()
	limiter.access["client-a"] = time.Now().Add(-2 * time.Hour)
	limiter.mu.Unlock()

	limiter.evictIdle()

	if limiter.Size() != 1 {
		t.Errorf("Expected 1 tracked client after eviction, got %d", limiter.Size())
	}
	if _, exists := limiter.buckets["client-b"]; !exists {
		t.Error("Expected active client to survive eviction")
	}
}

func TestNewLimiter_NilConfigUsesDefaults(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, rateInfo := limiter.Allow("client")
	if !allowed {
		t.Error("Expected first request to be allowed")
	}
	if rateInfo.Limit != DefaultConfig().Burst {
		t.Errorf("Expected default burst %d, got %d", DefaultConfig().Burst, rateInfo.Limit)
	}
}

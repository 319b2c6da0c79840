package security

import (
	"fmt"
	"testing"
	"time"
)

// NOTE: This test file intentionally uses mu.RLock() without defer for
// testing internal state inspection. All locks are immediately followed
// by unlock on the next line. This is safe for tests.
// nosemgrep: beacon-mutex-defer-unlock

// TestRateLimiter_Allow_NormalLoad verifies rate limiter allows traffic under threshold.
func TestRateLimiter_Allow_NormalLoad(t *testing.T) {
	// Create RateLimiter with threshold=100
	rl := NewRateLimiter(100, 60*time.Second, 10000)

	sourceIP := "192.168.1.50"

	// Send 50 queries from same source IP (well under 100 qps threshold)
	for i := 0; i < 50; i++ {
		allowed := rl.Allow(sourceIP)
		if !allowed {
			t.Errorf("Query %d was blocked but should be allowed (under 100 qps threshold)", i+1)
		}
	}

	// Verify no cooldown triggered (entry should exist but no cooldown)
	rl.mu.RLock() // nosemgrep: beacon-mutex-defer-unlock
	entry, exists := rl.sources[sourceIP]
	rl.mu.RUnlock()

	if !exists {
		t.Fatal("Expected entry to exist for source IP")
	}

	if !entry.cooldownExpiry.IsZero() {
		t.Errorf("Expected no cooldown, but cooldownExpiry is set to %v", entry.cooldownExpiry)
	}

	if entry.queryCount > 100 {
		t.Errorf("Expected queryCount <= 100, got %d", entry.queryCount)
	}
}

// TestRateLimiter_Allow_ExceedsThreshold verifies rate limiter blocks flooding sources.
func TestRateLimiter_Allow_ExceedsThreshold(t *testing.T) {
	// Create RateLimiter with threshold=100, cooldown=60s
	rl := NewRateLimiter(100, 60*time.Second, 10000)

	sourceIP := "192.168.1.100"

	allowedCount := 0
	blockedCount := 0

	// Send 150 queries from same source IP within 1 second (exceeds 100 qps threshold)
	for i := 0; i < 150; i++ {
		allowed := rl.Allow(sourceIP)
		if allowed {
			allowedCount++
		} else {
			blockedCount++
		}
	}

	// Verify first ~100 allowed, remaining blocked
	if allowedCount > 100 {
		t.Errorf("Expected at most 100 queries allowed, got %d", allowedCount)
	}

	if blockedCount == 0 {
		t.Error("Expected some queries to be blocked, but all were allowed")
	}

	// Verify cooldown triggered
	rl.mu.RLock() // nosemgrep: beacon-mutex-defer-unlock
	entry, exists := rl.sources[sourceIP]
	rl.mu.RUnlock()

	if !exists {
		t.Fatal("Expected entry to exist for source IP")
	}

	if entry.cooldownExpiry.IsZero() {
		t.Error("Expected cooldown to be triggered, but cooldownExpiry is zero")
	}

	if entry.cooldownExpiry.Before(time.Now()) {
		t.Error("Expected cooldown to be in the future")
	}
}

// TestRateLimiter_Cooldown verifies cooldown period drops packets.
func TestRateLimiter_Cooldown(t *testing.T) {
	// Create RateLimiter with threshold=10, cooldown=500ms (short for testing)
	rl := NewRateLimiter(10, 500*time.Millisecond, 10000)

	sourceIP := "192.168.1.150"

	// Trigger cooldown by exceeding threshold
	for i := 0; i < 20; i++ {
		rl.Allow(sourceIP)
	}

	// Verify all queries blocked during cooldown
	for i := 0; i < 5; i++ {
		allowed := rl.Allow(sourceIP)
		if allowed {
			t.Errorf("Query %d was allowed but should be blocked during cooldown", i+1)
		}
	}

	// Wait for cooldown to expire (500ms + 100ms buffer)
	time.Sleep(600 * time.Millisecond)

	// After cooldown expires, verify queries allowed again
	allowed := rl.Allow(sourceIP)
	if !allowed {
		t.Error("Query was blocked after cooldown expired, but should be allowed")
	}

	// Verify cooldown was cleared
	rl.mu.RLock() // nosemgrep: beacon-mutex-defer-unlock
	entry, exists := rl.sources[sourceIP]
	rl.mu.RUnlock()

	if !exists {
		t.Fatal("Expected entry to exist for source IP")
	}

	// After cooldown expires and new query arrives, cooldownExpiry should either be zero
	// or in the past (expired)
	if !entry.cooldownExpiry.IsZero() && entry.cooldownExpiry.After(time.Now()) {
		t.Errorf("Expected cooldown to be expired, but cooldownExpiry is %v", entry.cooldownExpiry)
	}
}

// TestRateLimiter_BoundedMap verifies LRU eviction bounds the tracked-source map.
func TestRateLimiter_BoundedMap(t *testing.T) {
	// Create RateLimiter with maxEntries=100 (small for testing)
	rl := NewRateLimiter(100, 60*time.Second, 100)

	// Send queries from 150 unique source IPs
	for i := 0; i < 150; i++ {
		sourceIP := fmt.Sprintf("192.168.1.%d", i)
		rl.Allow(sourceIP)
	}

	// Verify map size never exceeds 100
	rl.mu.RLock() // nosemgrep: beacon-mutex-defer-unlock
	mapSize := len(rl.sources)
	evictionCount := rl.evictionCount
	rl.mu.RUnlock()

	if mapSize > 100 {
		t.Errorf("Expected map size <= 100, got %d", mapSize)
	}

	// Verify eviction occurred (we added 150 sources but max is 100)
	if evictionCount == 0 {
		t.Error("Expected evictionCount > 0 after exceeding maxEntries, but got 0")
	}

	// Test LRU behavior: Add a new source, verify it's in the map
	newestIP := "10.0.0.1"
	rl.Allow(newestIP)

	rl.mu.RLock() // nosemgrep: beacon-mutex-defer-unlock
	_, exists := rl.sources[newestIP]
	rl.mu.RUnlock()

	if !exists {
		t.Error("Expected newest entry to exist after eviction")
	}
}

// TestRateLimiter_Cleanup verifies periodic cleanup removes stale entries.
func TestRateLimiter_Cleanup(t *testing.T) {
	// Create RateLimiter
	rl := NewRateLimiter(100, 60*time.Second, 10000)

	staleIP1 := "192.168.1.1"
	staleIP2 := "192.168.1.2"
	activeIP := "192.168.1.3"

	// Add stale entries (simulate old traffic)
	rl.Allow(staleIP1)
	rl.Allow(staleIP2)

	// Manually age these entries by updating their lastSeen to >1 minute ago
	rl.mu.Lock() // nosemgrep: beacon-mutex-defer-unlock
	if entry, exists := rl.sources[staleIP1]; exists {
		entry.lastSeen = time.Now().Add(-2 * time.Minute)
	}
	if entry, exists := rl.sources[staleIP2]; exists {
		entry.lastSeen = time.Now().Add(-2 * time.Minute)
	}
	rl.mu.Unlock()

	// Add active IP (recent traffic)
	rl.Allow(activeIP)

	// Get initial map size
	rl.mu.RLock() // nosemgrep: beacon-mutex-defer-unlock
	initialSize := len(rl.sources)
	rl.mu.RUnlock()

	if initialSize != 3 {
		t.Fatalf("Expected 3 entries before cleanup, got %d", initialSize)
	}

	// Trigger cleanup
	rl.Cleanup()

	// After cleanup, verify stale entries removed
	rl.mu.RLock() // nosemgrep: beacon-mutex-defer-unlock
	afterSize := len(rl.sources)
	_, staleExists1 := rl.sources[staleIP1]
	_, staleExists2 := rl.sources[staleIP2]
	_, activeExists := rl.sources[activeIP]
	rl.mu.RUnlock()

	// Stale entries should be removed
	if staleExists1 {
		t.Error("Expected stale entry 1 to be removed, but it still exists")
	}
	if staleExists2 {
		t.Error("Expected stale entry 2 to be removed, but it still exists")
	}

	// Active entry should be retained (seen recently)
	if !activeExists {
		t.Error("Expected active entry to be retained, but it was removed")
	}

	// Map size should decrease after cleanup (from 3 to 1)
	if afterSize != 1 {
		t.Errorf("Expected map size=1 after cleanup, got %d", afterSize)
	}
}


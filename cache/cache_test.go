package cache

import (
	"testing"
	"time"
)

func newClockedCache(start time.Time) (*memoryCache, *time.Time) {
	now := start
	c := &memoryCache{
		entries: make(map[string]entry),
		now:     func() time.Time { return now },
	}
	return c, &now
}

func TestSetAndGet(t *testing.T) {
	c, _ := newClockedCache(time.Unix(1000, 0))

	c.Set("dashboard:1", "summary", time.Minute)
	got, ok := c.Get("dashboard:1")
	if !ok || got != "summary" {
		t.Errorf("expected cached value back, got %v, %v", got, ok)
	}

	if _, ok := c.Get("dashboard:2"); ok {
		t.Error("unexpected hit for a key never set")
	}
}

func TestExpiry(t *testing.T) {
	c, clock := newClockedCache(time.Unix(1000, 0))

	c.Set("leaderboard", []int{1, 2, 3}, time.Minute)
	if _, ok := c.Get("leaderboard"); !ok {
		t.Fatal("expected a hit before expiry")
	}

	*clock = clock.Add(2 * time.Minute)
	if _, ok := c.Get("leaderboard"); ok {
		t.Error("expected a miss after expiry")
	}

	// The expired entry is dropped, not just hidden.
	c.mu.RLock()
	_, still := c.entries["leaderboard"]
	c.mu.RUnlock()
	if still {
		t.Error("expired entry should have been deleted on read")
	}
}

func TestZeroTTLIsNotStored(t *testing.T) {
	c, _ := newClockedCache(time.Unix(1000, 0))
	c.Set("x", 1, 0)
	if _, ok := c.Get("x"); ok {
		t.Error("a zero TTL must not store anything")
	}
}

func TestInvalidate(t *testing.T) {
	c, _ := newClockedCache(time.Unix(1000, 0))
	c.Set("dashboard:1", 1, time.Minute)
	c.Set("dashboard:2", 2, time.Minute)
	c.Set("leaderboard", 3, time.Minute)

	c.Invalidate("dashboard:1", "leaderboard")

	if _, ok := c.Get("dashboard:1"); ok {
		t.Error("dashboard:1 should be gone")
	}
	if _, ok := c.Get("leaderboard"); ok {
		t.Error("leaderboard should be gone")
	}
	if _, ok := c.Get("dashboard:2"); !ok {
		t.Error("dashboard:2 should survive")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c, _ := newClockedCache(time.Unix(1000, 0))
	c.Set("dashboard:1", 1, time.Minute)
	c.Set("dashboard:2", 2, time.Minute)
	c.Set("leaderboard", 3, time.Minute)

	c.InvalidatePrefix("dashboard:")

	if _, ok := c.Get("dashboard:1"); ok {
		t.Error("dashboard:1 should be gone")
	}
	if _, ok := c.Get("dashboard:2"); ok {
		t.Error("dashboard:2 should be gone")
	}
	if _, ok := c.Get("leaderboard"); !ok {
		t.Error("leaderboard should survive a dashboard prefix sweep")
	}
}

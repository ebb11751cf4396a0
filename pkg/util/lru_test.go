package util

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestNewWithConfig_RequiresLimit(t *testing.T) {
	if _, err := NewWithConfig[string, int](CacheConfig{}); err == nil {
		t.Fatal("expected error when neither Capacity nor MaxWeight is set")
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewWithConfig[string, int](CacheConfig{Capacity: 2})
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}

	c.Put("a", 1, 1)
	c.Put("b", 2, 1)
	c.Get("a") // a becomes most recent
	c.Put("c", 3, 1)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("expected a=1, got %v (ok=%v)", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("expected len 2, got %d", c.Len())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c, _ := NewWithConfig[string, string](CacheConfig{Capacity: 10, TTL: time.Minute, Clock: clock.Now})

	c.Put("k", "v", 1)
	clock.Advance(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should still be live")
	}

	clock.Advance(31 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed on Get, len = %d", c.Len())
	}
}

func TestLRUCache_PurgeExpired(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c, _ := NewWithConfig[string, int](CacheConfig{Capacity: 10, TTL: time.Minute, Clock: clock.Now})

	c.Put("old1", 1, 1)
	c.Put("old2", 2, 1)
	clock.Advance(45 * time.Second)
	c.Put("fresh", 3, 1)
	clock.Advance(30 * time.Second)

	if n := c.PurgeExpired(); n != 2 {
		t.Errorf("PurgeExpired() = %d, want 2", n)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry should survive purge")
	}
}

func TestLRUCache_RemoveAndWeight(t *testing.T) {
	c, _ := NewWithConfig[string, int](CacheConfig{MaxWeight: 10})

	c.Put("a", 1, 4)
	c.Put("b", 2, 5)
	if c.Weight() != 9 {
		t.Fatalf("Weight() = %d, want 9", c.Weight())
	}
	if !c.Remove("a") {
		t.Fatal("Remove(a) should report true")
	}
	if c.Remove("a") {
		t.Fatal("second Remove(a) should report false")
	}
	if c.Weight() != 5 {
		t.Errorf("Weight() = %d, want 5", c.Weight())
	}
}

func TestLRUCache_GetOrCreateCreatesOnce(t *testing.T) {
	c, _ := NewWithConfig[string, *int](CacheConfig{Capacity: 10})

	var created int
	var mu sync.Mutex
	var wg sync.WaitGroup
	results := make([]*int, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetOrCreate("ip", func() *int {
				mu.Lock()
				created++
				mu.Unlock()
				v := 0
				return &v
			}, 1)
		}(i)
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("create called %d times, want 1", created)
	}
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("all callers should share the same value")
		}
	}
}

func TestLRUCache_ReplaceKeepsExpiration(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c, _ := NewWithConfig[string, string](CacheConfig{Capacity: 4, TTL: time.Minute, Clock: clock.Now})

	if c.Replace("missing", "x") {
		t.Fatal("Replace should fail for a missing key")
	}

	c.Put("k", "v1", 1)
	clock.Advance(40 * time.Second)
	if !c.Replace("k", "v2") {
		t.Fatal("Replace should succeed for a live key")
	}
	if v, _ := c.Get("k"); v != "v2" {
		t.Fatalf("Get() = %q, want v2", v)
	}

	clock.Advance(30 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("Replace must not extend the TTL")
	}
	if c.Replace("k", "v3") {
		t.Fatal("Replace should fail for an expired key")
	}
}

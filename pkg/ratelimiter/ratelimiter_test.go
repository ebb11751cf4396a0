package ratelimiter

import (
	"testing"
	"time"
)

func TestNewFactory_AllAlgorithmsHonourLimit(t *testing.T) {
	algorithms := []string{
		AlgorithmFixedWindow,
		AlgorithmSlidingLog,
		AlgorithmSlidingCounter,
		AlgorithmLeakyBucket,
		AlgorithmTokenBucket,
	}

	for _, algorithm := range algorithms {
		t.Run(algorithm, func(t *testing.T) {
			factory, err := NewFactory(algorithm, 3, time.Hour, 10)
			if err != nil {
				t.Fatalf("NewFactory() error = %v", err)
			}
			limiter := factory()
			for i := 0; i < 3; i++ {
				if !limiter.Allow() {
					t.Fatalf("request %d should be allowed", i+1)
				}
			}
			if limiter.Allow() {
				t.Error("request 4 should be rejected")
			}
		})
	}
}

func TestNewFactory_Errors(t *testing.T) {
	if _, err := NewFactory("nope", 1, time.Second, 0); err == nil {
		t.Error("expected error for unknown algorithm")
	}
	if _, err := NewFactory(AlgorithmFixedWindow, 0, time.Second, 0); err == nil {
		t.Error("expected error for zero limit")
	}
	if _, err := NewFactory(AlgorithmFixedWindow, 1, 0, 0); err == nil {
		t.Error("expected error for zero window")
	}
}

func TestNewFactory_DefaultsToFixedWindow(t *testing.T) {
	factory, err := NewFactory("", 1, time.Minute, 0)
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}
	if _, ok := factory().(*FixedWindowCounter); !ok {
		t.Errorf("expected *FixedWindowCounter, got %T", factory())
	}
}

// fakeClock 手动推进时间。
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestFixedWindowCounter_ResetsAfterWindow(t *testing.T) {
	limiter := NewFixedWindowCounter(1, 20*time.Millisecond, nil)
	if !limiter.Allow() {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow() {
		t.Fatal("second request should be rejected")
	}
	time.Sleep(30 * time.Millisecond)
	if !limiter.Allow() {
		t.Error("request after the window should be allowed")
	}
}

func TestAlgorithms_RecoverAfterWindow(t *testing.T) {
	algorithms := []string{
		AlgorithmFixedWindow,
		AlgorithmSlidingLog,
		AlgorithmSlidingCounter,
		AlgorithmLeakyBucket,
		AlgorithmTokenBucket,
	}

	for _, algorithm := range algorithms {
		t.Run(algorithm, func(t *testing.T) {
			clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
			factory, err := NewFactory(algorithm, 2, time.Minute, 4, WithClock(clock.Now))
			if err != nil {
				t.Fatalf("NewFactory() error = %v", err)
			}
			limiter := factory()
			limiter.Allow()
			limiter.Allow()
			if limiter.Allow() {
				t.Fatal("third request inside the window should be rejected")
			}

			clock.Advance(61 * time.Second)
			if !limiter.Allow() {
				t.Error("request after the window should be allowed")
			}
		})
	}
}

func TestSlidingWindowLog_CountsOnlyRecentRequests(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	limiter := NewSlidingWindowLog(2, time.Minute, clock.Now)

	limiter.Allow()
	clock.Advance(40 * time.Second)
	limiter.Allow()
	if limiter.Allow() {
		t.Fatal("both requests are still inside the window")
	}

	// 第一个请求移出窗口，第二个仍在
	clock.Advance(21 * time.Second)
	if !limiter.Allow() {
		t.Fatal("one slot should have freed up")
	}
	if limiter.Allow() {
		t.Error("window should be full again")
	}
}

func TestTokenBucket_RefillsGradually(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	limiter := NewTokenBucket(1, 2, clock.Now) // 1 token/s

	limiter.Allow()
	limiter.Allow()
	if limiter.Allow() {
		t.Fatal("bucket should be empty")
	}
	clock.Advance(500 * time.Millisecond)
	if limiter.Allow() {
		t.Fatal("half a token is not enough")
	}
	clock.Advance(500 * time.Millisecond)
	if !limiter.Allow() {
		t.Error("one token should have been refilled")
	}
}

func TestKeyed_IsolatesKeys(t *testing.T) {
	factory, _ := NewFactory(AlgorithmFixedWindow, 2, time.Minute, 0)
	keyed := NewKeyed(factory, time.Minute, 0)

	for i := 0; i < 2; i++ {
		if !keyed.Allow("10.0.0.1") {
			t.Fatalf("request %d from first client should pass", i+1)
		}
	}
	if keyed.Allow("10.0.0.1") {
		t.Error("third request from first client should be limited")
	}
	if !keyed.Allow("10.0.0.2") {
		t.Error("second client must have its own budget")
	}
	if keyed.Len() != 2 {
		t.Errorf("Len() = %d, want 2", keyed.Len())
	}
}

func TestKeyed_BoundsTrackedKeys(t *testing.T) {
	factory, _ := NewFactory(AlgorithmTokenBucket, 1, time.Minute, 0)
	keyed := NewKeyed(factory, time.Minute, 2)

	keyed.Allow("a")
	keyed.Allow("b")
	keyed.Allow("c")
	if keyed.Len() != 2 {
		t.Errorf("Len() = %d, want 2", keyed.Len())
	}
}

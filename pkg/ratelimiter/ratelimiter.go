package ratelimiter

import (
	"fmt"
	"time"
)

// RateLimiter 判断单个请求是否放行。实现需要并发安全。
type RateLimiter interface {
	Allow() bool
}

// Factory builds a fresh limiter. Keyed limiters call it once per key.
type Factory func() RateLimiter

// Clock 返回当前时间，测试中可以替换。
type Clock func() time.Time

// Algorithm names accepted by NewFactory.
const (
	AlgorithmFixedWindow    = "fixedWindow"
	AlgorithmSlidingLog     = "slidingLog"
	AlgorithmSlidingCounter = "slidingCounter"
	AlgorithmLeakyBucket    = "leakyBucket"
	AlgorithmTokenBucket    = "tokenBucket"
)

// Option configures NewFactory.
type Option func(*factoryConfig)

type factoryConfig struct {
	clock Clock
}

// WithClock makes every limiter built by the factory read time from clock.
func WithClock(clock Clock) Option {
	return func(c *factoryConfig) { c.clock = clock }
}

// NewFactory returns a Factory for the named algorithm allowing limit requests per window.
// 桶算法的速率为 limit/window，突发容量为 limit；numBuckets 只对滑动窗口计数器生效。
func NewFactory(algorithm string, limit int, window time.Duration, numBuckets int, opts ...Option) (Factory, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", limit)
	}
	if window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %s", window)
	}
	cfg := factoryConfig{clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	clock := cfg.clock

	rate := float64(limit) / window.Seconds()
	switch algorithm {
	case AlgorithmFixedWindow, "":
		return func() RateLimiter { return NewFixedWindowCounter(limit, window, clock) }, nil
	case AlgorithmSlidingLog:
		return func() RateLimiter { return NewSlidingWindowLog(limit, window, clock) }, nil
	case AlgorithmSlidingCounter:
		return func() RateLimiter { return NewSlidingWindowCounter(limit, window, numBuckets, clock) }, nil
	case AlgorithmLeakyBucket:
		return func() RateLimiter { return NewLeakyBucket(rate, limit, clock) }, nil
	case AlgorithmTokenBucket:
		return func() RateLimiter { return NewTokenBucket(rate, limit, clock) }, nil
	default:
		return nil, fmt.Errorf("unknown rate limiter algorithm: %s", algorithm)
	}
}

func orNow(clock Clock) Clock {
	if clock == nil {
		return time.Now
	}
	return clock
}

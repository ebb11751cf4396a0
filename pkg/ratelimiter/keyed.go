package ratelimiter

import (
	"time"

	"LLMBridge/pkg/util"
)

// DefaultMaxKeys bounds how many distinct clients a Keyed limiter tracks at once.
const DefaultMaxKeys = 10000

// Keyed keeps an independent limiter per key (typically a client IP).
// Idle keys are dropped after the window passes, which is equivalent to a full refill.
type Keyed struct {
	factory  Factory
	limiters *util.LRUCache[string, RateLimiter]
}

// NewKeyed creates a keyed limiter. maxKeys <= 0 uses DefaultMaxKeys.
func NewKeyed(factory Factory, window time.Duration, maxKeys int) *Keyed {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	// Capacity is always positive here, so the constructor cannot fail.
	cache, _ := util.NewWithConfig[string, RateLimiter](util.CacheConfig{
		Capacity: maxKeys,
		TTL:      window,
	})
	return &Keyed{factory: factory, limiters: cache}
}

// Allow reports whether the request identified by key may proceed.
func (k *Keyed) Allow(key string) bool {
	return k.limiters.GetOrCreate(key, k.factory, 1).Allow()
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	return k.limiters.Len()
}

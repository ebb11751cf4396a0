package ratelimiter

import (
	"sync"
	"time"
)

// bucket 是令牌桶与漏桶共用的连续补充逻辑：level 以 rate/秒 向 target 靠拢。
type bucket struct {
	mu       sync.Mutex
	rate     float64
	capacity float64
	clock    Clock
	level    float64
	last     time.Time
}

func newBucket(rate float64, capacity int, initial float64, clock Clock) bucket {
	clock = orNow(clock)
	return bucket{rate: rate, capacity: float64(capacity), clock: clock, level: initial, last: clock()}
}

// advance 返回距离上次调用经过的增量，调用方持有锁。
func (b *bucket) advance() float64 {
	now := b.clock()
	elapsed := now.Sub(b.last)
	if elapsed <= 0 {
		return 0
	}
	b.last = now
	return elapsed.Seconds() * b.rate
}

// TokenBucket 以固定速率补充令牌，允许最多 capacity 个请求的突发。
type TokenBucket struct {
	bucket
}

// NewTokenBucket creates a token bucket that starts full. A nil clock uses time.Now.
func NewTokenBucket(rate float64, capacity int, clock Clock) *TokenBucket {
	return &TokenBucket{bucket: newBucket(rate, capacity, float64(capacity), clock)}
}

func (t *TokenBucket) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.level = min(t.capacity, t.level+t.advance())
	if t.level < 1 {
		return false
	}
	t.level--
	return true
}

// LeakyBucket 以固定速率漏水，水位达到 capacity 时拒绝请求。
type LeakyBucket struct {
	bucket
}

// NewLeakyBucket creates an empty leaky bucket. A nil clock uses time.Now.
func NewLeakyBucket(rate float64, capacity int, clock Clock) *LeakyBucket {
	return &LeakyBucket{bucket: newBucket(rate, capacity, 0, clock)}
}

func (l *LeakyBucket) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = max(0, l.level-l.advance())
	if l.level+1 > l.capacity {
		return false
	}
	l.level++
	return true
}

package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowCounter 在固定窗口内最多放行 limit 个请求，窗口到期后计数清零。
type FixedWindowCounter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	clock       Clock
	count       int
	windowStart time.Time
}

// NewFixedWindowCounter creates a fixed window counter. A nil clock uses time.Now.
func NewFixedWindowCounter(limit int, window time.Duration, clock Clock) *FixedWindowCounter {
	clock = orNow(clock)
	return &FixedWindowCounter{limit: limit, window: window, clock: clock, windowStart: clock()}
}

func (f *FixedWindowCounter) Allow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock()
	if now.Sub(f.windowStart) > f.window {
		f.windowStart, f.count = now, 0
	}
	if f.count >= f.limit {
		return false
	}
	f.count++
	return true
}

// SlidingWindowLog 记录窗口内每个被放行请求的时间戳，精确但内存与 limit 成正比。
type SlidingWindowLog struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	clock  Clock
	stamps []time.Time // 按时间升序
}

// NewSlidingWindowLog creates a sliding window log. A nil clock uses time.Now.
func NewSlidingWindowLog(limit int, window time.Duration, clock Clock) *SlidingWindowLog {
	return &SlidingWindowLog{
		limit:  limit,
		window: window,
		clock:  orNow(clock),
		stamps: make([]time.Time, 0, limit),
	}
}

func (s *SlidingWindowLog) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	boundary := now.Add(-s.window)
	expired := 0
	for expired < len(s.stamps) && s.stamps[expired].Before(boundary) {
		expired++
	}
	if expired > 0 {
		s.stamps = append(s.stamps[:0], s.stamps[expired:]...)
	}

	if len(s.stamps) >= s.limit {
		return false
	}
	s.stamps = append(s.stamps, now)
	return true
}

// SlidingWindowCounter 把窗口切成 numBuckets 个桶，用环形数组近似滑动窗口。
type SlidingWindowCounter struct {
	mu         sync.Mutex
	limit      int
	bucketSize time.Duration
	clock      Clock
	buckets    []int
	current    int
	total      int
	lastSlide  time.Time
}

// NewSlidingWindowCounter creates a sliding window counter. numBuckets <= 0 uses 10.
func NewSlidingWindowCounter(limit int, window time.Duration, numBuckets int, clock Clock) *SlidingWindowCounter {
	if numBuckets <= 0 {
		numBuckets = 10
	}
	clock = orNow(clock)
	bucketSize := window / time.Duration(numBuckets)
	if bucketSize <= 0 {
		bucketSize = 1
	}
	return &SlidingWindowCounter{
		limit:      limit,
		bucketSize: bucketSize,
		clock:      clock,
		buckets:    make([]int, numBuckets),
		lastSlide:  clock(),
	}
}

// slide 清空已经移出窗口的桶。调用方持有锁。
func (s *SlidingWindowCounter) slide(now time.Time) {
	steps := int(now.Sub(s.lastSlide) / s.bucketSize)
	if steps <= 0 {
		return
	}
	if steps > len(s.buckets) {
		steps = len(s.buckets)
	}
	for i := 0; i < steps; i++ {
		s.current = (s.current + 1) % len(s.buckets)
		s.total -= s.buckets[s.current]
		s.buckets[s.current] = 0
	}
	// 保留不足一个桶的余量，避免窗口漂移
	s.lastSlide = s.lastSlide.Add(time.Duration(int(now.Sub(s.lastSlide)/s.bucketSize)) * s.bucketSize)
}

func (s *SlidingWindowCounter) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slide(s.clock())
	if s.total >= s.limit {
		return false
	}
	s.buckets[s.current]++
	s.total++
	return true
}

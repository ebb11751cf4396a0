package profilestore

import (
	"context"
	"fmt"
	"time"

	"LLMBridge/internal/models"
	"LLMBridge/pkg/util"

	"github.com/google/uuid"
)

// Memory 是基于带 TTL 的 LRU 缓存的进程内存储，容量满时淘汰最久未使用的画像。
type Memory struct {
	cache *util.LRUCache[string, models.MemoryProfile]
}

// NewMemory creates an in-process store holding at most capacity profiles for ttl each.
func NewMemory(capacity int, ttl time.Duration) (*Memory, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("profile ttl must be positive, got %s", ttl)
	}
	cache, err := util.NewWithConfig[string, models.MemoryProfile](util.CacheConfig{
		Capacity: capacity,
		TTL:      ttl,
	})
	if err != nil {
		return nil, err
	}
	return &Memory{cache: cache}, nil
}

func (m *Memory) Put(_ context.Context, p models.MemoryProfile) (string, error) {
	id := uuid.NewString()
	m.cache.Put(id, p.Clone(), 1)
	return id, nil
}

func (m *Memory) Get(_ context.Context, id string) (models.MemoryProfile, error) {
	p, ok := m.cache.Get(id)
	if !ok {
		return models.MemoryProfile{}, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *Memory) Replace(_ context.Context, id string, p models.MemoryProfile) error {
	if !m.cache.Replace(id, p.Clone()) {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired drops expired profiles and returns how many were removed.
func (m *Memory) PurgeExpired() int {
	return m.cache.PurgeExpired()
}

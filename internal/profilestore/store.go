package profilestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"LLMBridge/internal/config"
	dbredis "LLMBridge/internal/database/redis"
	"LLMBridge/internal/models"
)

// ErrNotFound is returned for unknown or expired profile ids.
var ErrNotFound = errors.New("profile not found")

// Store keeps extracted profiles for a bounded time under generated ids.
type Store interface {
	// Put stores a copy of p and returns its new id.
	Put(ctx context.Context, p models.MemoryProfile) (string, error)
	// Get returns the profile stored under id.
	Get(ctx context.Context, id string) (models.MemoryProfile, error)
	// Replace overwrites the profile under id without extending its lifetime.
	Replace(ctx context.Context, id string, p models.MemoryProfile) error
}

// New 根据配置创建画像存储。返回的 io.Closer 用于释放后端连接。
func New(ctx context.Context, cfg config.StoreConfig) (Store, io.Closer, error) {
	switch cfg.Backend {
	case "memory":
		s, err := NewMemory(cfg.Capacity, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case "redis":
		rdb, err := dbredis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedis(rdb, cfg.TTL), rdb, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

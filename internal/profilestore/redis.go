package profilestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"LLMBridge/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "llmbridge:profile:"

// Redis 把画像以 JSON 形式存入带过期时间的键。
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps a connected client.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Put(ctx context.Context, p models.MemoryProfile) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	id := uuid.NewString()
	if err := r.client.Set(ctx, keyPrefix+id, data, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("store profile: %w", err)
	}
	return id, nil
}

func (r *Redis) Get(ctx context.Context, id string) (models.MemoryProfile, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.MemoryProfile{}, ErrNotFound
	}
	if err != nil {
		return models.MemoryProfile{}, fmt.Errorf("load profile: %w", err)
	}
	return models.DecodeProfile(data)
}

func (r *Redis) Replace(ctx context.Context, id string, p models.MemoryProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	// SET XX KEEPTTL：键不存在时不写入，且保留剩余的过期时间。
	ok, err := r.client.SetXX(ctx, keyPrefix+id, data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/cart"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// Redisに置くセッションストア。カートのスナップショットをJSONで保存する。
// 書き込みのたびにTTLを張り直す（変更のあったセッションだけ生き延びる）。
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) ([]cart.ItemRecord, bool, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("session get: %w", err)
	}

	var records []cart.ItemRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false, fmt.Errorf("session decode: %w", err)
	}
	return records, true, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, key string, records []cart.ItemRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

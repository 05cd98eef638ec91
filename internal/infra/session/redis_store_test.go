package session

import (
	"context"
	"os"
	"testing"
	"time"

	"app/internal/domain/cart"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisSessionStore_GetMissing(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisSessionStore(client, time.Hour)

	client.Del(ctx, "session:test-missing:CART")

	_, found, err := store.Get(ctx, "test-missing:CART")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestRedisSessionStore_SetGetRoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisSessionStore(client, time.Hour)

	key := "test-roundtrip:CART"
	client.Del(ctx, "session:"+key)

	records := []cart.ItemRecord{
		{ProductID: 1, Quantity: 2, Price: "9.99"},
		{ProductID: 7, Quantity: 1, Price: "3.5"},
	}
	assert.NoError(t, store.Set(ctx, key, records))

	got, found, err := store.Get(ctx, key)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, records, got)

	// TTLが張られている
	ttl, err := client.TTL(ctx, "session:"+key).Result()
	assert.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

// 空のスナップショットも保存できる（クリア後のカート）
func TestRedisSessionStore_SetEmpty(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisSessionStore(client, time.Hour)

	key := "test-empty:CART"
	client.Del(ctx, "session:"+key)

	assert.NoError(t, store.Set(ctx, key, []cart.ItemRecord{}))

	got, found, err := store.Get(ctx, key)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}

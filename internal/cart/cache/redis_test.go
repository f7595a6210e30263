package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogesh1636/Bibliotheca/internal/cart/domain"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	c := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return c, mr, cleanup
}

func testCart() *domain.Cart {
	return &domain.Cart{
		Key: domain.StorageKey,
		Lines: []domain.Line{
			{Name: "A", Price: 10},
			{Name: "B", Price: 5},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestGet_Miss(t *testing.T) {
	c, _, cleanup := setupTestRedis(t)
	defer cleanup()

	cart, err := c.Get(context.Background())

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, cart)
}

func TestSetThenGet_RoundTrip(t *testing.T) {
	c, _, cleanup := setupTestRedis(t)
	defer cleanup()

	want := testCart()
	require.NoError(t, c.Set(context.Background(), want))

	got, err := c.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, want.Lines, got.Lines)
}

func TestGet_CorruptPayload(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(cacheKey(), "not json"))

	_, err := c.Get(context.Background())
	assert.ErrorContains(t, err, "unmarshal cart failed")
}

func TestSet_AppliesTTL(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, c.Set(context.Background(), testCart()))

	ttl := mr.TTL(cacheKey())
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 20*time.Minute)
}

func TestDelete_RemovesKey(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, c.Set(context.Background(), testCart()))
	require.NoError(t, c.Delete(context.Background()))

	assert.False(t, mr.Exists(cacheKey()))
}

func TestDelete_MissingKeyIsNotAnError(t *testing.T) {
	c, _, cleanup := setupTestRedis(t)
	defer cleanup()

	assert.NoError(t, c.Delete(context.Background()))
}

func TestStoredPayloadIsJSON(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, c.Set(context.Background(), testCart()))

	raw, err := mr.Get(cacheKey())
	require.NoError(t, err)

	var decoded domain.Cart
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Len(t, decoded.Lines, 2)
}

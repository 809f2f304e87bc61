package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryCooldownCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCooldownCache()
	key := CooldownKey{UserID: "u", GuildID: "g"}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	c.Set(ctx, key, now.Add(time.Minute))
	until, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, now.Add(time.Minute), until)

	c.Set(ctx, CooldownKey{UserID: "v", GuildID: "g"}, now)
	assert.Equal(t, 1, c.Prune(now))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Prune(now.Add(time.Minute)))
	assert.Zero(t, c.Len())
}

func TestCooldownKeyString(t *testing.T) {
	assert.Equal(t, "u-g", CooldownKey{UserID: "u", GuildID: "g"}.String())
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisCooldownCache(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	c := NewRedisCooldownCache(client, zap.NewNop())
	key := CooldownKey{UserID: "u", GuildID: "g"}

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	until := time.Now().Add(5 * time.Minute).Truncate(time.Millisecond)
	c.Set(ctx, key, until)

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.True(t, until.Equal(got))

	ttl := mr.TTL("cooldown:ticket:g:u")
	assert.Greater(t, ttl, 4*time.Minute)
	assert.LessOrEqual(t, ttl, 5*time.Minute)

	mr.FastForward(6 * time.Minute)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}

func TestRedisCooldownCache_PastInstantIsIgnored(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	c := NewRedisCooldownCache(client, zap.NewNop())

	c.Set(ctx, CooldownKey{UserID: "u", GuildID: "g"}, time.Now().Add(-time.Second))

	assert.False(t, mr.Exists("cooldown:ticket:g:u"))
}

func TestRedisCooldownCache_MalformedValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisCooldownCache(client, zap.NewNop())
	require.NoError(t, mr.Set("cooldown:ticket:g:u", "soon"))

	_, ok := c.Get(context.Background(), CooldownKey{UserID: "u", GuildID: "g"})

	assert.False(t, ok)
}

package tickets

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisCooldownPrefix = "cooldown:ticket:"

// RedisCooldownCache keeps cooldowns in redis so several bot processes share
// them. Keys carry a TTL equal to the remaining cooldown, so redis evicts them.
// Redis errors are logged and treated as "no cooldown".
type RedisCooldownCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCooldownCache(client *redis.Client, logger *zap.Logger) *RedisCooldownCache {
	return &RedisCooldownCache{client: client, logger: logger}
}

func redisCooldownKey(key CooldownKey) string {
	return redisCooldownPrefix + key.GuildID + ":" + key.UserID
}

func (c *RedisCooldownCache) Get(ctx context.Context, key CooldownKey) (time.Time, bool) {
	raw, err := c.client.Get(ctx, redisCooldownKey(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("failed to read cooldown", zap.String("key", key.String()), zap.Error(err))
		}
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.logger.Warn("malformed cooldown value", zap.String("key", key.String()), zap.String("value", raw))
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (c *RedisCooldownCache) Set(ctx context.Context, key CooldownKey, until time.Time) {
	ttl := time.Until(until)
	if ttl <= 0 {
		return
	}
	value := strconv.FormatInt(until.UnixMilli(), 10)
	if err := c.client.Set(ctx, redisCooldownKey(key), value, ttl).Err(); err != nil {
		c.logger.Warn("failed to store cooldown", zap.String("key", key.String()), zap.Error(err))
	}
}

package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "verification:"

// redeemScript: KEYS[1] code, KEYS[2] failure counter; ARGV[1] candidate,
// ARGV[2] failure limit. Returns a RedeemResult.
var redeemScript = redis.NewScript(`
local code = redis.call('GET', KEYS[1])
if not code then
	return 0
end
if code == ARGV[1] then
	redis.call('DEL', KEYS[1], KEYS[2])
	return 1
end
local failures = redis.call('INCR', KEYS[2])
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
	redis.call('PEXPIRE', KEYS[2], ttl)
end
local limit = tonumber(ARGV[2])
if limit > 0 and failures >= limit then
	redis.call('DEL', KEYS[1], KEYS[2])
	return 3
end
return 2
`)

// RedisCache shares codes between worker instances, relying on key TTLs for
// expiry.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisCache(client *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisCache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	if err := c.client.Del(ctx, c.failuresKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset code failures: %w", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read code: %w", err)
	}
	return value, true, nil
}

func (c *RedisCache) Redeem(ctx context.Context, key, candidate string, maxFailures int) (RedeemResult, error) {
	keys := []string{c.keyPrefix + key, c.failuresKey(key)}
	n, err := redeemScript.Run(ctx, c.client, keys, candidate, maxFailures).Int()
	if err != nil {
		return RedeemMissing, fmt.Errorf("failed to redeem code: %w", err)
	}
	return RedeemResult(n), nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key, c.failuresKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete code: %w", err)
	}
	return nil
}

func (c *RedisCache) failuresKey(key string) string {
	return c.keyPrefix + key + ":failures"
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)

package lock

import (
    "context"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// ClaimLua checks every key and only then sets them all, server-side,
// so two owners can never both observe "unclaimed" between read and
// write.  Returns "SEAT_TAKEN:<key>" for the first key held by a
// different owner, "OK" otherwise.  Exported so tests can compute the
// script hash.
const ClaimLua = `
for i = 1, #KEYS do
  local current = redis.call("GET", KEYS[i])
  if current and current ~= ARGV[1] then
    return "SEAT_TAKEN:" .. KEYS[i]
  end
end
for i = 1, #KEYS do
  redis.call("SET", KEYS[i], ARGV[1], "EX", tonumber(ARGV[2]))
end
return "OK"
`

// ReleaseLua deletes only the keys currently owned by the caller;
// entries claimed by someone else in the meantime are left alone.
const ReleaseLua = `
local removed = 0
for i = 1, #KEYS do
  if redis.call("GET", KEYS[i]) == ARGV[1] then
    redis.call("DEL", KEYS[i])
    removed = removed + 1
  end
end
return removed
`

// RedisClient runs the claim/release scripts against a shared Redis.
type RedisClient struct {
    rdb     *redis.Client
    claim   *redis.Script
    release *redis.Script
}

// NewRedisClient wraps the given Redis connection.
func NewRedisClient(rdb *redis.Client) *RedisClient {
    return &RedisClient{
        rdb:     rdb,
        claim:   redis.NewScript(ClaimLua),
        release: redis.NewScript(ReleaseLua),
    }
}

// TryClaim claims all keys for owner or none of them.  The first key
// held by another owner is reported via *TakenError.
func (c *RedisClient) TryClaim(ctx context.Context, keys []string, owner string, ttl time.Duration) error {
    if len(keys) == 0 {
        return nil
    }
    res, err := c.claim.Run(ctx, c.rdb, keys, owner, int(ttl/time.Second)).Result()
    if err != nil {
        return err
    }
    if s, ok := res.(string); ok && strings.HasPrefix(s, "SEAT_TAKEN:") {
        return &TakenError{Key: strings.TrimPrefix(s, "SEAT_TAKEN:")}
    }
    return nil
}

// Release deletes the keys owned by owner; others are untouched.
func (c *RedisClient) Release(ctx context.Context, keys []string, owner string) error {
    if len(keys) == 0 {
        return nil
    }
    return c.release.Run(ctx, c.rdb, keys, owner).Err()
}

// Owner returns the current holder of a key, or "" when the key does
// not exist.
func (c *RedisClient) Owner(ctx context.Context, key string) (string, error) {
    val, err := c.rdb.Get(ctx, key).Result()
    if err == redis.Nil {
        return "", nil
    }
    return val, err
}

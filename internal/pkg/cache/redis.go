package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementScript increments KEYS[1] and sets its expiry in the same atomic
// step when the key is new. A key left without expiry (-1) gets one too, so a
// counter can never outlive its window.
var incrementScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) == -1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// deleteIfValueScript is a compare-and-delete: of several callers holding
// the same value, exactly one sees 1.
var deleteIfValueScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis implements Store on top of go-redis.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis returns a Store. prefix namespaces every key, e.g. "otpgate:".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get: %w", ErrUnavailable, err)
	}

	return val, nil
}

func (r *Redis) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %w", ErrUnavailable, err)
	}

	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: del: %w", ErrUnavailable, err)
	}

	return nil
}

func (r *Redis) DeleteIfValue(ctx context.Context, key string, value []byte) (bool, error) {
	n, err := deleteIfValueScript.Run(ctx, r.client, []string{r.key(key)}, value).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: delete if value: %w", ErrUnavailable, err)
	}

	return n == 1, nil
}

func (r *Redis) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		return 0, ErrInvalidTTL
	}

	n, err := incrementScript.Run(ctx, r.client, []string{r.key(key)}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: incr: %w", ErrUnavailable, err)
	}

	return n, nil
}

func (r *Redis) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := r.client.PTTL(ctx, r.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: pttl: %w", ErrUnavailable, err)
	}

	// -2 absent, -1 no expiry; neither has a meaningful remaining lifetime.
	if d < 0 {
		return 0, nil
	}

	return d, nil
}

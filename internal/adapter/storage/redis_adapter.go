package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tableKeyPrefix    = "table:"
	idempotencyKeyTTL = 24 * time.Hour
)

var claimTableScript = redis.NewScript(`
local key = KEYS[1]

local state = redis.call('GET', key)
if not state then
	return 0
end

if state == '1' then
	redis.call('SET', key, '0')
	return 1
end

return 0
`)

// RedisAdapter caches table availability so concurrent order starts on the
// same table are serialized before the database is touched.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) ClaimTable(ctx context.Context, tableNumber int64) (bool, error) {
	key := tableKey(tableNumber)

	result, err := claimTableScript.Run(ctx, r.client, []string{key}).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

func (r *RedisAdapter) ReleaseTable(ctx context.Context, tableNumber int64) error {
	return r.client.Set(ctx, tableKey(tableNumber), "1", 0).Err()
}

func (r *RedisAdapter) SetAvailability(ctx context.Context, tableNumber int64, available bool) error {
	state := "0"
	if available {
		state = "1"
	}
	return r.client.Set(ctx, tableKey(tableNumber), state, 0).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func tableKey(number int64) string {
	return fmt.Sprintf("%s%d", tableKeyPrefix, number)
}

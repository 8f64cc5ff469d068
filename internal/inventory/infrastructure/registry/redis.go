package registry

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs the lock registry with SET NX + TTL so multiple
// hotel-service replicas share one registry.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) key(correlationID string) string {
	return "availability:lock:" + correlationID
}

func (r *Redis) Contains(ctx context.Context, correlationID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.key(correlationID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) PutIfAbsent(ctx context.Context, correlationID string, roomID int64) (bool, error) {
	return r.rdb.SetNX(ctx, r.key(correlationID), roomID, r.ttl).Result()
}

func (r *Redis) Delete(ctx context.Context, correlationID string) error {
	return r.rdb.Del(ctx, r.key(correlationID)).Err()
}

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"IndicatorsQueue/internal/config"
	"IndicatorsQueue/internal/ports"
)

const lockPrefix = "indicators_queue:lock:"

// releaseScript deletes the key only when it is still owned by this instance.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

// RedisLock is a SET NX lock shared by every instance of the service.
type RedisLock struct {
	client     *redis.Client
	instanceID string
	logger     *slog.Logger
}

var _ ports.RunLock = (*RedisLock)(nil)

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewRedisLock identifies the holder by hostname and pid.
func NewRedisLock(client *redis.Client, logger *slog.Logger) *RedisLock {
	hostname, _ := os.Hostname()
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLock{
		client:     client,
		instanceID: fmt.Sprintf("%s:%d", hostname, os.Getpid()),
		logger:     logger,
	}
}

// TryLock acquires key for ttl if nobody holds it.
func (r *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockPrefix+key, r.instanceID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("set lock %s: %w", key, err)
	}
	if ok {
		r.logger.Debug("run lock acquired", "key", key, "ttl", ttl, "instance", r.instanceID)
	}
	return ok, nil
}

// Unlock releases key if this instance still owns it.
func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	res, err := releaseScript.Run(ctx, r.client, []string{lockPrefix + key}, r.instanceID).Int()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	if res == 0 {
		r.logger.Warn("run lock was not held by this instance", "key", key, "instance", r.instanceID)
	}
	return nil
}

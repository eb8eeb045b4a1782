package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/shared"
)

// RedisService holds play snapshots and login counters. It is optional: with
// REDIS_ADDR unset every call reports the client as not initialised.
type RedisService struct {
	appContext.DefaultService
	redis *redis.Client
}

const REDIS_SVC = "redis_svc"

var ErrRedisDisabled = fmt.Errorf("redis client not initialized")

func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{redis: client}
}

func (svc RedisService) Id() string {
	return REDIS_SVC
}

func (svc *RedisService) Configure(ctx *appContext.Context) error {
	svc.initRedisClient()
	return svc.DefaultService.Configure(ctx)
}

func (svc *RedisService) Start() error {
	if svc.redis == nil {
		log.Warn("REDIS_ADDR not set, play snapshots and login rate limiting disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := svc.redis.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

func (svc *RedisService) Shutdown() {
	if svc.redis != nil {
		_ = svc.redis.Close()
	}
}

func (svc *RedisService) initRedisClient() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		return
	}

	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	svc.redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	})
}

func (svc *RedisService) Enabled() bool {
	return svc != nil && svc.redis != nil
}

func (svc *RedisService) GetClient() *redis.Client {
	return svc.redis
}

func (svc *RedisService) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !svc.Enabled() {
		return ErrRedisDisabled
	}

	data, err := shared.JSONAPI.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return svc.redis.Set(ctx, key, data, expiration).Err()
}

// GetJSON decodes key into dest. found is false when the key does not exist.
func (svc *RedisService) GetJSON(ctx context.Context, key string, dest interface{}) (found bool, err error) {
	if !svc.Enabled() {
		return false, ErrRedisDisabled
	}

	result, err := svc.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, shared.JSONAPI.Unmarshal(result, dest)
}

func (svc *RedisService) Delete(ctx context.Context, keys ...string) error {
	if !svc.Enabled() {
		return ErrRedisDisabled
	}

	return svc.redis.Del(ctx, keys...).Err()
}

// IncrementWindow bumps a fixed-window counter and starts its expiry on the first hit.
func (svc *RedisService) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if !svc.Enabled() {
		return 0, 0, ErrRedisDisabled
	}

	pipe := svc.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

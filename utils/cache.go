package utils

import (
	"context"
	"fmt"
	"time"

	"busreserve/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient backs the event channel publisher, the realtime subscription and the health probe.
var CacheClient *redis.Client

const redisConnectAttempts = 3

// InitCache connects the shared Redis client on REDIS_CACHE_DB.
func InitCache(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         config.AppConfig.RedisAddr,
		Password:     config.AppConfig.RedisPassword,
		DB:           config.AppConfig.RedisCacheDB,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
	})

	var err error
	for attempt := 1; attempt <= redisConnectAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			CacheClient = client
			return nil
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	client.Close()
	return fmt.Errorf("failed to connect to Redis at %s: %w", config.AppConfig.RedisAddr, err)
}

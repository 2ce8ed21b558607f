package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tele-drive/conf"

	"github.com/redis/go-redis/v9"
)

var (
	RedisClient *redis.Client
	ctx         = context.Background()
)

// InitRedis initialize Redis client
func InitRedis() error {
	if !conf.Cfg.Redis.Enabled {
		log.Println("[redis] cache is disabled")
		return nil
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", conf.Cfg.Redis.Host, conf.Cfg.Redis.Port),
		Password: conf.Cfg.Redis.Password,
		DB:       conf.Cfg.Redis.DB,
	})

	// Test connection
	if err := RedisClient.Ping(ctx).Err(); err != nil {
		log.Printf("[redis] ⚠️  failed to connect: %v (cache will be disabled)", err)
		RedisClient = nil
		return err
	}

	log.Printf("[redis] connected: %s:%d (DB %d, TTL %ds)",
		conf.Cfg.Redis.Host, conf.Cfg.Redis.Port, conf.Cfg.Redis.DB, conf.Cfg.Redis.CacheTTL)
	return nil
}

// CloseRedis close Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// SetCache set cache with the configured TTL
func SetCache(key string, value interface{}) error {
	if RedisClient == nil || !conf.Cfg.Redis.Enabled {
		return nil // Cache disabled, skip silently
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	ttl := time.Duration(conf.Cfg.Redis.CacheTTL) * time.Second
	if err := RedisClient.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[redis] failed to set cache for key %s: %v", key, err)
		return err
	}

	return nil
}

// GetCache get cache by key into dest, redis.Nil on miss
func GetCache(key string, dest interface{}) error {
	if RedisClient == nil || !conf.Cfg.Redis.Enabled {
		return redis.Nil // Cache disabled, behaves like a miss
	}

	data, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

// DeleteCache drop a cached key
func DeleteCache(key string) error {
	if RedisClient == nil || !conf.Cfg.Redis.Enabled {
		return nil
	}
	return RedisClient.Del(ctx, key).Err()
}

// EntityCacheKey cache key for a resolved channel entity
func EntityCacheKey(handle string) string {
	return "teledrive:entity:" + handle
}

// ScanStatusCacheKey cache key for a scan status snapshot
func ScanStatusCacheKey(scanID int64) string {
	return fmt.Sprintf("teledrive:scan:%d:status", scanID)
}

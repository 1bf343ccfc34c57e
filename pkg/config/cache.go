package config

import (
	"context"
	"errors"
	"log"
	"time"

	"simcontrol/internal/settings"

	"github.com/redis/go-redis/v9"
)

// Cache is the shared redis client. Nil when CACHE_URL is not set;
// callers treat a nil cache as a miss.
var Cache *redis.Client

// InitCache connects to redis using CACHE_URL. A missing CACHE_URL
// disables caching rather than failing startup.
func InitCache() {
	cfg := settings.Get()
	if cfg.CacheURL == "" {
		log.Println("Cache not configured, skipping initialization")
		return
	}

	opts, err := redis.ParseURL(cfg.CacheURL)
	if err != nil {
		log.Fatalf("Invalid CACHE_URL: %v", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to cache: %v", err)
	}

	Cache = client
	log.Printf("Successfully connected to cache at %s", opts.Addr)
}

// CacheGet returns the cached value for key, or "" on a miss.
func CacheGet(ctx context.Context, key string) string {
	if Cache == nil {
		return ""
	}
	val, err := Cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Cache get failed for %s: %v", key, err)
		}
		return ""
	}
	return val
}

// CacheSet stores value under key with a TTL. Failures are logged,
// not returned; the cache is best effort.
func CacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if Cache == nil {
		return
	}
	if err := Cache.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("Cache set failed for %s: %v", key, err)
	}
}

// CacheDel drops keys from the cache.
func CacheDel(ctx context.Context, keys ...string) {
	if Cache == nil {
		return
	}
	if err := Cache.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Cache del failed: %v", err)
	}
}

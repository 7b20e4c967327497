package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"friendnet/config"

	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// InitCache connects the Redis client used for read-side result caching.
// The cache is best-effort: when it is down or never initialized, every
// operation degrades to a miss.
func InitCache(cfg config.RedisConfig) error {
	client = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client = nil
		return fmt.Errorf("redis connect: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// HealthCheck pings Redis.
func HealthCheck() error {
	if client == nil {
		return fmt.Errorf("cache not initialized")
	}
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// insightKey and suggestionKey are the per-viewer cache keys the
// relationship state machine invalidates on every mutation.
func insightKey(viewerID uint) string {
	return fmt.Sprintf("insights:%d", viewerID)
}

func suggestionKey(viewerID uint) string {
	return fmt.Sprintf("suggestions:%d", viewerID)
}

// GetInsights loads cached insights for a viewer into dest.
// Returns false on a miss or when the cache is unavailable.
func GetInsights(viewerID uint, dest interface{}) bool {
	return getJSON(insightKey(viewerID), dest)
}

// SetInsights stores insights for a viewer with a TTL.
func SetInsights(viewerID uint, value interface{}, ttl time.Duration) {
	setJSON(insightKey(viewerID), value, ttl)
}

// GetSuggestions loads cached friend suggestions for a viewer into dest.
func GetSuggestions(viewerID uint, dest interface{}) bool {
	return getJSON(suggestionKey(viewerID), dest)
}

// SetSuggestions stores friend suggestions for a viewer with a TTL.
func SetSuggestions(viewerID uint, value interface{}, ttl time.Duration) {
	setJSON(suggestionKey(viewerID), value, ttl)
}

// InvalidateViewer drops all cached derived results for a viewer.
// Called after every relationship transition that touches the viewer.
func InvalidateViewer(viewerIDs ...uint) {
	if client == nil {
		return
	}
	keys := make([]string, 0, len(viewerIDs)*2)
	for _, id := range viewerIDs {
		keys = append(keys, insightKey(id), suggestionKey(id))
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func getJSON(key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func setJSON(key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

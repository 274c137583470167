package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // String conversion
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// UserCacheKey returns the cache key for a single account
func UserCacheKey(userID string) string {
	return "user:" + userID
}

// HistoryCacheKey returns the cache key for one page of an account's payment history
func HistoryCacheKey(userID string, page, pageSize int) string {
	return "txhistory:user:" + userID + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
}

// InvalidateUserCache drops the cached account and its paginated history
// (simple version: delete the first 5 pages at the default size)
func InvalidateUserCache(ctx context.Context, rdb *redis.Client, userID string) {
	_ = DeleteCache(ctx, rdb, UserCacheKey(userID)) // Invalidate the account cache
	// Delete cache entries for the history pages
	for i := 1; i <= 5; i++ {
		_ = DeleteCache(ctx, rdb, HistoryCacheKey(userID, i, 20))
	}
}

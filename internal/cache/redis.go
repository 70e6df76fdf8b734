package cache

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Connect returns a Redis client for addr, or nil when addr is empty
// or the server is unreachable. The dashboard runs without Redis; only
// the snapshot mirror is skipped.
func Connect(ctx context.Context, addr string) *redis.Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Printf("Warning: failed to parse REDIS_URL: %v, snapshot mirror disabled", err)
			return nil
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis unreachable: %v, snapshot mirror disabled", err)
		return nil
	}
	log.Println("Connected to Redis")
	return client
}

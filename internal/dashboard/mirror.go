package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "dashboard:snapshot"

// A mirrored snapshot must not outlive the refresh cycle that wrote
// it; read surfaces fall back to fetching.
const defaultSnapshotTTL = 10 * time.Minute

// RedisClient is the subset of go-redis the mirror needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Mirror publishes the latest rendered snapshot to Redis so other
// surfaces (the SSH dashboard, sibling processes) can warm-start from
// it. Every publish overwrites the previous snapshot wholesale; an
// empty fragment overwrites a populated one, so a failed fetch is
// never papered over by mirrored data.
type Mirror struct {
	redis RedisClient
	ttl   time.Duration
}

// NewMirror wraps client with the given snapshot lifetime, normally
// the refresh period.
func NewMirror(client RedisClient, ttl time.Duration) *Mirror {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &Mirror{redis: client, ttl: ttl}
}

func (m *Mirror) Publish(ctx context.Context, frags ViewFragments) error {
	data, err := json.Marshal(frags)
	if err != nil {
		return err
	}
	return m.redis.Set(ctx, snapshotKey, data, m.ttl).Err()
}

// Load returns the mirrored snapshot, or nil when none is present.
func (m *Mirror) Load(ctx context.Context) (*ViewFragments, error) {
	data, err := m.redis.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var frags ViewFragments
	if err := json.Unmarshal(data, &frags); err != nil {
		return nil, err
	}
	return &frags, nil
}

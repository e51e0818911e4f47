package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// redisEntry carries the logical expiry inside the value. The redis key keeps
// a much longer physical TTL so logically-expired payloads remain readable
// for stale-on-error fallback.
type redisEntry struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Payload   []byte    `json:"payload"`
}

const redisRetention = 24 * time.Hour

// RedisStore keeps payloads in redis so restarts keep their cache warm.
// Every error degrades to a miss; the cache must never take a request down.
type RedisStore struct {
	rc     *redis.Client
	logger *zap.SugaredLogger
}

func NewRedisStore(rc *redis.Client, logger *zap.SugaredLogger) *RedisStore {
	return &RedisStore{rc: rc, logger: logger}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool) {
	raw, err := s.rc.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warnf("Redis error fetching cache key %v: %v", key, err.Error())
		}
		return Entry{}, false
	}
	var re redisEntry
	if err := json.Unmarshal(raw, &re); err != nil {
		s.logger.Warnf("Error unmarshalling redis cache entry %v: %v", key, err.Error())
		return Entry{}, false
	}
	return Entry{ExpiresAt: re.ExpiresAt, Payload: re.Payload}, true
}

func (s *RedisStore) Set(ctx context.Context, key string, e Entry) {
	raw, err := json.Marshal(redisEntry{ExpiresAt: e.ExpiresAt, Payload: e.Payload})
	if err != nil {
		s.logger.Warnf("Error marshalling redis cache entry %v: %v", key, err.Error())
		return
	}
	if err := s.rc.Set(ctx, key, raw, redisRetention).Err(); err != nil {
		s.logger.Warnf("Redis error storing cache key %v: %v", key, err.Error())
	}
}

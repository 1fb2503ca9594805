package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis is a Cache backed by a Redis server. Keys are namespaced by Prefix.
type Redis struct {
	Client *redis.Client
	Prefix string
	// Timeout bounds every call.
	Timeout time.Duration
}

// NewRedis returns a Redis-backed cache. The connection is verified with a
// ping; a failed ping is logged and the cache keeps working as a miss-only
// store until the server becomes reachable.
func NewRedis(addr, password string, db int) *Redis {
	rc := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis ping failed")
	}
	return &Redis{Client: rc, Prefix: "vamgard:", Timeout: 2 * time.Second}
}

func (r *Redis) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, r.Timeout)
}

// Get returns the value or a miss on any error.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	b, err := r.Client.Get(ctx, r.Prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Debug().Err(err).Str("key", key).Msg("cache get failed")
		}
		return nil, false
	}
	return b, true
}

// Set stores val with ttl; failures are logged.
func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	if err := r.Client.Set(ctx, r.Prefix+key, val, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Close releases the client connection pool.
func (r *Redis) Close() error { return r.Client.Close() }

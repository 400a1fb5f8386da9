package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/haircarelog/haircarelog-api/internal/config"
)

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return rdb, nil
}

// Store keeps JSON values under a common key prefix with a fixed TTL.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewStore(rdb *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *Store) key(k string) string {
	return s.prefix + ":" + k
}

// GetJSON decodes the value at k into dst. A miss returns (false, nil).
// Undecodable entries are deleted and reported as a miss with an error.
func (s *Store) GetJSON(ctx context.Context, k string, dst interface{}) (bool, error) {
	val, err := s.rdb.Get(ctx, s.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %s: %w", s.key(k), err)
	}

	if err := json.Unmarshal(val, dst); err != nil {
		s.rdb.Del(ctx, s.key(k))
		return false, fmt.Errorf("cache: corrupted entry %s: %w", s.key(k), err)
	}
	return true, nil
}

func (s *Store) SetJSON(ctx context.Context, k string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", s.key(k), err)
	}
	if err := s.rdb.Set(ctx, s.key(k), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", s.key(k), err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, k string) error {
	if err := s.rdb.Del(ctx, s.key(k)).Err(); err != nil {
		return fmt.Errorf("cache: delete %s: %w", s.key(k), err)
	}
	return nil
}

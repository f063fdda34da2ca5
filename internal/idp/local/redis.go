package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore comparte cuentas entre réplicas del servicio.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(username string) string {
	return s.prefix + ":local-idp:user:" + username
}

func (s *RedisStore) Create(ctx context.Context, a *Account) error {
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, s.key(a.Username), b, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, username string) (*Account, error) {
	b, err := s.rdb.Get(ctx, s.key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var a Account
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("unmarshal account: %w", err)
	}
	return &a, nil
}

func (s *RedisStore) Update(ctx context.Context, a *Account) error {
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	ok, err := s.rdb.SetXX(ctx, s.key(a.Username), b, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("redis setxx: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, username string) error {
	if err := s.rdb.Del(ctx, s.key(username)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

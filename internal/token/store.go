package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "user_token:v1:"

// ErrNotFound is returned when a user has no live token.
var ErrNotFound = errors.New("user token not found")

// Store persists at most one token per user.
type Store interface {
	Find(ctx context.Context, userID string) (UserToken, error)
	Save(ctx context.Context, t UserToken) error
	Delete(ctx context.Context, userID string) error
	DeleteAll(ctx context.Context) error
}

// RedisStore keeps tokens in Redis and lets key expiry retire them.
type RedisStore struct {
	cache *redis.Client
}

// NewRedisStore builds a Redis-backed token store.
func NewRedisStore(cache *redis.Client) *RedisStore {
	return &RedisStore{cache: cache}
}

func (s *RedisStore) Find(ctx context.Context, userID string) (UserToken, error) {
	raw, err := s.cache.Get(ctx, keyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return UserToken{}, ErrNotFound
	}
	if err != nil {
		return UserToken{}, fmt.Errorf("get user token: %w", err)
	}
	var t UserToken
	if err := json.Unmarshal(raw, &t); err != nil {
		return UserToken{}, fmt.Errorf("decode user token: %w", err)
	}
	return t, nil
}

func (s *RedisStore) Save(ctx context.Context, t UserToken) error {
	ttl := time.Until(t.ExpireAt)
	if ttl <= 0 {
		return fmt.Errorf("user token already expired at %s", t.ExpireAt.Format(time.RFC3339))
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode user token: %w", err)
	}
	if err := s.cache.Set(ctx, keyPrefix+t.UserID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set user token: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.cache.Del(ctx, keyPrefix+userID).Err()
}

func (s *RedisStore) DeleteAll(ctx context.Context) error {
	iter := s.cache.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

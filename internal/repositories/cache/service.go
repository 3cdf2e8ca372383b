package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService wraps redis with JSON marshalling and the typed keys
// used by the read side: bank lookups, method flags, status polls.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}

// Typed keys. Session status entries are short-lived because the poll
// endpoint must observe transitions quickly.

func BankListKey() string {
	return "banks:cliq"
}

func MethodFlagKey(method string) string {
	return fmt.Sprintf("method:%s:enabled", method)
}

func SessionStatusKey(code string) string {
	return fmt.Sprintf("session:%s:status", code)
}

// SetSessionStatus caches a status poll result briefly.
func (s *CacheService) SetSessionStatus(ctx context.Context, code, status string) error {
	return s.SetWithTTL(ctx, SessionStatusKey(code), status, 2*time.Second)
}

// InvalidateSession drops the cached poll entry after any transition.
func (s *CacheService) InvalidateSession(ctx context.Context, code string) error {
	return s.Delete(ctx, SessionStatusKey(code))
}

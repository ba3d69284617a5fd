package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAttemptStore keeps attempts in redis so a provider return can land on
// any gateway instance. Attempts expire by TTL; a pending order abandoned at
// the provider stays pending server-side, which is a backend concern.
type RedisAttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (s *RedisAttemptStore) Save(ctx context.Context, a *Attempt) error {
	a.UpdatedAt = time.Now()
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal attempt failed: %w", err)
	}
	if err := s.client.Set(ctx, attemptKey(a.ExternalOrderKey), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisAttemptStore) Get(ctx context.Context, externalOrderKey string) (*Attempt, error) {
	data, err := s.client.Get(ctx, attemptKey(externalOrderKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var a Attempt
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal attempt failed: %w", err)
	}
	return &a, nil
}

func attemptKey(externalOrderKey string) string {
	return fmt.Sprintf("checkout:attempt:%s", externalOrderKey)
}

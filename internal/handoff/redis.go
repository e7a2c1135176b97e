package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prepdeck/examprep-service/internal/attempt"
)

// RedisStore stages results in Redis with a TTL, so an abandoned redirect
// cleans itself up.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, result *attempt.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := s.client.Set(ctx, s.key(result.AttemptID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to stage result: %w", err)
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, attemptID string) (*attempt.Result, error) {
	payload, err := s.client.GetDel(ctx, s.key(attemptID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take staged result: %w", err)
	}

	var result attempt.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal staged result: %w", err)
	}
	return &result, nil
}

func (s *RedisStore) key(attemptID string) string {
	return "attempt:result:" + attemptID
}

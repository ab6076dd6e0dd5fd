package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medichain/medichain/core"
)

const (
	challengePrefix   = "medichain:challenge:"
	invalidatedPrefix = "medichain:invalidated:"
)

// RedisStore is a Redis implementation of the challenge and revocation
// stores. Challenge TTLs ride on Redis key expiry, so expired challenges
// disappear without a sweeper.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put stores a challenge for its address, overwriting any pending one.
func (s *RedisStore) Put(ctx context.Context, challenge *core.Challenge, ttl time.Duration) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}

	key := challengePrefix + strings.ToLower(challenge.Address)
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}

	return nil
}

// Get retrieves the pending challenge for an address.
func (s *RedisStore) Get(ctx context.Context, address string) (*core.Challenge, error) {
	key := challengePrefix + strings.ToLower(address)

	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, core.ErrInvalidChallenge
		}
		return nil, fmt.Errorf("load challenge: %w", err)
	}

	var challenge core.Challenge
	if err := json.Unmarshal(payload, &challenge); err != nil {
		return nil, fmt.Errorf("unmarshal challenge: %w", err)
	}

	return &challenge, nil
}

// Delete removes the pending challenge for an address.
func (s *RedisStore) Delete(ctx context.Context, address string) error {
	key := challengePrefix + strings.ToLower(address)

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}

	return nil
}

// InvalidateToken marks a token as invalidated in Redis
func (s *RedisStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	key := invalidatedPrefix + tokenID

	if err := s.client.Set(ctx, key, "1", expiry).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	return nil
}

// IsTokenInvalidated checks if a token is invalidated in Redis
func (s *RedisStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	key := invalidatedPrefix + tokenID

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token invalidation: %w", err)
	}

	return val > 0, nil
}

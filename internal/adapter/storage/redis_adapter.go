package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crofflehub/settlement/internal/core/domain"
)

const (
	rulesKeyPrefix    = "rules:"
	idempotencyKeyTTL = 24 * time.Hour
)

// RedisAdapter backs the deduction-rule cache and the per-transaction
// idempotency keys that guard against double deduction.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetRules(ctx context.Context, key string) ([]domain.IngredientRequirement, bool, error) {
	data, err := r.client.Get(ctx, rulesKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rules []domain.IngredientRequirement
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, false, fmt.Errorf("decode cached rules: %w", err)
	}
	return rules, true, nil
}

func (r *RedisAdapter) SetRules(ctx context.Context, key string, rules []domain.IngredientRequirement, ttl time.Duration) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return r.client.Set(ctx, rulesKeyPrefix+key, data, ttl).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

package port

import (
	"context"
	"time"

	"github.com/crofflehub/settlement/internal/core/domain"
)

type RuleCache interface {
	// GetRules returns cached deduction rules and whether the key was
	// present. Expired entries behave like a miss.
	GetRules(ctx context.Context, key string) ([]domain.IngredientRequirement, bool, error)

	// SetRules caches deduction rules under key for ttl. Entries are
	// evicted by TTL only, never explicitly.
	SetRules(ctx context.Context, key string, rules []domain.IngredientRequirement, ttl time.Duration) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crofflehub/settlement/internal/core/domain"
	"github.com/crofflehub/settlement/internal/port"
)

const defaultRuleCacheTTL = 5 * time.Minute

// MixMatchResolver turns a composite product name like
// "Mini Croffle with Choco Flakes and Marshmallow" into the concrete
// ingredient deductions for the options the customer actually chose.
// Rule tables are fetched through a TTL cache to avoid hitting the
// recipe store on every sale of the same product.
type MixMatchResolver struct {
	recipes port.RecipeStore
	cache   port.RuleCache
	ttl     time.Duration
	logger  *slog.Logger
}

func NewMixMatchResolver(recipes port.RecipeStore, cache port.RuleCache, ttl time.Duration, logger *slog.Logger) *MixMatchResolver {
	if ttl <= 0 {
		ttl = defaultRuleCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MixMatchResolver{recipes: recipes, cache: cache, ttl: ttl, logger: logger}
}

// ParseChoices extracts the chosen option names from a composite product
// name: everything after the first " with " is split on " and ". Names
// without a " with " clause yield no choices, so only base and packaging
// rules will apply.
func ParseChoices(productName string) []string {
	name := strings.ToLower(productName)
	idx := strings.Index(name, " with ")
	if idx < 0 {
		return nil
	}

	var choices []string
	for _, part := range strings.Split(name[idx+len(" with "):], " and ") {
		if token := strings.TrimSpace(part); token != "" {
			choices = append(choices, token)
		}
	}
	return choices
}

// Resolve returns the deduction rules that apply to one unit of the
// product: base and packaging rules always, choice rules only when their
// ingredient name matches a parsed choice. A product with no rule table
// resolves to nil, signalling a plain recipe lookup instead.
func (r *MixMatchResolver) Resolve(ctx context.Context, storeID, productName string) ([]domain.IngredientRequirement, error) {
	rules, err := r.lookupRules(ctx, storeID, productName)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}

	choices := ParseChoices(productName)
	var selected []domain.IngredientRequirement
	for _, rule := range rules {
		switch rule.Category {
		case domain.CategoryBase, domain.CategoryPackaging:
			selected = append(selected, rule)
		case domain.CategoryChoice:
			if matchesChoice(rule.IngredientName, choices) {
				selected = append(selected, rule)
			}
		}
	}
	return selected, nil
}

func (r *MixMatchResolver) lookupRules(ctx context.Context, storeID, productName string) ([]domain.IngredientRequirement, error) {
	key := ruleCacheKey(storeID, productName)
	if r.cache != nil {
		rules, hit, err := r.cache.GetRules(ctx, key)
		if err != nil {
			r.logger.Warn("rule cache read failed", "key", key, "error", err)
		} else if hit {
			return rules, nil
		}
	}

	rules, err := r.recipes.GetDeductionRules(ctx, storeID, productName)
	if err != nil {
		return nil, fmt.Errorf("get deduction rules for %q: %w", productName, err)
	}

	if r.cache != nil {
		if err := r.cache.SetRules(ctx, key, rules, r.ttl); err != nil {
			r.logger.Warn("rule cache write failed", "key", key, "error", err)
		}
	}
	return rules, nil
}

func ruleCacheKey(storeID, productName string) string {
	return "mixmatch:" + storeID + ":" + strings.ToLower(productName)
}

func matchesChoice(ingredientName string, choices []string) bool {
	ingredient := strings.ToLower(ingredientName)
	for _, choice := range choices {
		if strings.Contains(ingredient, choice) || strings.Contains(choice, ingredient) {
			return true
		}
	}
	return false
}

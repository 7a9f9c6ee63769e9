package port

import (
	"context"

	"github.com/crofflehub/settlement/internal/core/domain"
)

type RecipeStore interface {
	// GetIngredientsForProduct returns the fixed recipe for a product,
	// or an empty slice when the product has no recipe.
	GetIngredientsForProduct(ctx context.Context, storeID, productName string) ([]domain.IngredientRequirement, error)

	// GetDeductionRules returns the category-tagged rule table for a
	// mix-and-match product, or an empty slice for plain products.
	GetDeductionRules(ctx context.Context, storeID, productName string) ([]domain.IngredientRequirement, error)
}

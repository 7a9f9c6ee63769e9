package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/crofflehub/settlement/internal/core/domain"
)

func requirement(name string, category domain.IngredientCategory) domain.IngredientRequirement {
	return domain.IngredientRequirement{
		IngredientName:   name,
		QuantityPerUnit:  dec("1"),
		InventoryStockID: "stock-" + name,
		Category:         category,
	}
}

func miniCroffleRules() []domain.IngredientRequirement {
	return []domain.IngredientRequirement{
		requirement("Regular Croissant", domain.CategoryBase),
		requirement("Take-out Box", domain.CategoryPackaging),
		requirement("Choco Flakes", domain.CategoryChoice),
		requirement("Marshmallow", domain.CategoryChoice),
		requirement("Peanut", domain.CategoryChoice),
		requirement("Caramel Sauce", domain.CategoryChoice),
	}
}

func TestParseChoices(t *testing.T) {
	cases := []struct {
		name string
		want []string
	}{
		{"Mini Croffle with Choco Flakes and Marshmallow", []string{"choco flakes", "marshmallow"}},
		{"Croffle Overload with Peanut", []string{"peanut"}},
		{"Mini Croffle", nil},
		{"Plain Croissant", nil},
		{"Mini Croffle with ", nil},
	}

	for _, tc := range cases {
		got := ParseChoices(tc.name)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseChoices(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResolve_OnlySelectedChoicesIncluded(t *testing.T) {
	store := newFakeRecipeStore()
	productName := "Mini Croffle with Choco Flakes and Marshmallow"
	store.rules[recipeKey("store-1", productName)] = miniCroffleRules()

	resolver := NewMixMatchResolver(store, newMemRuleCache(), time.Minute, nil)
	resolved, err := resolver.Resolve(context.Background(), "store-1", productName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]bool{
		"Regular Croissant": true,
		"Take-out Box":      true,
		"Choco Flakes":      true,
		"Marshmallow":       true,
	}
	if len(resolved) != len(want) {
		t.Fatalf("expected %d requirements, got %d: %+v", len(want), len(resolved), resolved)
	}
	for _, req := range resolved {
		if !want[req.IngredientName] {
			t.Errorf("unexpected ingredient %s in resolution", req.IngredientName)
		}
	}
}

func TestResolve_NoChoiceClauseDeductsBaseAndPackagingOnly(t *testing.T) {
	store := newFakeRecipeStore()
	store.rules[recipeKey("store-1", "Mini Croffle")] = miniCroffleRules()

	resolver := NewMixMatchResolver(store, newMemRuleCache(), time.Minute, nil)
	resolved, err := resolver.Resolve(context.Background(), "store-1", "Mini Croffle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resolved) != 2 {
		t.Fatalf("expected base + packaging only, got %+v", resolved)
	}
	for _, req := range resolved {
		if req.Category == domain.CategoryChoice {
			t.Errorf("choice %s must not be deducted without selection", req.IngredientName)
		}
	}
}

func TestResolve_NoRulesMeansPlainProduct(t *testing.T) {
	resolver := NewMixMatchResolver(newFakeRecipeStore(), newMemRuleCache(), time.Minute, nil)

	resolved, err := resolver.Resolve(context.Background(), "store-1", "Croissant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != nil {
		t.Errorf("expected nil for a product without rules, got %+v", resolved)
	}
}

func TestResolve_SecondLookupServedFromCache(t *testing.T) {
	store := newFakeRecipeStore()
	productName := "Croffle Overload with Peanut"
	store.rules[recipeKey("store-1", productName)] = miniCroffleRules()

	resolver := NewMixMatchResolver(store, newMemRuleCache(), time.Minute, nil)
	ctx := context.Background()

	if _, err := resolver.Resolve(ctx, "store-1", productName); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if _, err := resolver.Resolve(ctx, "store-1", productName); err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}

	if store.rulesCalls != 1 {
		t.Errorf("expected 1 store lookup, got %d", store.rulesCalls)
	}
}

func TestResolve_WorksWithoutCache(t *testing.T) {
	store := newFakeRecipeStore()
	store.rules[recipeKey("store-1", "Mini Croffle")] = miniCroffleRules()

	resolver := NewMixMatchResolver(store, nil, time.Minute, nil)
	resolved, err := resolver.Resolve(context.Background(), "store-1", "Mini Croffle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 2 {
		t.Errorf("expected 2 requirements, got %d", len(resolved))
	}
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crofflehub/settlement/internal/core/domain"
)

// Mock RecipeStore
type fakeRecipeStore struct {
	mu         sync.Mutex
	recipes    map[string][]domain.IngredientRequirement
	rules      map[string][]domain.IngredientRequirement
	rulesCalls int
}

func newFakeRecipeStore() *fakeRecipeStore {
	return &fakeRecipeStore{
		recipes: make(map[string][]domain.IngredientRequirement),
		rules:   make(map[string][]domain.IngredientRequirement),
	}
}

func recipeKey(storeID, productName string) string {
	return storeID + "|" + productName
}

func (f *fakeRecipeStore) GetIngredientsForProduct(ctx context.Context, storeID, productName string) ([]domain.IngredientRequirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipes[recipeKey(storeID, productName)], nil
}

func (f *fakeRecipeStore) GetDeductionRules(ctx context.Context, storeID, productName string) ([]domain.IngredientRequirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rulesCalls++
	return f.rules[recipeKey(storeID, productName)], nil
}

// Mock RuleCache
type memRuleCache struct {
	mu          sync.Mutex
	rules       map[string][]domain.IngredientRequirement
	idempotency map[string]bool
}

func newMemRuleCache() *memRuleCache {
	return &memRuleCache{
		rules:       make(map[string][]domain.IngredientRequirement),
		idempotency: make(map[string]bool),
	}
}

func (m *memRuleCache) GetRules(ctx context.Context, key string) ([]domain.IngredientRequirement, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rules, ok := m.rules[key]
	return rules, ok, nil
}

func (m *memRuleCache) SetRules(ctx context.Context, key string, rules []domain.IngredientRequirement, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[key] = rules
	return nil
}

func (m *memRuleCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotency[key] {
		return false, nil
	}
	m.idempotency[key] = true
	return true, nil
}

// Mock InventoryStore
type mockInventoryStore struct {
	mu     sync.Mutex
	stocks map[string]decimal.Decimal
	getErr error
	setErr error
}

func newMockInventoryStore() *mockInventoryStore {
	return &mockInventoryStore{stocks: make(map[string]decimal.Decimal)}
}

func (m *mockInventoryStore) GetStock(ctx context.Context, stockID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return decimal.Zero, m.getErr
	}
	return m.stocks[stockID], nil
}

func (m *mockInventoryStore) SetStock(ctx context.Context, stockID string, quantity decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.stocks[stockID] = quantity
	return nil
}

func (m *mockInventoryStore) stock(stockID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stocks[stockID]
}

// Mock AuditSink
type mockAuditSink struct {
	mu        sync.Mutex
	records   []domain.AuditRecord
	failFirst int
	attempts  int
}

func (m *mockAuditSink) Append(ctx context.Context, record domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.attempts <= m.failFirst {
		return errAuditDown
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockAuditSink) recordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

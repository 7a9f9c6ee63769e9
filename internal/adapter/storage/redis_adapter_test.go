package storage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/crofflehub/settlement/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func sampleRules() []domain.IngredientRequirement {
	return []domain.IngredientRequirement{
		{
			IngredientName:   "Regular Croissant",
			QuantityPerUnit:  decimal.RequireFromString("1"),
			InventoryStockID: "stock-croissant",
			Category:         domain.CategoryBase,
		},
		{
			IngredientName:   "Choco Flakes",
			QuantityPerUnit:  decimal.RequireFromString("0.5"),
			InventoryStockID: "stock-choco-flakes",
			Category:         domain.CategoryChoice,
		},
	}
}

func TestGetRules_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	// Setup
	client.Del(ctx, "rules:test-rules-key")

	if err := adapter.SetRules(ctx, "test-rules-key", sampleRules(), time.Minute); err != nil {
		t.Fatalf("SetRules failed: %v", err)
	}

	rules, hit, err := adapter.GetRules(ctx, "test-rules-key")
	if err != nil {
		t.Fatalf("GetRules failed: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].IngredientName != "Regular Croissant" || rules[0].Category != domain.CategoryBase {
		t.Errorf("unexpected first rule: %+v", rules[0])
	}
	if !rules[1].QuantityPerUnit.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("expected quantity 0.5, got %s", rules[1].QuantityPerUnit)
	}
}

func TestGetRules_Miss(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "rules:nonexistent-key")

	_, hit, err := adapter.GetRules(ctx, "nonexistent-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Error("expected miss for nonexistent key")
	}
}

func TestGetRules_TTLExpiry(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "rules:ttl-key")
	if err := adapter.SetRules(ctx, "ttl-key", sampleRules(), 50*time.Millisecond); err != nil {
		t.Fatalf("SetRules failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	_, hit, err := adapter.GetRules(ctx, "ttl-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Error("expected expired entry to behave like a miss")
	}
}

func TestSetIdempotency_Success(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	// Setup
	client.Del(ctx, "deduct:test-txn")

	// First call should succeed
	ok, err := adapter.SetIdempotency(ctx, "deduct:test-txn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected first call to succeed")
	}

	// Second call should fail (key exists)
	ok, err = adapter.SetIdempotency(ctx, "deduct:test-txn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second call to fail")
	}
}

func TestSetIdempotency_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	// Setup
	client.Del(ctx, "deduct:concurrent-txn")

	var successCount atomic.Int32
	var wg sync.WaitGroup
	concurrency := 100

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := adapter.SetIdempotency(ctx, "deduct:concurrent-txn")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// Only one should succeed
	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 success, got %d", successCount.Load())
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crofflehub/settlement/internal/core/domain"
	"github.com/crofflehub/settlement/internal/port"
)

var ErrInsufficientStock = errors.New("insufficient stock")

const (
	defaultWorkers      = 8
	defaultAuditRetries = 2
	defaultAuditBackoff = 50 * time.Millisecond
)

// TransactionItem is one sold line handed over for inventory deduction
// after payment has been accepted.
type TransactionItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	StoreID     string
}

type DeductedIngredient struct {
	IngredientName   string
	InventoryStockID string
	QuantityDeducted decimal.Decimal
	NewQuantity      decimal.Decimal
}

// DeductionResult reports everything that happened during one
// transaction's deduction pass. Errors mark ingredients that were not
// deducted; warnings mark lost audit records and skipped items. Neither
// blocks the sale, which has already been paid.
type DeductionResult struct {
	Success  bool
	Errors   []string
	Warnings []string
	Deducted []DeductedIngredient
}

// DeductionConfig tunes the engine; zero values get defaults.
type DeductionConfig struct {
	Workers      int
	AuditRetries int
	AuditBackoff time.Duration
}

// DeductionEngine resolves recipe ingredients per sold line item and
// mutates stock through the audit ledger. Per-ingredient updates fan out
// on a bounded worker pool and are joined before the result is reported.
// There is no rollback: ingredients deducted before a later one fails
// stay deducted, and concurrent transactions can race past independent
// sufficiency checks. Both behaviors are deliberate.
type DeductionEngine struct {
	inventory port.InventoryStore
	recipes   port.RecipeStore
	audit     port.AuditSink
	resolver  *MixMatchResolver
	cache     port.RuleCache
	logger    *slog.Logger

	workers      int
	auditRetries int
	auditBackoff time.Duration
}

func NewDeductionEngine(
	inventory port.InventoryStore,
	recipes port.RecipeStore,
	audit port.AuditSink,
	resolver *MixMatchResolver,
	cache port.RuleCache,
	logger *slog.Logger,
	cfg DeductionConfig,
) *DeductionEngine {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.AuditRetries <= 0 {
		cfg.AuditRetries = defaultAuditRetries
	}
	if cfg.AuditBackoff <= 0 {
		cfg.AuditBackoff = defaultAuditBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeductionEngine{
		inventory:    inventory,
		recipes:      recipes,
		audit:        audit,
		resolver:     resolver,
		cache:        cache,
		logger:       logger,
		workers:      cfg.Workers,
		auditRetries: cfg.AuditRetries,
		auditBackoff: cfg.AuditBackoff,
	}
}

type deductionJob struct {
	item        TransactionItem
	requirement domain.IngredientRequirement
}

// DeductTransactionItems deducts raw materials for every sold item in
// one paid transaction. A transaction ID that was already processed is a
// no-op with a warning. Success means zero errors; warnings alone still
// count as success.
func (e *DeductionEngine) DeductTransactionItems(ctx context.Context, transactionID string, items []TransactionItem) DeductionResult {
	result := DeductionResult{}

	if e.cache != nil {
		ok, err := e.cache.SetIdempotency(ctx, "deduct:"+transactionID)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("idempotency check failed: %v", err))
			e.logger.Warn("idempotency check failed", "transaction_id", transactionID, "error", err)
		} else if !ok {
			result.Success = true
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("transaction %s already deducted, skipping", transactionID))
			return result
		}
	}

	var jobs []deductionJob
	for _, item := range items {
		requirements, err := e.resolveRequirements(ctx, item)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: ingredient lookup failed, skipping: %v", item.ProductName, err))
			continue
		}
		if len(requirements) == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("no recipe or deduction rules for %s, skipping", item.ProductName))
			continue
		}
		for _, requirement := range requirements {
			jobs = append(jobs, deductionJob{item: item, requirement: requirement})
		}
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, e.workers)
	)
	for _, job := range jobs {
		wg.Add(1)
		go func(job deductionJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			required := job.requirement.QuantityPerUnit.Mul(decimal.NewFromInt(int64(job.item.Quantity)))
			note := fmt.Sprintf("sale deduction: %s for %s", job.requirement.IngredientName, job.item.ProductName)
			deducted, warning, err := e.deductWithAudit(ctx, job.requirement.InventoryStockID, required, transactionID, note)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: %v", job.requirement.IngredientName, err))
				return
			}
			if warning != "" {
				result.Warnings = append(result.Warnings, warning)
			}
			deducted.IngredientName = job.requirement.IngredientName
			result.Deducted = append(result.Deducted, deducted)
		}(job)
	}
	wg.Wait()

	result.Success = len(result.Errors) == 0
	return result
}

// deductWithAudit is the single-ingredient primitive: read, check
// sufficiency, write, then append the audit record. The stock write is
// the durability-critical step and is never retried; the audit append is
// retried with a fixed backoff and downgraded to a warning on failure.
func (e *DeductionEngine) deductWithAudit(ctx context.Context, stockID string, required decimal.Decimal, transactionID, note string) (DeductedIngredient, string, error) {
	current, err := e.inventory.GetStock(ctx, stockID)
	if err != nil {
		return DeductedIngredient{}, "", fmt.Errorf("read stock %s: %w", stockID, err)
	}
	if current.LessThan(required) {
		return DeductedIngredient{}, "", fmt.Errorf("%w: have %s, need %s",
			ErrInsufficientStock, current.String(), required.String())
	}

	newQuantity := current.Sub(required)
	if err := e.inventory.SetStock(ctx, stockID, newQuantity); err != nil {
		return DeductedIngredient{}, "", fmt.Errorf("update stock %s: %w", stockID, err)
	}

	record := domain.AuditRecord{
		ID:                     uuid.NewString(),
		InventoryStockID:       stockID,
		QuantityChange:         required,
		PreviousQuantity:       current,
		NewQuantity:            newQuantity,
		ReferenceTransactionID: transactionID,
		Note:                   note,
		CreatedAt:              time.Now(),
	}

	var auditErr error
	for attempt := 0; attempt <= e.auditRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(e.auditBackoff)
		}
		if auditErr = e.audit.Append(ctx, record); auditErr == nil {
			break
		}
	}

	warning := ""
	if auditErr != nil {
		// The stock mutation stands without its audit record; the sale
		// must not be blocked by a logging fault.
		warning = fmt.Sprintf("audit write failed for stock %s: %v", stockID, auditErr)
		e.logger.Warn("audit write lost after retries",
			"stock_id", stockID, "transaction_id", transactionID, "error", auditErr)
	}

	return DeductedIngredient{
		InventoryStockID: stockID,
		QuantityDeducted: required,
		NewQuantity:      newQuantity,
	}, warning, nil
}

func (e *DeductionEngine) resolveRequirements(ctx context.Context, item TransactionItem) ([]domain.IngredientRequirement, error) {
	if e.resolver != nil {
		requirements, err := e.resolver.Resolve(ctx, item.StoreID, item.ProductName)
		if err != nil {
			return nil, err
		}
		if len(requirements) > 0 {
			return requirements, nil
		}
	}
	return e.recipes.GetIngredientsForProduct(ctx, item.StoreID, item.ProductName)
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/crofflehub/settlement/internal/core/domain"
)

var ErrStockNotFound = errors.New("stock record not found")

// MySQLAdapter implements the inventory store, recipe store and audit
// sink over four tables: inventory_stock, recipe_ingredients,
// mixmatch_deduction_rules and the append-only inventory_movements.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetStock(ctx context.Context, stockID string) (decimal.Decimal, error) {
	var raw string
	err := m.db.QueryRowContext(ctx, `
		SELECT stock_quantity FROM inventory_stock WHERE id = ?`, stockID,
	).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrStockNotFound, stockID)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query stock: %w", err)
	}

	quantity, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stock quantity %q: %w", raw, err)
	}
	return quantity, nil
}

func (m *MySQLAdapter) SetStock(ctx context.Context, stockID string, quantity decimal.Decimal) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory_stock
		SET stock_quantity = ?, updated_at = NOW()
		WHERE id = ?`,
		quantity.String(), stockID,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrStockNotFound, stockID)
	}

	return nil
}

func (m *MySQLAdapter) GetIngredientsForProduct(ctx context.Context, storeID, productName string) ([]domain.IngredientRequirement, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT ingredient_name, quantity, inventory_stock_id, category
		FROM recipe_ingredients
		WHERE store_id = ? AND product_name = ?`,
		storeID, productName,
	)
	if err != nil {
		return nil, fmt.Errorf("query recipe ingredients: %w", err)
	}
	defer rows.Close()

	return scanRequirements(rows)
}

func (m *MySQLAdapter) GetDeductionRules(ctx context.Context, storeID, productName string) ([]domain.IngredientRequirement, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT ingredient_name, quantity, inventory_stock_id, category
		FROM mixmatch_deduction_rules
		WHERE store_id = ? AND product_name = ?`,
		storeID, productName,
	)
	if err != nil {
		return nil, fmt.Errorf("query deduction rules: %w", err)
	}
	defer rows.Close()

	return scanRequirements(rows)
}

func (m *MySQLAdapter) Append(ctx context.Context, record domain.AuditRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventory_movements
			(id, inventory_stock_id, quantity_change, previous_quantity,
			 new_quantity, reference_transaction_id, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.InventoryStockID,
		record.QuantityChange.String(), record.PreviousQuantity.String(),
		record.NewQuantity.String(), record.ReferenceTransactionID,
		record.Note, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

func scanRequirements(rows *sql.Rows) ([]domain.IngredientRequirement, error) {
	var requirements []domain.IngredientRequirement
	for rows.Next() {
		var (
			req      domain.IngredientRequirement
			quantity string
			category string
		)
		if err := rows.Scan(&req.IngredientName, &quantity, &req.InventoryStockID, &category); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}

		parsed, err := decimal.NewFromString(quantity)
		if err != nil {
			return nil, fmt.Errorf("parse quantity %q: %w", quantity, err)
		}
		req.QuantityPerUnit = parsed
		req.Category = domain.IngredientCategory(category)
		requirements = append(requirements, req)
	}

	return requirements, rows.Err()
}

// Stress tool for the deduction engine. It fires many concurrent
// single-item transactions at one stock row to make the read-then-write
// overdraw race observable: without cross-transaction locking, final
// stock can go below zero while every transaction reports success.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/crofflehub/settlement/internal/adapter/storage"
	"github.com/crofflehub/settlement/internal/config"
	"github.com/crofflehub/settlement/internal/core/service"
	"github.com/crofflehub/settlement/internal/obs"
)

const (
	storeID       = "stress-store"
	stockID       = "stress-stock"
	productName   = "Stress Croffle"
	initialStock  = 20
	totalRequests = 50
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := obs.NewLogger()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Seed one stock row and a one-ingredient recipe for it.
	mustExec(ctx, db, `DELETE FROM inventory_movements WHERE inventory_stock_id = ?`, stockID)
	mustExec(ctx, db, `DELETE FROM recipe_ingredients WHERE store_id = ?`, storeID)
	mustExec(ctx, db, `
		INSERT INTO inventory_stock (id, store_id, item, stock_quantity) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE stock_quantity = ?`,
		stockID, storeID, "stress croissant", initialStock, initialStock)
	mustExec(ctx, db, `
		INSERT INTO recipe_ingredients (store_id, product_name, ingredient_name, quantity, inventory_stock_id, category)
		VALUES (?, ?, ?, ?, ?, ?)`,
		storeID, productName, "stress croissant", 1, stockID, "base")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)
	resolver := service.NewMixMatchResolver(mysqlAdapter, redisAdapter, cfg.RuleCacheTTL, logger)
	engine := service.NewDeductionEngine(
		mysqlAdapter, mysqlAdapter, mysqlAdapter, resolver, redisAdapter, logger,
		service.DeductionConfig{Workers: cfg.DeductionWorkers},
	)

	var successCount, failCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result := engine.DeductTransactionItems(ctx, uuid.NewString(), []service.TransactionItem{
				{ProductName: productName, Quantity: 1, StoreID: storeID},
			})
			if result.Success {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	var finalStock string
	db.QueryRowContext(ctx, `SELECT stock_quantity FROM inventory_stock WHERE id = ?`, stockID).Scan(&finalStock)
	var movements int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_movements WHERE inventory_stock_id = ?`, stockID).Scan(&movements)

	fmt.Println("========== DEDUCTION STRESS RESULTS ==========")
	fmt.Printf("Initial Stock:     %d\n", initialStock)
	fmt.Printf("Total Requests:    %d\n", totalRequests)
	fmt.Printf("Successful:        %d\n", successCount.Load())
	fmt.Printf("Failed:            %d\n", failCount.Load())
	fmt.Printf("Final Stock:       %s\n", finalStock)
	fmt.Printf("Movement Records:  %d\n", movements)
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Println("==============================================")

	if int(successCount.Load()) > initialStock {
		fmt.Println("OVERDRAW: concurrent sufficiency checks raced past a stale read.")
		fmt.Println("This is the documented weak-consistency behavior, not a bug in the tool.")
	}
}

func mustExec(ctx context.Context, db *sql.DB, query string, args ...interface{}) {
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		log.Fatalf("setup failed: %v", err)
	}
}

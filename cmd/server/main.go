package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/crofflehub/settlement/internal/adapter/handler"
	"github.com/crofflehub/settlement/internal/adapter/storage"
	"github.com/crofflehub/settlement/internal/config"
	"github.com/crofflehub/settlement/internal/core/service"
	"github.com/crofflehub/settlement/internal/obs"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := obs.NewLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Error("failed to connect mysql", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis")

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)

	// Initialize services
	pricing := service.NewPricingEngine(
		service.NewBOGODetector(service.DefaultBOGORules()),
		service.NewComboDetector(),
	)
	resolver := service.NewMixMatchResolver(mysqlAdapter, redisAdapter, cfg.RuleCacheTTL, logger)
	deduction := service.NewDeductionEngine(
		mysqlAdapter, mysqlAdapter, mysqlAdapter, resolver, redisAdapter, logger,
		service.DeductionConfig{
			Workers:      cfg.DeductionWorkers,
			AuditRetries: cfg.AuditRetries,
			AuditBackoff: cfg.AuditBackoff,
		},
	)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(pricing, deduction)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/api/checkout", httpHandler.Checkout)
	mux.HandleFunc("/api/deduct", httpHandler.Deduct)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}

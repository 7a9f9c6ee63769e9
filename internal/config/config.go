// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, the backing
// stores and the deduction engine.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	MySQLDSN  string
	RedisAddr string

	DeductionWorkers int
	AuditRetries     int
	AuditBackoff     time.Duration
	RuleCacheTTL     time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:  durenvs("SHUTDOWN_TIMEOUT", 5),
		MySQLDSN:         getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/settlement?parseTime=true"),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		DeductionWorkers: atoienv("DEDUCTION_WORKERS", 8),
		AuditRetries:     atoienv("AUDIT_RETRIES", 2),
		AuditBackoff:     durenvms("AUDIT_BACKOFF_MS", 50),
		RuleCacheTTL:     durenvs("RULE_CACHE_TTL", 300),
	}
}

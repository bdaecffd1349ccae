package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	AuthSecret string
	TokenTTL   time.Duration

	GuestCartTTL       time.Duration
	SessionIdleTimeout time.Duration
	CartSignInPolicy   string

	FreeShippingThreshold float64
	ShippingFee           float64
	TaxRate               float64

	ReconcileInterval time.Duration
	ReconcileGrace    time.Duration
	ReconcileBatch    int
	WorkerPoolSize    int

	ShutdownTimeout time.Duration
	SeedCatalog     bool
	LogLevel        string
}

const (
	defaultRunAddress            = ":8080"
	defaultAuthSecret            = "change-me-in-production"
	defaultTokenTTL              = 24 * time.Hour
	defaultGuestCartTTL          = 30 * 24 * time.Hour
	defaultSessionIdleTimeout    = 2 * time.Hour
	defaultCartSignInPolicy      = "overwrite"
	defaultFreeShippingThreshold = 500
	defaultShippingFee           = 50
	defaultTaxRate               = 0.18
	defaultReconcileInterval     = time.Minute
	defaultReconcileGrace        = 5 * time.Minute
	defaultReconcileBatch        = 32
	defaultWorkerPoolSize        = 2
	defaultShutdownTimeout       = 10 * time.Second
	defaultLogLevel              = "info"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		RedisAddress:          getString(lookup, "REDIS_ADDRESS", ""),
		RedisPassword:         getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:               getInt(lookup, "REDIS_DB", 0),
		AuthSecret:            getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		TokenTTL:              getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		GuestCartTTL:          getDuration(lookup, "GUEST_CART_TTL", defaultGuestCartTTL),
		SessionIdleTimeout:    getDuration(lookup, "SESSION_IDLE_TIMEOUT", defaultSessionIdleTimeout),
		CartSignInPolicy:      getString(lookup, "CART_SIGNIN_POLICY", defaultCartSignInPolicy),
		FreeShippingThreshold: getFloat(lookup, "FREE_SHIPPING_THRESHOLD", defaultFreeShippingThreshold),
		ShippingFee:           getFloat(lookup, "SHIPPING_FEE", defaultShippingFee),
		TaxRate:               getFloat(lookup, "TAX_RATE", defaultTaxRate),
		ReconcileInterval:     getDuration(lookup, "RECONCILE_INTERVAL", defaultReconcileInterval),
		ReconcileGrace:        getDuration(lookup, "RECONCILE_GRACE", defaultReconcileGrace),
		ReconcileBatch:        getInt(lookup, "RECONCILE_BATCH", defaultReconcileBatch),
		WorkerPoolSize:        getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		SeedCatalog:           getBool(lookup, "SEED_CATALOG", false),
		LogLevel:              getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("petshop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		reconcileIntervalStr = cfg.ReconcileInterval.String()
		reconcileGraceStr    = cfg.ReconcileGrace.String()
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
		tokenTTLStr          = cfg.TokenTTL.String()
		guestCartTTLStr      = cfg.GuestCartTTL.String()
		sessionIdleStr       = cfg.SessionIdleTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for guest cart persistence")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database number")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued auth tokens")
	fs.StringVar(&guestCartTTLStr, "guest-cart-ttl", guestCartTTLStr, "Lifetime of persisted guest carts")
	fs.StringVar(&sessionIdleStr, "session-idle", sessionIdleStr, "Idle time after which a visitor session is dropped")
	fs.Float64Var(&cfg.FreeShippingThreshold, "free-shipping", cfg.FreeShippingThreshold, "Subtotal above which shipping is free")
	fs.Float64Var(&cfg.ShippingFee, "shipping-fee", cfg.ShippingFee, "Flat shipping fee")
	fs.Float64Var(&cfg.TaxRate, "tax-rate", cfg.TaxRate, "Tax rate applied to the subtotal")
	fs.StringVar(&cfg.CartSignInPolicy, "cart-policy", cfg.CartSignInPolicy, "Guest cart handling at sign-in: overwrite or merge")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconcile workers")
	fs.StringVar(&reconcileIntervalStr, "reconcile-interval", reconcileIntervalStr, "Interval between incomplete order scans")
	fs.StringVar(&reconcileGraceStr, "reconcile-grace", reconcileGraceStr, "Age after which an incomplete order is repaired")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.ReconcileBatch, "reconcile-batch", cfg.ReconcileBatch, "Maximum orders per reconcile scan")
	fs.BoolVar(&cfg.SeedCatalog, "seed", cfg.SeedCatalog, "Seed the product catalog on start when empty")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ReconcileInterval, err = time.ParseDuration(reconcileIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if cfg.ReconcileGrace, err = time.ParseDuration(reconcileGraceStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile grace: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.GuestCartTTL, err = time.ParseDuration(guestCartTTLStr); err != nil {
		return nil, fmt.Errorf("invalid guest cart ttl: %w", err)
	}

	if cfg.SessionIdleTimeout, err = time.ParseDuration(sessionIdleStr); err != nil {
		return nil, fmt.Errorf("invalid session idle timeout: %w", err)
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ReconcileBatch <= 0 {
		cfg.ReconcileBatch = defaultReconcileBatch
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}

	if cfg.ReconcileGrace <= 0 {
		cfg.ReconcileGrace = defaultReconcileGrace
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.FreeShippingThreshold < 0 || cfg.ShippingFee < 0 || cfg.TaxRate < 0 {
		return nil, fmt.Errorf("pricing values must not be negative")
	}

	switch cfg.CartSignInPolicy {
	case "overwrite", "merge":
	default:
		return nil, fmt.Errorf("unknown cart sign-in policy %q", cfg.CartSignInPolicy)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

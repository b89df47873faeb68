// Package config loads runtime settings from the environment.
//
// Every setting has a usable default, so a bare `cartflow serve` works out of
// the box. Values come from CARTFLOW_* environment variables, typically via a
// .env file loaded by the CLI.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config is the full runtime configuration of the server.
type Config struct {
	// HTTPAddr is the listen address of the HTTP API.
	HTTPAddr string

	// DatabasePath is the SQLite journal file. Empty selects the in-memory
	// journal, which loses history on restart.
	DatabasePath string

	// CatalogPath is an optional YAML product catalog. Empty selects the
	// built-in coffee menu.
	CatalogPath string

	// Cart deadlines.
	ReminderTimeout      time.Duration
	CancelTimeout        time.Duration
	MaxProcessingTimeout time.Duration

	// Checkout retry policy.
	CheckoutAttempts      int
	CheckoutRetryInterval time.Duration
	CheckoutTimeout       time.Duration

	// Behavior toggles.
	AllowEditsDuringCheckout bool
	AllowNonPositiveQuantity bool
	MergeDuplicateLines      bool
}

// Load reads the configuration from the environment, falling back to defaults
// for unset or unparsable values.
func Load() Config {
	return Config{
		HTTPAddr:     getenv("CARTFLOW_HTTP_ADDR", ":8080"),
		DatabasePath: getenv("CARTFLOW_DB_PATH", "cartflow.db"),
		CatalogPath:  getenv("CARTFLOW_CATALOG", ""),

		ReminderTimeout:      getdur("CARTFLOW_REMINDER_TIMEOUT", 15*time.Second),
		CancelTimeout:        getdur("CARTFLOW_CANCEL_TIMEOUT", 30*time.Second),
		MaxProcessingTimeout: getdur("CARTFLOW_MAX_PROCESSING_TIMEOUT", 5*time.Minute),

		CheckoutAttempts:      getint("CARTFLOW_CHECKOUT_ATTEMPTS", 2),
		CheckoutRetryInterval: getdur("CARTFLOW_CHECKOUT_RETRY_INTERVAL", 2*time.Second),
		CheckoutTimeout:       getdur("CARTFLOW_CHECKOUT_TIMEOUT", time.Minute),

		AllowEditsDuringCheckout: getbool("CARTFLOW_ALLOW_EDITS_DURING_CHECKOUT", false),
		AllowNonPositiveQuantity: getbool("CARTFLOW_ALLOW_NON_POSITIVE_QUANTITY", false),
		MergeDuplicateLines:      getbool("CARTFLOW_MERGE_DUPLICATE_LINES", false),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "cartflow.db", cfg.DatabasePath)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, 15*time.Second, cfg.ReminderTimeout)
	assert.Equal(t, 30*time.Second, cfg.CancelTimeout)
	assert.Equal(t, 5*time.Minute, cfg.MaxProcessingTimeout)
	assert.Equal(t, 2, cfg.CheckoutAttempts)
	assert.Equal(t, 2*time.Second, cfg.CheckoutRetryInterval)
	assert.Equal(t, time.Minute, cfg.CheckoutTimeout)
	assert.False(t, cfg.AllowEditsDuringCheckout)
	assert.False(t, cfg.MergeDuplicateLines)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CARTFLOW_HTTP_ADDR", "127.0.0.1:9090")
	t.Setenv("CARTFLOW_DB_PATH", "/tmp/carts.db")
	t.Setenv("CARTFLOW_REMINDER_TIMEOUT", "100ms")
	t.Setenv("CARTFLOW_CHECKOUT_ATTEMPTS", "5")
	t.Setenv("CARTFLOW_MERGE_DUPLICATE_LINES", "true")

	cfg := Load()

	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
	assert.Equal(t, "/tmp/carts.db", cfg.DatabasePath)
	assert.Equal(t, 100*time.Millisecond, cfg.ReminderTimeout)
	assert.Equal(t, 5, cfg.CheckoutAttempts)
	assert.True(t, cfg.MergeDuplicateLines)
}

func TestLoadFallsBackOnBadValues(t *testing.T) {
	t.Setenv("CARTFLOW_REMINDER_TIMEOUT", "soon")
	t.Setenv("CARTFLOW_CHECKOUT_ATTEMPTS", "several")
	t.Setenv("CARTFLOW_MERGE_DUPLICATE_LINES", "maybe")

	cfg := Load()

	assert.Equal(t, 15*time.Second, cfg.ReminderTimeout)
	assert.Equal(t, 2, cfg.CheckoutAttempts)
	assert.False(t, cfg.MergeDuplicateLines)
}

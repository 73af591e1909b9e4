package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTargetYear(t *testing.T) {
	assert.Equal(t, 2026, TargetYear(time.Date(2026, time.September, 30, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2027, TargetYear(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2027, TargetYear(time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2026, TargetYear(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTOSAVE_DELAY", "500ms")
	t.Setenv("VENDOR_MAX_RETRIES", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.AutosaveDelay)
	assert.Equal(t, 3, cfg.VendorMaxRetries)
	assert.Equal(t, "https://api.lemonsqueezy.com/v1", cfg.LemonSqueezyAPIBase)
}

func TestDevPreviewOnlyInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	assert.False(t, Load().DevPreview)

	t.Setenv("APP_ENV", "development")
	assert.True(t, Load().DevPreview)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OTP_VALIDITY_WINDOW", "")
	t.Setenv("DELIVERY_MODE", "")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.OTPValidityWindow)
	assert.Equal(t, 5*time.Minute, cfg.OTPSweepInterval)
	assert.Equal(t, "log", cfg.DeliveryMode)
	assert.Equal(t, "otps", cfg.DynamoTables.OTPs)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OTP_VALIDITY_WINDOW", "90s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_DEV", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.app,https://b.app")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,172.16.0.5")

	cfg := Load()

	assert.Equal(t, 90*time.Second, cfg.OTPValidityWindow)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.LogDev)
	assert.Equal(t, []string{"https://a.app", "https://b.app"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.5"}, cfg.TrustedProxies)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("OTP_SWEEP_INTERVAL", "soon")
	t.Setenv("REDIS_DB", "x")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.OTPSweepInterval)
	assert.Equal(t, 0, cfg.RedisDB)
}

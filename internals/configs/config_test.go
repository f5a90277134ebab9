package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("WA_CONCURRENCY", "")
	t.Setenv("PAYMENT_GATEWAY_EXPIRY", "")

	cfg := FromEnv()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "supabase", cfg.StorageDriver)
	assert.Equal(t, 4, cfg.WAConcurrency)
	assert.Equal(t, 24*time.Hour, cfg.PaymentGatewayExpiry)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_DRIVER", "OSS")
	t.Setenv("MIDTRANS_USE_PROD", "yes")
	t.Setenv("WA_CONCURRENCY", "9")
	t.Setenv("PAYMENT_GATEWAY_EXPIRY", "90m")
	t.Setenv("CORS_ORIGINS", "https://a.test, https://b.test,,")
	t.Setenv("SUPABASE_PROJECT_URL", "https://x.supabase.co/")

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "oss", cfg.StorageDriver)
	assert.True(t, cfg.MidtransUseProd)
	assert.Equal(t, 9, cfg.WAConcurrency)
	assert.Equal(t, 90*time.Minute, cfg.PaymentGatewayExpiry)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CorsOrigins)
	assert.Equal(t, "https://x.supabase.co", cfg.SupabaseProjectURL)
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	t.Setenv("SOME_BOOL", "maybe")
	t.Setenv("SOME_DUR", "-5s")

	assert.Equal(t, 7, GetEnvInt("SOME_INT", 7))
	assert.False(t, GetEnvBool("SOME_BOOL", false))
	assert.Equal(t, time.Second, GetEnvDuration("SOME_DUR", time.Second))
	assert.Equal(t, "dflt", GetEnv("DOES_NOT_EXIST_PPDB", "dflt"))
}

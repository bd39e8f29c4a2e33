package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://backend-sms-chi.vercel.app", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, int64(8<<20), cfg.Backend.MaxResponseBytes)
	assert.Equal(t, "portal_session", cfg.Session.CookieName)
	assert.Equal(t, 720*time.Hour, cfg.Session.DurableTTL)
	assert.Equal(t, "./exports", cfg.Reports.StorageDir)
	assert.False(t, cfg.Redis.Enabled)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("BACKEND_BASE_URL", "http://backend.local/")
	v.Set("BACKEND_TIMEOUT", "not-a-duration")
	v.Set("BACKEND_MAX_RESPONSE_BYTES", "1048576")
	v.Set("ALLOWED_ORIGINS", " http://a.test/ , ,http://b.test")
	v.Set("SESSION_DURABLE_TTL", "48h")

	cfg := fromViper(v)
	assert.Equal(t, "http://backend.local", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, int64(1<<20), cfg.Backend.MaxResponseBytes)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 48*time.Hour, cfg.Session.DurableTTL)
}

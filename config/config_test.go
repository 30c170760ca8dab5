package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("PIPELINE_TIMEOUT", "")
	t.Setenv("RECEIPT_NAMESPACE", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.PublicURL)
	assert.Equal(t, 20*time.Second, cfg.Pipeline.Timeout)
	assert.Equal(t, "gym-receipts", cfg.Storage.ReceiptNamespace)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BACKEND_URL", "https://gym.example.com")
	t.Setenv("PIPELINE_TIMEOUT", "5s")
	t.Setenv("S3_USE_PATH_STYLE", "false")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://gym.example.com", cfg.Server.PublicURL)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.Timeout)
	assert.False(t, cfg.Storage.UsePathStyle)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
}

func TestChannelsEnabled(t *testing.T) {
	assert.False(t, WhatsAppConfig{Token: "t"}.Enabled())
	assert.True(t, WhatsAppConfig{Token: "t", PhoneNumberID: "1"}.Enabled())
	assert.False(t, SMTPConfig{Host: "smtp"}.Enabled())
	assert.True(t, SMTPConfig{Host: "smtp", User: "u"}.Enabled())
}

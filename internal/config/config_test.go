package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTHORIZE_NET_LOGIN_ID", "")
	t.Setenv("AUTHORIZE_NET_TRANSACTION_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "print-order-service", cfg.ServiceName)
	assert.Equal(t, "print_orders", cfg.MongoDBName)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.Gateway.Configured())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MONGO_DB_NAME", "orders_test")
	t.Setenv("AUTHORIZE_NET_LOGIN_ID", "login")
	t.Setenv("AUTHORIZE_NET_TRANSACTION_KEY", "key")
	t.Setenv("PAYMENT_TIMEOUT", "5s")
	t.Setenv("SMTP_USER", "shop@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "orders_test", cfg.MongoDBName)
	assert.True(t, cfg.Gateway.Configured())
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "shop@example.com", cfg.Mail.Sender())
}

func TestGatewayConfiguredIgnoresWhitespace(t *testing.T) {
	assert.False(t, GatewayConfig{LoginID: "  ", TransactionKey: "key"}.Configured())
	assert.True(t, GatewayConfig{LoginID: "id", TransactionKey: "key"}.Configured())
}

func TestMailSenderPrefersFrom(t *testing.T) {
	m := MailConfig{User: "smtp@example.com", From: "orders@example.com"}
	assert.Equal(t, "orders@example.com", m.Sender())
}

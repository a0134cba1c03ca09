package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextFallsBackToGlobal(t *testing.T) {
	assert.Same(t, zap.L(), FromContext(context.Background()))
}

func TestContextWithLoggerRoundTrip(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx := ContextWithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hello", logs.All()[0].Message)
}

func TestContextWithNilLoggerKeepsContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, ContextWithLogger(ctx, nil))
}

func TestNewLoggerWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "service.log")
	t.Setenv("LOG_FILE", path)

	logger, err := NewLogger("print-order-service", "test")
	require.NoError(t, err)
	logger.Info("written")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written"`)
	assert.Contains(t, string(data), `"service":"print-order-service"`)
	assert.Contains(t, string(data), `"level":"info"`)
}

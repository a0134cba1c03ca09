package repository

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectMongoDBReleasesClientWhenPingFails(t *testing.T) {
	before := runtime.NumGoroutine()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	db, err := ConnectMongoDB(ctx, "mongodb://127.0.0.1:1/?directConnection=true", "testdb")
	require.Error(t, err)
	assert.Nil(t, db)
	assert.ErrorContains(t, err, "failed to ping MongoDB")
	assert.NotContains(t, err.Error(), "disconnect:")

	// Topology monitors stop once the client is disconnected.
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 5*time.Second, 50*time.Millisecond)
}

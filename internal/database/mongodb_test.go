package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIndexSpecs_UniqueKeys(t *testing.T) {
	specs := IndexSpecs()
	for _, col := range []string{Admins, Templates, Subscribers, ResourceCategories} {
		models, ok := specs[col]
		require.True(t, ok, col)
		require.NotEmpty(t, models)
		require.NotNil(t, models[0].Options)
		require.NotNil(t, models[0].Options.Unique)
		require.True(t, *models[0].Options.Unique, col)
	}
}

func TestConnectWithRetry_GivesUpOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ConnectWithRetry(ctx, "mongodb://127.0.0.1:1", 50*time.Millisecond, 3, time.Millisecond)
	require.Error(t, err)
}

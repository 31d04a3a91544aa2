package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnect_EmptyAddrDisablesRedis(t *testing.T) {
	client, err := Connect(context.Background(), "", "", 0, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestConnect_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client, err := Connect(ctx, "127.0.0.1:1", "", 0, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, client)
}

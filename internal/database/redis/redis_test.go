package redis

import (
	"context"
	"testing"

	"github.com/PrathushaR/ithotlist-api/internal/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))
}

func TestConnect_DisabledWithoutAddress(t *testing.T) {
	client, err := Connect(context.Background(), config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), config.RedisConfig{Address: addr})
	assert.Error(t, err)
}

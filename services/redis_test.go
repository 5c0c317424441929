package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisService_DisabledWithoutAddress(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	svc := &RedisService{}
	svc.initRedisClient()
	assert.Nil(t, svc.GetClient(), "no address configured, no client built")

	require.NoError(t, svc.Start(), "a disabled cache must not block boot")
}

func TestRedisService_NilClientGuards(t *testing.T) {
	svc := &RedisService{}
	ctx := context.Background()

	found, err := svc.GetJSON(ctx, "tracks:all", &struct{}{})
	assert.Error(t, err)
	assert.False(t, found)

	assert.Error(t, svc.Set(ctx, "tracks:all", "x", time.Minute))
	assert.Error(t, svc.Delete(ctx, "tracks:all"))
}

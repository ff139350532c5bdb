package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	_, err = c.Get(ctx, "missing")
	require.Error(t, err)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Millisecond))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	time.Sleep(20 * time.Millisecond)

	_, err = c.Get(ctx, "k")
	require.Error(t, err)

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCache_Delete(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	require.Error(t, err)
}

func TestCache_Incr(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Incr(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCache_IncrTTLSetOnFirstIncrement(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	_, err := c.Incr(ctx, "counter", 10*time.Millisecond)
	require.NoError(t, err)
	_, err = c.Incr(ctx, "counter", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	// окно истекло, счётчик начинается заново
	got, err := c.Incr(ctx, "counter", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

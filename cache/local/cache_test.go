package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCache_SetGetDel(t *testing.T) {
	c := NewCache(Config{})
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Del(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalCache_Expiry(t *testing.T) {
	c := NewCache(Config{GCInterval: 10 * time.Millisecond})
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", "v", 20*time.Millisecond))
	ok, _ := c.Exists(ctx, "short")
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		ok, _ := c.Exists(ctx, "short")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestLocalCache_CloseTwice(t *testing.T) {
	c := NewCache(Config{})
	c.Close()
	assert.NotPanics(t, c.Close)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	acquired, err := store.MarkProcessed(ctx, "provision:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	// Second attempt while held must fail
	acquired, err = store.MarkProcessed(ctx, "provision:abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	// A different key is independent
	acquired, err = store.MarkProcessed(ctx, "provision:def", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	held, err := store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.False(t, held)

	acquired, err := store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "k", time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Release(ctx, "k"))

	acquired, err := store.MarkProcessed(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

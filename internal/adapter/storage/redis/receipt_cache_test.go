package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptCache_MarkAndSeen(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewReceiptCache(client)
	ctx := context.Background()

	id := "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12"

	// Seen before mark => false
	seen, err := cache.Seen(ctx, id)
	assert.NoError(t, err)
	assert.False(t, seen)

	err = cache.Mark(ctx, id, 24*time.Hour)
	require.NoError(t, err)

	seen, err = cache.Seen(ctx, id)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestReceiptCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewReceiptCache(client)
	ctx := context.Background()

	id := "deadbeef"

	err := cache.Mark(ctx, id, 1*time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	seen, err := cache.Seen(ctx, id)
	assert.NoError(t, err)
	assert.False(t, seen, "expired receipt id should not be seen")
}

func TestReceiptCache_DistinctIDs(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewReceiptCache(client)
	ctx := context.Background()

	err := cache.Mark(ctx, "receipt-a", 1*time.Hour)
	require.NoError(t, err)

	seen, err := cache.Seen(ctx, "receipt-b")
	require.NoError(t, err)
	assert.False(t, seen, "marking one id must not mark another")
}

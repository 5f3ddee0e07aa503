package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return mr
}

func TestSetHelpers(t *testing.T) {
	setup(t)
	ctx := context.Background()

	require.NoError(t, AddToSet(ctx, "dirty", "1", "2"))
	require.NoError(t, AddToSet(ctx, "dirty", "2"))

	members, err := GetSet(ctx, "dirty")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, members)

	ok, err := Exists(ctx, "dirty")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, Rename(ctx, "dirty", "processing"))
	ok, err = Exists(ctx, "dirty")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, DeleteKey(ctx, "processing"))
	members, err = GetSet(ctx, "processing")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestMergeSet(t *testing.T) {
	setup(t)
	ctx := context.Background()

	require.NoError(t, AddToSet(ctx, "src", "1", "3"))
	require.NoError(t, AddToSet(ctx, "dst", "2", "3"))
	require.NoError(t, MergeSet(ctx, "src", "dst"))

	members, err := GetSet(ctx, "dst")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, members)

	ok, err := Exists(ctx, "src")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRenameMissingKey(t *testing.T) {
	setup(t)
	assert.Error(t, Rename(context.Background(), "absent", "other"))
}

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(mr.Addr())
	require.NoError(t, err)
	SetClient(c)
	t.Cleanup(func() {
		SetClient(nil)
		_ = c.Close()
	})
	return mr
}

func TestAside_FetchesOnceThenServesFromCache(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			fetches++
			*dest = cachedPost{ID: 1, Title: "hello"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, Aside(ctx, PostKey(1), &first, PostTTL, fetch(&first)))
	assert.Equal(t, "hello", first.Title)
	assert.True(t, mr.Exists("post:1"))

	var second cachedPost
	require.NoError(t, Aside(ctx, PostKey(1), &second, PostTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetches)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := withMiniredis(t)
	boom := errors.New("boom")

	var dest cachedPost
	err := Aside(context.Background(), PostKey(2), &dest, PostTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("post:2"))
}

func TestAside_WithoutClientFallsThrough(t *testing.T) {
	SetClient(nil)
	var dest cachedPost
	err := Aside(context.Background(), PostKey(3), &dest, PostTTL, func() error {
		dest.ID = 3
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(3), dest.ID)
}

func TestAside_RedisDownDegradesToFetch(t *testing.T) {
	mr := withMiniredis(t)
	mr.Close()

	var dest cachedPost
	err := Aside(context.Background(), PostKey(4), &dest, PostTTL, func() error {
		dest.ID = 4
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(4), dest.ID)
}

func TestInvalidatePost(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set(PostKey(5), "{}"))
	require.NoError(t, mr.Set(ThreadKey(5), "{}"))

	InvalidatePost(context.Background(), 5)
	assert.False(t, mr.Exists("post:5"))
	assert.False(t, mr.Exists("post:5:thread"))
}

func TestNewClient_ParsesURL(t *testing.T) {
	c, err := NewClient("redis://localhost:6380/2")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	assert.Equal(t, "localhost:6380", c.Options().Addr)
	assert.Equal(t, 2, c.Options().DB)

	_, err = NewClient("redis://%zz")
	assert.Error(t, err)
	var _ *redis.Client = c
}

package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

type decision struct {
	UserID  string `json:"user_id"`
	Allowed bool   `json:"allowed"`
}

func TestGetOrLoadJSONCaches(t *testing.T) {
	c, mr := newCache(t)
	c.Prefix = "t:"
	ctx := context.Background()
	var calls int32
	load := func(ctx context.Context) (*decision, error) {
		atomic.AddInt32(&calls, 1)
		return &decision{UserID: "u1", Allowed: true}, nil
	}

	d, err := GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "u1", d.UserID)

	d, err = GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists("t:k"))

	mr.FastForward(2 * time.Minute)
	_, err = GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := GetOrLoadJSON(c, ctx, "k", time.Minute, func(ctx context.Context) (*decision, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoadWithoutRedis(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	b, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("v"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "v", string(b))
}

func TestDelete(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, c.Delete(ctx, "a"))
	assert.False(t, mr.Exists("a"))
	assert.NoError(t, c.Delete(ctx))
}

func TestGetOrLoadJSONDropsCorruptEntry(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("k", "{not json"))

	_, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(ctx context.Context) (*decision, error) {
		return &decision{UserID: "u1"}, nil
	})
	require.Error(t, err)
	assert.False(t, mr.Exists("k"))

	d, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(ctx context.Context) (*decision, error) {
		return &decision{UserID: "u1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", d.UserID)
}

package store

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cetmatch/core"
)

// exerciseStore 对任意 core.Store 实现跑同一组读写用例。
func exerciseStore(t *testing.T, s core.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "cetmatch:test:missing")
	assert.True(t, core.IsStoreNotFound(err))

	require.NoError(t, s.Set(ctx, "cetmatch:test:a", []byte("1")))
	require.NoError(t, s.Set(ctx, "cetmatch:test:a", []byte("2")))

	v, err := s.Get(ctx, "cetmatch:test:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)

	require.NoError(t, s.Delete(ctx, "cetmatch:test:a"))
	_, err = s.Get(ctx, "cetmatch:test:a")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(0, time.Minute)
	defer s.Close()
	assert.Equal(t, "memory", s.Name())
	exerciseStore(t, s)
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore(10, 20*time.Millisecond)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := s.Get(ctx, "k")
		return core.IsStoreNotFound(err)
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s := NewMemoryStore(2, 0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))
	_, err := s.Get(ctx, "a") // a 变为最近使用
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "c", []byte("3")))

	assert.Equal(t, 2, s.Len())
	_, err = s.Get(ctx, "b")
	assert.True(t, core.IsStoreNotFound(err))
	for _, k := range []string{"a", "c"} {
		_, err := s.Get(ctx, k)
		assert.NoError(t, err, k)
	}
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	s := NewMemoryStore(0, 0)
	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.Equal(t, 0, s.Len())
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), Options{Backend: "memory", MaxEntries: 5})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "memory", s.Name())

	_, err = New(context.Background(), Options{Backend: "etcd"})
	assert.Error(t, err)

	_, err = New(context.Background(), Options{Backend: "redis", Addr: " , "})
	assert.Error(t, err)
}

func TestSplitAddrs(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, splitAddrs(" a:1, ,b:2 "))
	assert.Empty(t, splitAddrs(""))
}

// 设置 CETMATCH_TEST_REDIS_ADDR 后针对真实 Redis 运行。
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("CETMATCH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CETMATCH_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, Options{Addr: addr, TTL: time.Minute})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "redis", s.Name())
	exerciseStore(t, s)

	key := "cetmatch:test:ttl:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	require.NoError(t, s.Set(ctx, key, []byte("v")))
	defer s.Delete(ctx, key)
	ttl, err := s.client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

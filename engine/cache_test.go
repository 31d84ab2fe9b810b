package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/store"
)

// countingMatcher 记录 Explain 调用次数。
type countingMatcher struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
}

func (m *countingMatcher) Match(ctx context.Context, q core.Query) ([]string, error) {
	out, err := m.Explain(ctx, q)
	if err != nil {
		return nil, err
	}
	return out.Colleges, nil
}

func (m *countingMatcher) Explain(ctx context.Context, q core.Query) (*Outcome, error) {
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &Outcome{Colleges: []string{"COEP", q.Branch}, Path: "admitted"}, nil
}

func (m *countingMatcher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestCachedMatcher_HitsStore(t *testing.T) {
	s := store.NewMemoryStore(0, time.Minute)
	defer s.Close()
	next := &countingMatcher{}
	c := NewCachedMatcher(next, s)

	q := query(96, "CS", "OPEN", "Male", 2)
	first, err := c.Match(context.Background(), q)
	require.NoError(t, err)

	// 归一化后相同的查询命中同一条缓存
	q2 := query(96, " cs ", "open", "MALE", 2)
	out, err := c.Explain(context.Background(), q2)
	require.NoError(t, err)
	assert.Equal(t, first, out.Colleges)
	assert.Equal(t, "admitted", out.Path)
	assert.Equal(t, 1, next.count())

	_, err = s.Get(context.Background(), DefaultCachePrefix+q.CacheKey())
	assert.NoError(t, err)
}

func TestCachedMatcher_ErrorsNotCached(t *testing.T) {
	s := store.NewMemoryStore(0, time.Minute)
	defer s.Close()
	next := &countingMatcher{err: core.ErrEmptyPool}
	c := NewCachedMatcher(next, s)

	q := query(96, "CS", "OPEN", "Male", 2)
	for i := 0; i < 2; i++ {
		_, err := c.Match(context.Background(), q)
		assert.True(t, core.IsEmptyPool(err))
	}
	assert.Equal(t, 2, next.count())
}

func TestCachedMatcher_InvalidQuery(t *testing.T) {
	s := store.NewMemoryStore(0, time.Minute)
	defer s.Close()
	next := &countingMatcher{}
	c := NewCachedMatcher(next, s)

	_, err := c.Match(context.Background(), query(96, "", "OPEN", "Male", 2))
	assert.True(t, core.IsInvalidInput(err))
	assert.Equal(t, 0, next.count())
}

func TestCachedMatcher_CollapsesConcurrentQueries(t *testing.T) {
	s := store.NewMemoryStore(0, time.Minute)
	defer s.Close()
	next := &countingMatcher{delay: 50 * time.Millisecond}
	c := NewCachedMatcher(next, s, WithCachePrefix("test:"))

	q := query(96, "CS", "OPEN", "Male", 2)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Match(context.Background(), q)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, next.count())
}

func TestCachedMatcher_CancelDoesNotFailOtherCallers(t *testing.T) {
	s := store.NewMemoryStore(0, time.Minute)
	defer s.Close()
	next := &countingMatcher{delay: 200 * time.Millisecond}
	c := NewCachedMatcher(next, s)
	q := query(96, "CS", "OPEN", "Male", 2)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Match(ctxA, q)
		errA <- err
	}()

	// B 在 A 的计算进行中加入同一个 key
	time.Sleep(10 * time.Millisecond)
	type result struct {
		got []string
		err error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := c.Match(context.Background(), q)
		resB <- result{got, err}
	}()

	time.Sleep(10 * time.Millisecond)
	cancelA()

	err := <-errA
	require.Error(t, err)
	assert.True(t, core.IsMatchingFailure(err))
	assert.ErrorIs(t, err, context.Canceled)

	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, []string{"COEP", "CS"}, b.got)
	assert.Equal(t, 1, next.count())

	// 被取消的调用方不影响缓存写入
	_, err = s.Get(context.Background(), DefaultCachePrefix+q.CacheKey())
	assert.NoError(t, err)
}

// brokenStore 模拟缓存后端不可用。
type brokenStore struct{ *store.MemoryStore }

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("conn refused")
}

func (brokenStore) Set(context.Context, string, []byte) error {
	return errors.New("conn refused")
}

func TestCachedMatcher_StoreFailureFallsThrough(t *testing.T) {
	ms := store.NewMemoryStore(0, time.Minute)
	defer ms.Close()
	next := &countingMatcher{}
	c := NewCachedMatcher(next, brokenStore{ms})

	got, err := c.Match(context.Background(), query(96, "CS", "OPEN", "Male", 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"COEP", "CS"}, got)
}

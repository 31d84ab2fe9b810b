package engine

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/cetmatch/core"
)

// DefaultCachePrefix 是缓存 key 前缀
const DefaultCachePrefix = "cetmatch:match:"

// CachedMatcher 用 core.Store 缓存匹配结果，过期与容量由 store 自身控制。
// 相同输入（归一化后）的结果是确定的，因此可以安全缓存；
// 并发的相同查询通过 singleflight 合并为一次计算，某个调用方取消不会影响其他调用方。
// 失败的查询不缓存；缓存读写失败只记录日志，不影响查询。
type CachedMatcher struct {
	next   Matcher
	store  core.Store
	prefix string
	group  singleflight.Group
	logger *zap.Logger
}

// CacheOption 配置 CachedMatcher
type CacheOption func(*CachedMatcher)

// WithCachePrefix 设置 key 前缀
func WithCachePrefix(prefix string) CacheOption {
	return func(c *CachedMatcher) { c.prefix = prefix }
}

// WithCacheLogger 设置日志
func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *CachedMatcher) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCachedMatcher(next Matcher, store core.Store, opts ...CacheOption) *CachedMatcher {
	c := &CachedMatcher{
		next:   next,
		store:  store,
		prefix: DefaultCachePrefix,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedMatcher) Match(ctx context.Context, q core.Query) ([]string, error) {
	out, err := c.Explain(ctx, q)
	if err != nil {
		return nil, err
	}
	return out.Colleges, nil
}

func (c *CachedMatcher) Explain(ctx context.Context, q core.Query) (*Outcome, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	key := c.prefix + q.CacheKey()

	if out, ok := c.lookup(ctx, key); ok {
		return out, nil
	}

	// 共享计算不随任何单个调用方取消；每个调用方只等待自己的 ctx
	ch := c.group.DoChan(key, func() (any, error) {
		out, err := c.next.Explain(context.WithoutCancel(ctx), q)
		if err != nil {
			return nil, err
		}
		c.save(context.WithoutCancel(ctx), key, out)
		return out, nil
	})
	select {
	case <-ctx.Done():
		return nil, core.NewMatchingFailure("cache", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Outcome), nil
	}
}

func (c *CachedMatcher) lookup(ctx context.Context, key string) (*Outcome, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			c.logger.Warn("cache get failed", zap.String("store", c.store.Name()), zap.Error(err))
		}
		return nil, false
	}
	var out Outcome
	if err := json.Unmarshal(data, &out); err != nil {
		c.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &out, true
}

func (c *CachedMatcher) save(ctx context.Context, key string, out *Outcome) {
	data, err := json.Marshal(out)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("cache set failed", zap.String("store", c.store.Name()), zap.Error(err))
	}
}

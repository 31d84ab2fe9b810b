// Package store 提供 core.Store 的实现，用于缓存匹配结果。
//
//	s, err := store.New(ctx, store.Options{Backend: "redis", Addr: "127.0.0.1:6379", TTL: 10 * time.Minute})
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/cetmatch/core"
)

// Options 描述要创建的存储后端。
type Options struct {
	Backend    string // memory / redis
	Addr       string // redis 地址，逗号分隔多个时使用集群模式
	Password   string
	DB         int
	TTL        time.Duration
	MaxEntries int // 仅 memory
}

// New 按 Backend 创建存储。
func New(ctx context.Context, opts Options) (core.Store, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryStore(opts.MaxEntries, opts.TTL), nil
	case "redis":
		return NewRedisStore(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

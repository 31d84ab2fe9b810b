package store

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/rushteam/cetmatch/core"
)

// DefaultMaxEntries 是内存缓存的默认容量
const DefaultMaxEntries = 10000

// MemoryStore 是进程内的有界 LRU 缓存，条目在 ttl 后过期，超出容量时淘汰最久未用的条目。
// 只适合单实例部署，重启后清空。
type MemoryStore struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryStore 创建内存缓存。maxEntries <= 0 时使用 DefaultMaxEntries，ttl <= 0 表示不过期。
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryStore{lru: expirable.NewLRU[string, []byte](maxEntries, nil, ttl)}
}

var _ core.Store = (*MemoryStore)(nil)

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.lru.Add(key, value)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

// Len 返回当前条目数（可能包含尚未清理的过期条目）
func (m *MemoryStore) Len() int { return m.lru.Len() }

func (m *MemoryStore) Close() error {
	m.lru.Purge()
	return nil
}

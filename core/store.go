package core

import "context"

// Store 是匹配结果缓存的存储接口。
// 过期策略由实现自己在构造时决定，调用方只做读写。
//
// 实现：store.MemoryStore（进程内 LRU）、store.RedisStore（多实例共享）
type Store interface {
	Name() string

	// Get 读取 key，不存在或已过期时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ErrStoreNotFound 表示 key 不存在
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleStore && domainErr.Code == ErrorCodeNotFound
}

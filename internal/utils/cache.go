package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// Cache 全局短期缓存（赛事聚合、热搜等）
var Cache *cache.Cache

// InitCache 初始化缓存
func InitCache() {
	// 默认过期时间5分钟，清理间隔10分钟
	Cache = cache.New(5*time.Minute, 10*time.Minute)
}

// CacheGet 获取缓存值，未初始化时视为未命中
func CacheGet(key string) (interface{}, bool) {
	if Cache == nil {
		return nil, false
	}
	return Cache.Get(key)
}

// CacheSet 设置缓存值
func CacheSet(key string, value interface{}, duration time.Duration) {
	if Cache == nil {
		return
	}
	Cache.Set(key, value, duration)
}

// cacheItem 包装实际的数据，增加过期时间
type cacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// TTLCache 带过期时间的 LRU 缓存
type TTLCache[T any] struct {
	storage *lru.Cache[string, cacheItem[T]]
	ttl     time.Duration
	now     func() time.Time
}

// NewTTLCache size 是最大缓存条数，ttl 是数据有效期
func NewTTLCache[T any](size int, ttl time.Duration) *TTLCache[T] {
	if size <= 0 {
		size = 1
	}
	// lru.New 是线程安全的，只在 size <= 0 时返回错误
	c, _ := lru.New[string, cacheItem[T]](size)
	return &TTLCache[T]{
		storage: c,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set 写入（LRU 中 Add 会自动处理更新）
func (c *TTLCache[T]) Set(key string, value T) {
	c.storage.Add(key, cacheItem[T]{
		Value:     value,
		ExpiredAt: c.now().Add(c.ttl),
	})
}

// Get 读取，过期条目会被顺手删除
func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return item.Value, true
}

// Clear 清空
func (c *TTLCache[T]) Clear() {
	c.storage.Purge()
}

// Len 当前条数
func (c *TTLCache[T]) Len() int {
	return c.storage.Len()
}

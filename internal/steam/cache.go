package steam

import (
	"encoding/json"
	"sync"
	"time"
)

// cacheEntry 单条缓存：抓取时间 + 原始JSON payload
type cacheEntry struct {
	fetchedAt time.Time
	payload   json.RawMessage
}

// Cache 进程内TTL响应缓存。只按时间过期，无容量上限、不持久化；
// 过期条目不主动清理，等同一指纹下次访问时整体覆盖
type Cache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time // 可注入时钟，测试用
}

// NewCache 创建缓存实例，TTL在构造时固定
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// GetOrFetch 命中且未过期时直接返回缓存payload（不发起网络请求）；
// 未命中或已过期时调用fetch，成功才写入缓存并返回。
// fetch失败时不写入也不覆盖旧条目，错误原样上抛，下次调用重试网络。
// 锁只保护map本身，不跨越fetch：并发下同一指纹可能重复抓取，
// 最后写入者生效（重复劳动但无数据损坏）
func (c *Cache) GetOrFetch(fingerprint string, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
	c.mu.Lock()
	entry, ok := c.entries[fingerprint]
	fresh := ok && c.now().Sub(entry.fetchedAt) < c.ttl
	c.mu.Unlock()

	if fresh {
		return entry.payload, nil
	}

	payload, err := fetch()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[fingerprint] = cacheEntry{fetchedAt: c.now(), payload: payload}
	c.mu.Unlock()
	return payload, nil
}

// Len 当前条目数（含已过期未覆盖的条目），仅用于观测
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

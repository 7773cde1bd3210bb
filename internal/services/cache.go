package services

import (
	"sync"
	"time"
)

type cacheEntry[T any] struct {
	val   T
	expAt time.Time
}

// TTLCache 是插件间共享的内存缓存，作为 "cache" 服务放入注册表。
// 注册表本身只读，缓存内容可变，由自身的锁保护。
type TTLCache[T any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]cacheEntry[T]
	now func() time.Time
}

func NewTTLCache[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{ttl: ttl, m: make(map[string]cacheEntry[T]), now: time.Now}
}

func (c *TTLCache[T]) Get(k string) (T, bool) {
	var zero T
	c.mu.RLock()
	e, ok := c.m[k]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if c.expired(e) {
		c.deleteIfExpired(k)
		return zero, false
	}
	return e.val, true
}

// 释放读锁后可能有新的 Set，写锁下重新确认仍过期才删除
func (c *TTLCache[T]) deleteIfExpired(k string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.m[k]; ok && c.expired(e) {
		delete(c.m, k)
	}
}

func (c *TTLCache[T]) Set(k string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := time.Time{}
	if c.ttl > 0 {
		exp = c.now().Add(c.ttl)
	}
	c.m[k] = cacheEntry[T]{val: v, expAt: exp}
}

func (c *TTLCache[T]) Delete(k string) {
	c.mu.Lock()
	delete(c.m, k)
	c.mu.Unlock()
}

// Len 返回未过期条目数
func (c *TTLCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.m {
		if !c.expired(e) {
			n++
		}
	}
	return n
}

func (c *TTLCache[T]) expired(e cacheEntry[T]) bool {
	return c.ttl > 0 && !e.expAt.IsZero() && c.now().After(e.expAt)
}

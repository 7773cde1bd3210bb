package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache[int](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", 7)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, c.Len())

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheNoTTL(t *testing.T) {
	c := NewTTLCache[string](0)
	c.Set("a", "b")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestTTLCacheGetKeepsConcurrentSet(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache[int](time.Minute)
	c.now = func() time.Time { return now }
	c.Set("k", 1)
	now = now.Add(2 * time.Minute)

	// 在 Get 判定过期之后、删除之前插入一次 Set
	fired := false
	c.now = func() time.Time {
		if !fired {
			fired = true
			c.Set("k", 2)
		}
		return now
	}

	_, ok := c.Get("k")
	assert.False(t, ok)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

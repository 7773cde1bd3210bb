package plug

import (
	"log"
	"sort"
	"strings"
	"sync"
)

// 编译进二进制的插件。值的形状（裸函数 / 生命周期对象）由 plugin.Classify 判定，
// 这里只负责按名登记。
var (
	mu       sync.RWMutex
	registry = map[string]any{}
)

// Register 在各插件包的 init() 中调用
func Register(name string, v any) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || v == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[name]; ok {
		log.Printf("[plug] duplicate register: %s", name)
	}
	registry[name] = v
}

// Names 返回已注册插件名（升序）
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Get 按名取插件
func Get(name string) (any, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := registry[strings.ToLower(name)]
	return v, ok
}

// All 返回 name->plugin 映射的副本
func All() map[string]any {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]any, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}

// Unregister 仅供测试清理
func Unregister(name string) {
	mu.Lock()
	delete(registry, strings.ToLower(name))
	mu.Unlock()
}

package mod

import (
	"log"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"plughost/internal/services"

	"github.com/gin-gonic/gin"
)

// Module 是随二进制编译的 HTTP 模块（与插件不同，它们按环境变量开关与前缀挂载）。
type Module interface {
	// 模块唯一名（用于开关、前缀环境变量命名）
	Name() string
	// 模块默认前缀（如 /api/settings）
	DefaultPrefix() string
	// 默认是否启用（当没有任何开关时的兜底）
	DefaultEnabled() bool
	// 模块自行加载/生成配置（例如 envinit.Init()）
	InitEnv()
	// 实际挂载，prefix 已经计算好传入；svc 为已封存的服务注册表
	Mount(r gin.IRouter, prefix string, svc *services.Registry) error
}

// Mounted 记录一次成功挂载。
type Mounted struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

var (
	mu       sync.RWMutex
	registry = map[string]Module{}
)

func Register(m Module) {
	name := strings.ToLower(m.Name())
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[name]; ok {
		log.Printf("[mod] duplicate register: %s", name)
	}
	registry[name] = m
}

func snapshot() map[string]Module {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]Module, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}

// MountAll 会根据环境变量自动决定“哪些模块、什么顺序、用什么前缀”进行挂载。
// 开关与顺序：
//
//	MODULES=settings,other           # 仅挂这些，并按给定顺序
//	MODULES_DISABLE=settings         # 全部默认启用的基础上，禁用这些
//	settings_ENABLED=true|false      # 单模块覆盖
//
// 前缀：
//
//	API_ROOT_PREFIX=/api/v1          # 给所有模块前缀统一加根（可选）
//	settings_PREFIX=/x/settings      # 单模块前缀覆盖（优先级更高）
//
// 兼容：若都不设置，则使用模块默认前缀与默认启用策略。
func MountAll(r gin.IRouter, svc *services.Registry) []Mounted {
	return mountAll(snapshot(), r, svc)
}

func mountAll(reg map[string]Module, r gin.IRouter, svc *services.Registry) []Mounted {
	if len(reg) == 0 {
		log.Printf("[mod] no modules registered")
		return nil
	}

	enabledList := parseList(os.Getenv("MODULES"))
	disabledSet := toSet(parseList(os.Getenv("MODULES_DISABLE")))
	root := strings.TrimSpace(os.Getenv("API_ROOT_PREFIX"))

	// 决定挂载顺序
	var order []string
	if len(enabledList) > 0 {
		for _, n := range enabledList {
			if _, ok := reg[n]; ok {
				order = append(order, n)
			} else {
				log.Printf("[mod] MODULES includes unknown: %s", n)
			}
		}
	} else {
		// 没有显式列表：按模块名排序
		for n := range reg {
			order = append(order, n)
		}
		sort.Strings(order)
	}

	var mounted []Mounted
	for _, name := range order {
		m := reg[name]
		if !decideEnabled(name, m.DefaultEnabled(), enabledList, disabledSet) {
			log.Printf("[mod] skip %s (disabled)", name)
			continue
		}

		prefix := modulePrefix(name, m.DefaultPrefix(), root)
		if !strings.HasPrefix(prefix, "/") {
			prefix = "/" + prefix
		}

		m.InitEnv()

		if err := m.Mount(r, prefix, svc); err != nil {
			log.Printf("[mod] mount %s failed: %v", name, err)
			continue
		}
		log.Printf("[mod] mounted %s at %s", name, prefix)
		mounted = append(mounted, Mounted{Name: name, Prefix: prefix})
	}
	return mounted
}

func decideEnabled(name string, def bool, explicitOrder []string, disabledSet map[string]struct{}) bool {
	// 单模块强制开关优先：<name>_ENABLED
	if v := os.Getenv(name + "_ENABLED"); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	_, dis := disabledSet[name]
	// 指定了 MODULES，则只有列在里面的才算启用
	if len(explicitOrder) > 0 {
		for _, n := range explicitOrder {
			if n == name {
				return !dis
			}
		}
		return false
	}
	if dis {
		return false
	}
	return def
}

func modulePrefix(name, def, root string) string {
	// <name>_PREFIX 覆盖
	if v := strings.TrimSpace(os.Getenv(name + "_PREFIX")); v != "" {
		return v
	}
	if root == "" {
		return def
	}
	return path.Join("/", root, strings.TrimPrefix(def, "/"))
}

func parseList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, v := range list {
		m[v] = struct{}{}
	}
	return m
}

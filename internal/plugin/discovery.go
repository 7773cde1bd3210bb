package plugin

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions 在未传 WithExtensions 时使用
var DefaultExtensions = []string{".lua"}

// Descriptor 描述一个发现到的插件。
// 文件插件带 Path/Ext，由 Runtime 加载；内置插件直接带模块值。
type Descriptor struct {
	Name   string
	Path   string
	Ext    string
	Module any
}

func (d Descriptor) Builtin() bool { return d.Path == "" }

type discoverConfig struct {
	exts     map[string]struct{}
	skip     map[string]struct{}
	builtins map[string]any
}

type DiscoverOption func(*discoverConfig)

// WithExtensions 设置识别的扩展名（".lua" 或 "lua" 均可）
func WithExtensions(exts ...string) DiscoverOption {
	return func(c *discoverConfig) {
		c.exts = map[string]struct{}{}
		for _, e := range exts {
			if e = normalizeExt(e); e != "" {
				c.exts[e] = struct{}{}
			}
		}
	}
}

// WithSkip 按名跳过插件（如 plugins.toml 中的 disabled）
func WithSkip(names ...string) DiscoverOption {
	return func(c *discoverConfig) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				c.skip[n] = struct{}{}
			}
		}
	}
}

// WithBuiltins 加入编译进二进制的插件（见 bootstrap/plug）
func WithBuiltins(m map[string]any) DiscoverOption {
	return func(c *discoverConfig) {
		for k, v := range m {
			c.builtins[k] = v
		}
	}
}

// Discover 列出 dir 下的插件与内置插件，按名字排序，
// 顺序与文件系统的枚举顺序无关。目录不存在或为空不算错误。
func Discover(dir string, opts ...DiscoverOption) ([]Descriptor, error) {
	cfg := &discoverConfig{skip: map[string]struct{}{}, builtins: map[string]any{}}
	WithExtensions(DefaultExtensions...)(cfg)
	for _, opt := range opts {
		opt(cfg)
	}

	taken := map[string]struct{}{}
	var out []Descriptor

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, ".") {
				continue
			}
			if !e.Type().IsRegular() && e.Type()&fs.ModeSymlink == 0 {
				continue
			}
			ext := normalizeExt(filepath.Ext(name))
			if _, ok := cfg.exts[ext]; !ok {
				continue
			}
			if _, ok := cfg.skip[name]; ok {
				log.Printf("[plugin] skip %s (disabled)", name)
				continue
			}
			taken[name] = struct{}{}
			out = append(out, Descriptor{Name: name, Path: filepath.Join(dir, name), Ext: ext})
		}
	}

	for name, v := range cfg.builtins {
		if _, ok := cfg.skip[name]; ok {
			log.Printf("[plugin] skip %s (disabled)", name)
			continue
		}
		if _, ok := taken[name]; ok {
			log.Printf("[plugin] builtin %s shadowed by file plugin", name)
			continue
		}
		out = append(out, Descriptor{Name: name, Module: v})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func normalizeExt(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))
	if e == "" {
		return ""
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
)

var (
	ErrSealed      = errors.New("services: registry is sealed")
	ErrDuplicate   = errors.New("services: duplicate service")
	ErrInvalidName = errors.New("services: invalid service name")
	ErrBuild       = errors.New("services: build failed")
)

// Constructor 延迟构造一个服务；失败会阻止注册表封存
type Constructor func() (any, error)

// Registry 是封存后的只读服务表，所有插件共享同一个指针。
// 构造完成后不再变化，因此并发读取无需加锁。
type Registry struct {
	m     map[string]any
	names []string
}

func (r *Registry) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.m[name]
	return v, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names 返回升序服务名（副本）
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.m)
}

// Lookup 按类型取服务
func Lookup[T any](r *Registry, name string) (T, bool) {
	var zero T
	v, ok := r.Get(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

type entry struct {
	name  string
	value any
	ctor  Constructor
}

// Builder 按添加顺序收集服务，Build 成功后封存
type Builder struct {
	mu      sync.Mutex
	entries []entry
	seen    map[string]struct{}
	built   *Registry
}

func NewBuilder() *Builder {
	return &Builder{seen: map[string]struct{}{}}
}

// Add 注册一个已构造好的服务值
func (b *Builder) Add(name string, value any) error {
	return b.add(entry{name: name, value: value})
}

// AddFunc 注册一个构造函数，在 Build 时执行
func (b *Builder) AddFunc(name string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("%w: %q has nil constructor", ErrInvalidName, name)
	}
	return b.add(entry{name: name, ctor: ctor})
}

func (b *Builder) add(e entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built != nil {
		return fmt.Errorf("%w: cannot add %q", ErrSealed, e.name)
	}
	e.name = strings.TrimSpace(e.name)
	if e.name == "" {
		return ErrInvalidName
	}
	if _, ok := b.seen[e.name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.name)
	}
	b.seen[e.name] = struct{}{}
	b.entries = append(b.entries, e)
	return nil
}

// Build 依次执行构造函数。任一失败则返回错误且不封存，
// 调用方应中止启动而不是暴露不完整的注册表。
func (b *Builder) Build() (*Registry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built != nil {
		return b.built, nil
	}

	m := make(map[string]any, len(b.entries))
	for _, e := range b.entries {
		v := e.value
		if e.ctor != nil {
			var err error
			v, err = e.ctor()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrBuild, e.name, err)
			}
		}
		m[e.name] = v
	}

	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)

	b.built = &Registry{m: m, names: names}
	log.Printf("[services] sealed %d services: %s", len(names), strings.Join(names, ","))
	return b.built, nil
}

package plugin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"plughost/internal/services"

	"github.com/gin-gonic/gin"
)

// Runtime 把文件插件加载成 Classify 能识别的模块值
type Runtime interface {
	Ext() string
	Load(ctx context.Context, d Descriptor) (any, error)
	Close() error
}

// Handle 只为 init 成功的插件创建，留给 shutdown 使用
type Handle struct {
	Name     string
	Kind     Kind
	shutdown ShutdownFunc
}

func (h *Handle) HasShutdown() bool { return h.shutdown != nil }

type LoadResult struct {
	Loaded []*Handle
	Failed []*LoadError
}

// Err 合并所有插件的失败；全部成功时为 nil
func (r *LoadResult) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

type Host struct {
	routes   *routeTable
	services *services.Registry
	runtimes map[string]Runtime
}

type Option func(*Host)

func WithRuntime(rt Runtime) Option {
	return func(h *Host) {
		if rt != nil {
			h.runtimes[normalizeExt(rt.Ext())] = rt
		}
	}
}

// NewHost 绑定所有插件共享的封存注册表与 engine
func NewHost(engine gin.IRoutes, svc *services.Registry, opts ...Option) *Host {
	h := &Host{
		routes:   newRouteTable(engine),
		services: svc,
		runtimes: map[string]Runtime{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Extensions 返回已注册运行时可加载的扩展名（升序）
func (h *Host) Extensions() []string {
	out := make([]string, 0, len(h.runtimes))
	for e := range h.runtimes {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Routes 列出插件注册的全部路由
func (h *Host) Routes() []Route { return h.routes.All() }

// Load 严格按顺序初始化：第 N 个插件的 init 返回之前，第 N+1 个不会开始。
// 失败的插件被记录并跳过，不会中断其余插件。
// 每个插件的路由句柄在其 init 返回后即封存。
func (h *Host) Load(ctx context.Context, descs []Descriptor) *LoadResult {
	res := &LoadResult{}
	for _, d := range descs {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, &LoadError{Plugin: d.Name, Op: OpLoad, Err: err})
			continue
		}
		hd, lerr := h.loadOne(ctx, d)
		if lerr != nil {
			log.Printf("[plugin] %v", lerr)
			res.Failed = append(res.Failed, lerr)
			continue
		}
		res.Loaded = append(res.Loaded, hd)
	}
	log.Printf("[plugin] loaded %d plugin(s), %d failed", len(res.Loaded), len(res.Failed))
	return res
}

func (h *Host) loadOne(ctx context.Context, d Descriptor) (*Handle, *LoadError) {
	mod := d.Module
	if !d.Builtin() {
		rt, ok := h.runtimes[d.Ext]
		if !ok {
			return nil, &LoadError{Plugin: d.Name, Op: OpLoad, Err: fmt.Errorf("%w: %s", ErrNoRuntime, d.Ext)}
		}
		var err error
		mod, err = rt.Load(ctx, d)
		if err != nil {
			return nil, &LoadError{Plugin: d.Name, Op: OpLoad, Err: err}
		}
	}

	entry, err := Classify(mod)
	if err != nil {
		return nil, &LoadError{Plugin: d.Name, Op: OpClassify, Err: err}
	}

	start := time.Now()
	router := h.routes.For(d.Name)
	err = safeCall(func() error {
		return entry.Init(ctx, router, h.services)
	})
	router.seal()
	if err != nil {
		return nil, &LoadError{Plugin: d.Name, Op: OpInit, Err: err}
	}
	log.Printf("[plugin] init %s (%s) in %s", d.Name, entry.Kind, time.Since(start).Round(time.Millisecond))

	return &Handle{Name: d.Name, Kind: entry.Kind, shutdown: entry.Shutdown}, nil
}

// Close 释放运行时资源（如 Lua state）
func (h *Host) Close() error {
	var errs []error
	for _, ext := range h.Extensions() {
		if err := h.runtimes[ext].Close(); err != nil {
			errs = append(errs, fmt.Errorf("runtime %s: %w", ext, err))
		}
	}
	return errors.Join(errs...)
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn()
}

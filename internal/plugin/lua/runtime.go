package lua

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"plughost/internal/plugin"
	"plughost/internal/services"

	lua "github.com/yuin/gopher-lua"
)

// Ext 是本运行时加载的扩展名
const Ext = ".lua"

// Runtime 为单文件 Lua 插件实现 plugin.Runtime
type Runtime struct {
	mu     sync.Mutex
	states []*State
}

func NewRuntime() *Runtime { return &Runtime{} }

func (rt *Runtime) Ext() string { return Ext }

// Load 执行文件并把返回值映射到插件约定：函数 → plugin.InitFunc，
// 带 init 函数的 table → *plugin.Lifecycle。其它值原样返回，由 plugin.Classify 拒绝。
func (rt *Runtime) Load(ctx context.Context, d plugin.Descriptor) (any, error) {
	p := &luaPlugin{name: d.Name, state: NewState(d.Name)}

	var ret lua.LValue
	err := p.state.Do(ctx, func(L *lua.LState) error {
		L.SetGlobal("host", p.newHostTable(L))
		fn, err := L.LoadFile(d.Path)
		if err != nil {
			return err
		}
		L.Push(fn)
		if err := L.PCall(0, 1, nil); err != nil {
			return err
		}
		ret = L.Get(-1)
		L.Pop(1)
		return nil
	})
	if err != nil {
		p.state.Close()
		return nil, fmt.Errorf("lua %s: %w", d.Name, err)
	}

	rt.mu.Lock()
	rt.states = append(rt.states, p.state)
	rt.mu.Unlock()

	switch v := ret.(type) {
	case *lua.LFunction:
		return p.initFunc(v), nil
	case *lua.LTable:
		initFn, ok := v.RawGetString("init").(*lua.LFunction)
		if !ok {
			return v, nil
		}
		lc := &plugin.Lifecycle{Init: p.initFunc(initFn)}
		if sd, ok := v.RawGetString("shutdown").(*lua.LFunction); ok {
			lc.Shutdown = p.shutdownFunc(sd)
		}
		return lc, nil
	default:
		return ret, nil
	}
}

// Close 关闭本运行时创建的所有 state
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, s := range rt.states {
		s.Close()
	}
	rt.states = nil
	return nil
}

type luaPlugin struct {
	name  string
	state *State
}

func (p *luaPlugin) initFunc(fn *lua.LFunction) plugin.InitFunc {
	return func(ctx context.Context, r plugin.Router, svc *services.Registry) error {
		return p.state.Do(ctx, func(L *lua.LState) error {
			if h, ok := L.GetGlobal("host").(*lua.LTable); ok {
				h.RawSetString("service_names", L.NewFunction(func(L *lua.LState) int {
					L.Push(serviceNames(L, svc))
					return 1
				}))
			}
			return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true},
				p.newAppTable(L, r), newServicesTable(L, svc))
		})
	}
}

func (p *luaPlugin) shutdownFunc(fn *lua.LFunction) plugin.ShutdownFunc {
	return func(ctx context.Context) error {
		return p.state.Call(ctx, fn)
	}
}

func (p *luaPlugin) newHostTable(L *lua.LState) *lua.LTable {
	h := L.NewTable()
	h.RawSetString("sleep", L.NewFunction(func(L *lua.LState) int {
		ms := L.CheckInt(1)
		ctx := L.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		t := time.NewTimer(time.Duration(ms) * time.Millisecond)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			L.RaiseError("sleep interrupted: %v", ctx.Err())
		}
		return 0
	}))
	h.RawSetString("log", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		log.Printf("[lua:%s] %s", p.name, strings.Join(parts, " "))
		return 0
	}))
	h.RawSetString("service_names", L.NewFunction(func(L *lua.LState) int {
		L.Push(L.NewTable())
		return 1
	}))
	return h
}

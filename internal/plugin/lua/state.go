package lua

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State 包装一个插件的 LState。gopher-lua 的 state 不是并发安全的，
// init、请求处理、shutdown 都经由 Do 串行执行。
type State struct {
	name   string
	mu     sync.Mutex
	L      *lua.LState
	closed bool
}

func NewState(name string) *State {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	return &State{name: name, L: L}
}

// 只开放安全的标准库
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "rawset", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Do 加锁并挂上 ctx 执行 fn，ctx 取消会中断正在运行的 Lua 代码；panic 转为错误。
func (s *State) Do(ctx context.Context, fn func(L *lua.LState) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	if ctx != nil {
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn(s.L)
}

// Call 以保护模式调用 Lua 函数，丢弃返回值
func (s *State) Call(ctx context.Context, fn *lua.LFunction, args ...lua.LValue) error {
	return s.Do(ctx, func(L *lua.LState) error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	})
}

func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

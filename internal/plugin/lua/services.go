package lua

import (
	"plughost/internal/services"

	lua "github.com/yuin/gopher-lua"
)

const sealedMsg = "services registry is sealed"

// newServicesTable 把注册表暴露为只读代理：读直接查注册表，写抛错。
func newServicesTable(L *lua.LState, svc *services.Registry) *lua.LTable {
	proxy := L.NewTable()
	mt := L.NewTable()
	mt.RawSetString("__index", L.NewFunction(func(L *lua.LState) int {
		v, ok := svc.Get(L.CheckString(2))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(ToLua(L, v))
		return 1
	}))
	mt.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError(sealedMsg)
		return 0
	}))
	mt.RawSetString("__metatable", lua.LString("locked"))
	L.SetMetatable(proxy, mt)
	return proxy
}

func serviceNames(L *lua.LState, svc *services.Registry) *lua.LTable {
	names := svc.Names()
	t := L.CreateTable(len(names), 0)
	for _, n := range names {
		t.Append(lua.LString(n))
	}
	return t
}

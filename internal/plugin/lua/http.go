package lua

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"plughost/internal/plugin"

	"github.com/gin-gonic/gin"
	lua "github.com/yuin/gopher-lua"
)

var appMethods = map[string]string{
	"get":    http.MethodGet,
	"post":   http.MethodPost,
	"put":    http.MethodPut,
	"patch":  http.MethodPatch,
	"delete": http.MethodDelete,
}

// selfOffset 让 t.fn(x) 与 t:fn(x) 两种写法都可用
func selfOffset(L *lua.LState, self *lua.LTable) int {
	if L.GetTop() > 0 && L.Get(1) == self {
		return 1
	}
	return 0
}

// newAppTable 是 plugin.Router 在 Lua 侧的包装
func (p *luaPlugin) newAppTable(L *lua.LState, r plugin.Router) *lua.LTable {
	app := L.NewTable()
	for name, method := range appMethods {
		method := method // go 1.21 下需逐次绑定循环变量
		app.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
			off := selfOffset(L, app)
			path := L.CheckString(1 + off)
			fn := L.CheckFunction(2 + off)
			if err := r.Handle(method, path, p.ginHandler(method, path, fn)); err != nil {
				L.RaiseError("%s", err.Error())
			}
			return 0
		}))
	}
	return app
}

func (p *luaPlugin) ginHandler(method, path string, fn *lua.LFunction) gin.HandlerFunc {
	return func(c *gin.Context) {
		w := &response{c: c, status: http.StatusOK}
		err := p.state.Do(c.Request.Context(), func(L *lua.LState) error {
			return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, newRequestTable(L, c), w.table(L))
		})
		if err != nil {
			log.Printf("[lua:%s] %s %s: %v", p.name, method, path, err)
			if !w.written {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		if !w.written {
			c.Status(w.status)
		}
	}
}

func newRequestTable(L *lua.LState, c *gin.Context) *lua.LTable {
	req := L.NewTable()
	req.RawSetString("method", lua.LString(c.Request.Method))
	req.RawSetString("path", lua.LString(c.Request.URL.Path))

	params := L.NewTable()
	for _, p := range c.Params {
		params.RawSetString(p.Key, lua.LString(p.Value))
	}
	req.RawSetString("params", params)

	query := L.NewTable()
	for k, vs := range c.Request.URL.Query() {
		if len(vs) > 0 {
			query.RawSetString(k, lua.LString(vs[0]))
		}
	}
	req.RawSetString("query", query)

	headers := L.NewTable()
	for k, vs := range c.Request.Header {
		if len(vs) > 0 {
			headers.RawSetString(strings.ToLower(k), lua.LString(vs[0]))
		}
	}
	req.RawSetString("headers", headers)

	body, _ := c.GetRawData()
	req.RawSetString("body", lua.LString(string(body)))
	if len(body) > 0 && strings.Contains(c.ContentType(), "json") {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err == nil {
			req.RawSetString("json", ToLua(L, decoded))
		}
	}
	return req
}

type response struct {
	c       *gin.Context
	status  int
	written bool
}

// begin 保证响应体只写一次，重复写入在 Lua 侧报错。
func (w *response) begin(L *lua.LState) {
	if w.written {
		L.RaiseError("%s", errAlreadyWritten)
	}
	w.written = true
}

func (w *response) table(L *lua.LState) *lua.LTable {
	res := L.NewTable()
	res.RawSetString("status", L.NewFunction(func(L *lua.LState) int {
		off := selfOffset(L, res)
		w.status = L.CheckInt(1 + off)
		L.Push(res)
		return 1
	}))
	res.RawSetString("header", L.NewFunction(func(L *lua.LState) int {
		off := selfOffset(L, res)
		w.c.Header(L.CheckString(1+off), L.CheckString(2+off))
		L.Push(res)
		return 1
	}))
	res.RawSetString("json", L.NewFunction(func(L *lua.LState) int {
		off := selfOffset(L, res)
		w.begin(L)
		w.c.JSON(w.status, ToGo(L.Get(1+off)))
		return 0
	}))
	res.RawSetString("text", L.NewFunction(func(L *lua.LState) int {
		off := selfOffset(L, res)
		w.begin(L)
		w.c.String(w.status, "%s", L.CheckString(1+off))
		return 0
	}))
	return res
}

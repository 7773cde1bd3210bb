package plugin

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Router 是交给插件的受限路由句柄：只能追加路由，碰不到中间件和 engine 配置。
type Router interface {
	GET(path string, handlers ...gin.HandlerFunc) error
	POST(path string, handlers ...gin.HandlerFunc) error
	PUT(path string, handlers ...gin.HandlerFunc) error
	PATCH(path string, handlers ...gin.HandlerFunc) error
	DELETE(path string, handlers ...gin.HandlerFunc) error
	Handle(method, path string, handlers ...gin.HandlerFunc) error
	// 本插件已注册的路由
	Routes() []Route
}

type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Owner  string `json:"owner"`
}

var allowedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

// routeTable 是宿主的路由表。只增不改：(method, path) 归最先注册的插件。
type routeTable struct {
	mu     sync.Mutex
	engine gin.IRoutes
	owners map[string]string
	routes []Route
}

func newRouteTable(engine gin.IRoutes) *routeTable {
	return &routeTable{engine: engine, owners: map[string]string{}}
}

func (t *routeTable) For(owner string) *pluginRouter {
	return &pluginRouter{table: t, owner: owner}
}

func (t *routeTable) All() []Route {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

func (t *routeTable) owned(owner string) []Route {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Route
	for _, r := range t.routes {
		if r.Owner == owner {
			out = append(out, r)
		}
	}
	return out
}

func (t *routeTable) handle(r *pluginRouter, method, path string, handlers []gin.HandlerFunc) error {
	method = strings.ToUpper(strings.TrimSpace(method))
	if _, ok := allowedMethods[method]; !ok {
		return fmt.Errorf("%w: method %q", ErrInvalidRoute, method)
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: path %q must start with /", ErrInvalidRoute, path)
	}
	if len(handlers) == 0 {
		return fmt.Errorf("%w: %s %s has no handler", ErrInvalidRoute, method, path)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	owner := r.owner
	if r.sealed {
		return fmt.Errorf("%w: %s %s %s", ErrRoutesSealed, owner, method, path)
	}
	key := method + " " + path
	if prev, ok := t.owners[key]; ok {
		return fmt.Errorf("%w: %s owned by %s", ErrRouteConflict, key, prev)
	}
	if err := t.register(method, path, handlers); err != nil {
		return err
	}
	t.owners[key] = owner
	t.routes = append(t.routes, Route{Method: method, Path: path, Owner: owner})
	return nil
}

// gin 遇到重复或冲突路由（包括宿主自己挂的）会 panic，这里转成该插件的错误。
func (t *routeTable) register(method, path string, handlers []gin.HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s %s: %v", ErrRouteConflict, method, path, r)
		}
	}()
	t.engine.Handle(method, path, handlers...)
	return nil
}

type pluginRouter struct {
	table  *routeTable
	owner  string
	sealed bool // 由 table.mu 保护
}

// seal 在插件 init 返回后调用，之后的注册一律返回 ErrRoutesSealed。
func (r *pluginRouter) seal() {
	r.table.mu.Lock()
	r.sealed = true
	r.table.mu.Unlock()
}

func (r *pluginRouter) GET(path string, h ...gin.HandlerFunc) error {
	return r.Handle(http.MethodGet, path, h...)
}

func (r *pluginRouter) POST(path string, h ...gin.HandlerFunc) error {
	return r.Handle(http.MethodPost, path, h...)
}

func (r *pluginRouter) PUT(path string, h ...gin.HandlerFunc) error {
	return r.Handle(http.MethodPut, path, h...)
}

func (r *pluginRouter) PATCH(path string, h ...gin.HandlerFunc) error {
	return r.Handle(http.MethodPatch, path, h...)
}

func (r *pluginRouter) DELETE(path string, h ...gin.HandlerFunc) error {
	return r.Handle(http.MethodDelete, path, h...)
}

func (r *pluginRouter) Handle(method, path string, h ...gin.HandlerFunc) error {
	return r.table.handle(r, method, path, h)
}

func (r *pluginRouter) Routes() []Route { return r.table.owned(r.owner) }

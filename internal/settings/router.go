package settings

import (
	"github.com/gin-gonic/gin"
)

// Mount 在 r 下注册 GET/PUT/DELETE / 与 GET /defaults。
// 挂在分组下时同时接受不带结尾斜杠的前缀本身（/api/settings）。
func Mount(r gin.IRouter, store Store, adminHash []byte) {
	h := NewHandler(store)
	guard := AdminRequired(adminHash)

	roots := []string{"/"}
	if g, ok := r.(*gin.RouterGroup); ok && g.BasePath() != "/" {
		roots = append(roots, "")
	}
	for _, p := range roots {
		r.GET(p, h.Get)
		r.PUT(p, guard, h.Update)
		r.DELETE(p, guard, h.Reset)
	}
	r.GET("/defaults", h.Defaults)
}

func AttachTo(engine gin.IRouter, prefix string, store Store, adminHash []byte) {
	Mount(engine.Group(prefix), store, adminHash)
}

package handler

import (
	"net/http"
	"sync"

	"plughost/internal/bootstrap/mod"
	"plughost/internal/plugin"

	"github.com/gin-gonic/gin"
)

// InfoHandler 结构体用于持有应用信息
type InfoHandler struct {
	CodeName string
	Version  string
	Commit   string
	Build    string

	mu     sync.RWMutex
	report PluginReport
}

type LoadedPlugin struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type FailedPlugin struct {
	Plugin string `json:"plugin"`
	Op     string `json:"op"`
	Error  string `json:"error"`
}

// PluginReport 是 /plugins 的响应体
type PluginReport struct {
	Loaded  []LoadedPlugin `json:"loaded"`
	Failed  []FailedPlugin `json:"failed"`
	Routes  []plugin.Route `json:"routes"`
	Modules []mod.Mounted  `json:"modules"`
}

// NewPluginReport 汇总一次加载的结果
func NewPluginReport(res *plugin.LoadResult, routes []plugin.Route, modules []mod.Mounted) PluginReport {
	r := PluginReport{
		Loaded:  []LoadedPlugin{},
		Failed:  []FailedPlugin{},
		Routes:  routes,
		Modules: modules,
	}
	if r.Routes == nil {
		r.Routes = []plugin.Route{}
	}
	if r.Modules == nil {
		r.Modules = []mod.Mounted{}
	}
	if res == nil {
		return r
	}
	for _, h := range res.Loaded {
		r.Loaded = append(r.Loaded, LoadedPlugin{Name: h.Name, Kind: h.Kind.String()})
	}
	for _, f := range res.Failed {
		r.Failed = append(r.Failed, FailedPlugin{Plugin: f.Plugin, Op: f.Op, Error: f.Err.Error()})
	}
	return r
}

// NewInfoHandler 是 InfoHandler 的构造函数
func NewInfoHandler(version, commit, build string) *InfoHandler {
	return &InfoHandler{
		CodeName: "Hearth",
		Version:  version,
		Commit:   commit,
		Build:    build,
		report:   NewPluginReport(nil, nil, nil),
	}
}

func (h *InfoHandler) SetPluginReport(r PluginReport) {
	h.mu.Lock()
	h.report = r
	h.mu.Unlock()
}

// HandleStatus 处理 /status 请求
func (h *InfoHandler) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "OK",
	})
}

// HandleVersion 处理 /version 请求
func (h *InfoHandler) HandleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"codeName": h.CodeName,
		"version":  h.Version,
		"commit":   h.Commit,
		"build":    h.Build,
	})
}

// HandleRoot 处理 / 请求
func (h *InfoHandler) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Plugin host is running.",
		"version": h.Version,
		"commit":  h.Commit,
		"build":   h.Build,
	})
}

// HandlePlugins 处理 /plugins 请求
func (h *InfoHandler) HandlePlugins(c *gin.Context) {
	h.mu.RLock()
	r := h.report
	h.mu.RUnlock()
	c.JSON(http.StatusOK, r)
}

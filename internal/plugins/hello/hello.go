// Package hello 是随二进制编译的示例插件（生命周期形式）。
package hello

import (
	"context"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"plughost/internal/bootstrap/plug"
	"plughost/internal/email"
	"plughost/internal/plugin"
	"plughost/internal/services"
	"plughost/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

const langCacheKey = "hello:language"

var greetings = map[string]string{
	"en": "Hello",
	"zh": "你好",
	"ja": "こんにちは",
	"fr": "Bonjour",
}

type Plugin struct {
	svc       *services.Registry
	store     settings.Store
	mailer    *email.Mailer
	cache     *services.TTLCache[any]
	hits      atomic.Int64
	startedAt time.Time
}

var (
	_ plugin.Initializer = (*Plugin)(nil)
	_ plugin.Shutdowner  = (*Plugin)(nil)
)

func (p *Plugin) Init(_ context.Context, r plugin.Router, svc *services.Registry) error {
	p.svc = svc
	p.store, _ = services.Lookup[settings.Store](svc, settings.ServiceName)
	p.mailer, _ = services.Lookup[*email.Mailer](svc, email.ServiceName)
	p.cache, _ = services.Lookup[*services.TTLCache[any]](svc, "cache")
	p.startedAt = time.Now()

	if err := r.GET("/api/hello", p.hello); err != nil {
		return err
	}
	return r.POST("/api/hello/notify", p.notify)
}

func (p *Plugin) Shutdown(context.Context) error {
	log.Printf("[hello] served %d request(s) in %s", p.hits.Load(), time.Since(p.startedAt).Round(time.Second))
	return nil
}

func (p *Plugin) hello(c *gin.Context) {
	p.hits.Add(1)
	lang := p.language(c.Request.Context())
	msg, ok := greetings[lang]
	if !ok {
		msg = greetings["en"]
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           msg + " from a compiled-in plugin!",
		"language":          lang,
		"availableServices": p.svc.Names(),
	})
}

// language 读 settings 的 language 字段，缓存几秒避免每次都访问存储。
func (p *Plugin) language(ctx context.Context) string {
	if p.cache != nil {
		if v, ok := p.cache.Get(langCacheKey); ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	lang := "en"
	if p.store != nil {
		if doc, err := p.store.Get(ctx); err == nil {
			if v := gjson.GetBytes(doc, "language"); v.Exists() && v.String() != "" {
				lang = v.String()
			}
		}
	}
	if p.cache != nil {
		p.cache.Set(langCacheKey, lang)
	}
	return lang
}

type notifyRequest struct {
	To string `json:"to" binding:"required,email"`
}

func (p *Plugin) notify(c *gin.Context) {
	if p.mailer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mailer not available"})
		return
	}
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := p.mailer.Send(c.Request.Context(), email.Message{
		To:      req.To,
		Subject: "Hello",
		Text:    "Hello from the plugin host.",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"sent": true, "strategy": p.mailer.Strategy()})
}

func init() { plug.Register("hello", &Plugin{}) }

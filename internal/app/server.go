package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plughost/internal/app/envinit"
	"plughost/internal/bootstrap/mod"
	"plughost/internal/bootstrap/plug"
	"plughost/internal/handler"
	"plughost/internal/plugin"
	"plughost/internal/plugin/lua"
	"plughost/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type BuildInfo struct {
	Version string
	Commit  string
	Build   string
}

// App 是装配完成、插件已加载的进程。
type App struct {
	Engine   *gin.Engine
	Services *services.Registry
	Loaded   *plugin.LoadResult

	cfg     Config
	host    *plugin.Host
	coord   *plugin.Coordinator
	closers []io.Closer
}

// New 依次：构造服务注册表（失败即终止）→ 挂载内置模块 → 发现并顺序加载插件。
// ctx 取消会让尚未开始的插件记为失败。
func New(ctx context.Context, cfg Config, info BuildInfo) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Gin 模式：默认为 debug；生产可设 GIN_MODE=release
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	svc, closers, err := buildServices()
	if err != nil {
		_ = closeAll(closers)
		return nil, err
	}
	a := &App{Services: svc, cfg: cfg, closers: closers}

	pc, err := LoadPluginConfig(cfg.PluginConfig)
	if err != nil {
		_ = closeAll(closers)
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), RequestID())
	engine.Use(cors.New(corsConfig(cfg)))
	a.Engine = engine

	// 健康与版本
	infoH := handler.NewInfoHandler(info.Version, info.Commit, info.Build)
	engine.GET("/status", infoH.HandleStatus)
	engine.GET("/version", infoH.HandleVersion)
	engine.GET("/plugins", infoH.HandlePlugins)
	engine.GET("/", infoH.HandleRoot)

	// 内置模块（settings 等）在 init() 中注册
	mounted := mod.MountAll(engine, svc)

	a.host = plugin.NewHost(engine, svc, plugin.WithRuntime(lua.NewRuntime()))
	exts := pc.Extensions
	if len(exts) == 0 {
		exts = a.host.Extensions()
	}
	descs, err := plugin.Discover(cfg.PluginDir,
		plugin.WithExtensions(exts...),
		plugin.WithSkip(pc.Disabled...),
		plugin.WithBuiltins(plug.All()),
	)
	if err != nil {
		// 目录不可读时仍加载内置插件
		log.Printf("[app] discover %s: %v", cfg.PluginDir, err)
		descs, _ = plugin.Discover("", plugin.WithSkip(pc.Disabled...), plugin.WithBuiltins(plug.All()))
	}

	a.Loaded = a.host.Load(ctx, descs)
	a.coord = plugin.NewCoordinator(a.Loaded.Loaded, plugin.WithProgress(func(r plugin.HandlerResult) {
		if r.Skipped {
			log.Printf("[app] teardown %s: nothing to do (%s)", r.Name, r.Kind)
		}
	}))
	infoH.SetPluginReport(handler.NewPluginReport(a.Loaded, a.host.Routes(), mounted))
	return a, nil
}

func corsConfig(cfg Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = cfg.CORSOrigins
	c.AllowCredentials = cfg.AllowCreds
	for _, h := range cfg.AllowHeaders {
		c.AddAllowHeaders(h)
	}
	c.AddExposeHeaders(requestIDHeader)
	// 预检缓存
	c.MaxAge = 12 * time.Hour
	return c
}

// Serve 监听直到 ctx 结束，然后依次：HTTP 优雅关闭 → 插件逆序 shutdown → 释放资源。
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[app] listening on %s", a.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Printf("[app] shutting down")
	case serveErr = <-errCh:
		if serveErr != nil {
			serveErr = fmt.Errorf("app: listen %s: %w", a.cfg.Addr, serveErr)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Printf("[app] http shutdown: %v", err)
	}

	return errors.Join(serveErr, a.Close(context.Background()))
}

// Close 逆序执行插件 shutdown，再关闭运行时与服务资源。只生效一次。
func (a *App) Close(ctx context.Context) error {
	res, err := a.coord.Shutdown(ctx)
	if errors.Is(err, plugin.ErrAlreadyShutdown) {
		return nil
	}
	var errs []error
	if res != nil && res.Failed() {
		// 单个插件 shutdown 失败不影响退出流程，只记录
		log.Printf("[app] teardown finished with failures: %v", res.FailedHandlers())
	}
	if err := a.host.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := closeAll(a.closers); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run 是 main 的入口：加载配置、装配并服务到收到 SIGINT/SIGTERM。
func Run(version, commit, build string) error {
	envinit.Init()
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, BuildInfo{Version: version, Commit: commit, Build: build})
	if err != nil {
		return err
	}
	return a.Serve(ctx)
}

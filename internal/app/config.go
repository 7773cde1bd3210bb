package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"plughost/pkg/paths"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	// 监听地址（默认 :8080）
	Addr         string   `validate:"required"`
	CORSOrigins  []string `validate:"dive,required"`
	AllowCreds   bool
	AllowHeaders []string `validate:"dive,required"`
	GinMode      string   `validate:"omitempty,oneof=debug release test"`

	// 插件目录与 plugins.toml 路径
	PluginDir    string `validate:"required"`
	PluginConfig string

	// 只作用于 HTTP 优雅关闭，插件 shutdown 不设超时
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

var validate = validator.New()

func LoadConfig() (Config, error) {
	addr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if addr == "" {
		addr = ":8080"
	}
	origins := splitList(os.Getenv("HTTP_CORS_ORIGINS"))
	if origins == nil {
		// 默认常见本地域名
		origins = []string{
			"http://localhost:5173",
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}
	}
	allowCreds := true
	if v := strings.TrimSpace(os.Getenv("HTTP_CORS_CREDENTIALS")); v != "" {
		allowCreds = strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
	}
	allowHeaders := splitList(os.Getenv("HTTP_CORS_HEADERS"))
	if allowHeaders == nil {
		allowHeaders = []string{"Authorization", "Content-Type", requestIDHeader}
	}

	pluginDir := strings.TrimSpace(os.Getenv("PLUGIN_DIR"))
	if pluginDir == "" {
		if p, err := paths.Join("plugins"); err == nil {
			pluginDir = p
		} else {
			pluginDir = "plugins"
		}
	}
	pluginConfig := strings.TrimSpace(os.Getenv("PLUGIN_CONFIG"))
	if pluginConfig == "" {
		pluginConfig = defaultPluginConfig
	}

	timeout := 10 * time.Second
	if v := strings.TrimSpace(os.Getenv("HTTP_SHUTDOWN_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("app: HTTP_SHUTDOWN_TIMEOUT: %w", err)
		}
		timeout = d
	}

	cfg := Config{
		Addr:            addr,
		CORSOrigins:     origins,
		AllowCreds:      allowCreds,
		AllowHeaders:    allowHeaders,
		GinMode:         strings.TrimSpace(os.Getenv("GIN_MODE")),
		PluginDir:       pluginDir,
		PluginConfig:    pluginConfig,
		ShutdownTimeout: timeout,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("app: invalid config: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

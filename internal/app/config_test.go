package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	for _, k := range []string{
		"HTTP_ADDR", "HTTP_CORS_ORIGINS", "HTTP_CORS_CREDENTIALS", "HTTP_CORS_HEADERS",
		"GIN_MODE", "PLUGIN_DIR", "PLUGIN_CONFIG", "HTTP_SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.AllowCreds)
	assert.Contains(t, cfg.AllowHeaders, "X-Request-ID")
	assert.Equal(t, defaultPluginConfig, cfg.PluginConfig)
	assert.Equal(t, "plugins", filepath.Base(cfg.PluginDir))
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("HTTP_CORS_CREDENTIALS", "no")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("PLUGIN_DIR", "/srv/plugins")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.AllowCreds)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "/srv/plugins", cfg.PluginDir)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfigInvalid(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GIN_MODE", "turbo")
	_, err := LoadConfig()
	assert.Error(t, err)

	clearConfigEnv(t)
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "soon")
	_, err = LoadConfig()
	assert.Error(t, err)

	clearConfigEnv(t)
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "-1s")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadPluginConfig(t *testing.T) {
	dir := t.TempDir()

	pc, err := LoadPluginConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Empty(t, pc.Disabled)

	path := filepath.Join(dir, "plugins.toml")
	require.NoError(t, os.WriteFile(path, []byte("disabled = [\"x.lua\"]\nextensions = [\".lua\"]\n"), 0o644))
	pc, err = LoadPluginConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x.lua"}, pc.Disabled)
	assert.Equal(t, []string{".lua"}, pc.Extensions)

	require.NoError(t, os.WriteFile(path, []byte("disable = [\"typo\"]\n"), 0o644))
	_, err = LoadPluginConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("disabled = "), 0o644))
	_, err = LoadPluginConfig(path)
	assert.Error(t, err)
}

func TestRequestID(t *testing.T) {
	e := gin.New()
	e.Use(RequestID())
	e.GET("/", func(c *gin.Context) { c.String(200, c.GetString(requestIDKey)) })

	w := serve(e, "GET", "/")
	id := w.Header().Get(requestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	w2 := httptestWithHeader(e, requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w2.Header().Get(requestIDHeader))
}

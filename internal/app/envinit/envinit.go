package envinit

import (
	"sync"

	"plughost/internal/bootstrap/envfile"
)

const dirName = "config/app"

var once sync.Once

func defaultEnv() []byte {
	return []byte(envfile.Header("Plugin host config.") +
		"HTTP_ADDR=:8080\n" +
		"HTTP_SHUTDOWN_TIMEOUT=10s\n" +
		"# GIN_MODE=release\n" +
		"\n# 留空则使用 <project root>/plugins\n" +
		"PLUGIN_DIR=\n" +
		"PLUGIN_CONFIG=config/plugins/plugins.toml\n" +
		"\n# MODULES=settings\n" +
		"# API_ROOT_PREFIX=\n",
	)
}

func Init() {
	once.Do(func() {
		envfile.Init("app/envinit", envfile.BaseDir(), dirName, defaultEnv())
	})
}

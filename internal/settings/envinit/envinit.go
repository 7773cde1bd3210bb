package envinit

import (
	"sync"

	"plughost/internal/bootstrap/envfile"
)

const dirName = "config/settings"

var once sync.Once

func defaultEnv() []byte {
	return []byte(envfile.Header("Settings module config.") +
		// 存储：sqlite | memory
		"SETTINGS_STORE=sqlite\n" +
		"SETTINGS_SQLITE_PATH=databases/settings/settings.db\n" +
		"\n# JSON object; empty means builtin defaults\n" +
		"SETTINGS_DEFAULTS=\n" +
		"\n# bcrypt hash; when set, PUT/DELETE need Authorization: Bearer <key>\n" +
		"SETTINGS_ADMIN_KEY_HASH=\n",
	)
}

// Init 只执行一次。
func Init() {
	once.Do(func() {
		envfile.Init("settings/envinit", envfile.BaseDir(), dirName, defaultEnv())
	})
}

package settings

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"plughost/internal/settings/storage"
)

// ServiceName 是设置协作者在服务注册表中的名字。
const ServiceName = "settings"

// Open 按 SETTINGS_STORE 选择后端：sqlite（默认）| memory。
// 返回的 io.Closer 在进程退出时关闭后端，memory 时为 nil。
func Open() (*Service, io.Closer, error) {
	defaults := DefaultsFromEnv()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SETTINGS_STORE"))) {
	case "memory":
		log.Printf("[settings] using memory store")
		return NewMemoryStore(defaults), nil, nil
	case "", "sqlite":
		path := strings.TrimSpace(os.Getenv("SETTINGS_SQLITE_PATH"))
		if path == "" {
			path = "databases/settings/settings.db"
		}
		db, err := storage.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("settings: open sqlite %s: %w", path, err)
		}
		log.Printf("[settings] using sqlite store at %s", path)
		return NewService(db, defaults), db, nil
	default:
		return nil, nil, fmt.Errorf("settings: unknown SETTINGS_STORE %q", os.Getenv("SETTINGS_STORE"))
	}
}

// AdminHashFromEnv 读取 SETTINGS_ADMIN_KEY_HASH。
func AdminHashFromEnv() []byte {
	v := strings.TrimSpace(os.Getenv("SETTINGS_ADMIN_KEY_HASH"))
	if v == "" {
		return nil
	}
	return []byte(v)
}

package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

const defaultPluginConfig = "config/plugins/plugins.toml"

// PluginConfig 对应 plugins.toml：
//
//	disabled   = ["experimental.lua"]
//	extensions = [".lua"]
type PluginConfig struct {
	Disabled   []string `toml:"disabled"`
	Extensions []string `toml:"extensions"`
}

// LoadPluginConfig 读取插件配置；文件不存在时返回零值。
func LoadPluginConfig(path string) (PluginConfig, error) {
	var pc PluginConfig
	if path == "" {
		return pc, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return pc, nil
	}
	if err != nil {
		return pc, fmt.Errorf("app: read %s: %w", path, err)
	}
	md, err := toml.Decode(string(b), &pc)
	if err != nil {
		return pc, fmt.Errorf("app: parse %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return pc, fmt.Errorf("app: %s: unknown keys %v", path, undec)
	}
	return pc, nil
}

// Package envfile 负责各模块 config/<mod>/.env 的生成与加载。
package envfile

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	mainEnv  = ".env"
	localEnv = "local.env"
)

// BaseDir 优先工作目录，其次可执行文件所在目录。
func BaseDir() string {
	base, err := os.Getwd()
	if err != nil || base == "" {
		if exe, e := os.Executable(); e == nil {
			base = filepath.Dir(exe)
		}
	}
	return base
}

// Header 生成默认 .env 的注释头。
func Header(title string) string {
	return "# Auto-generated on " + time.Now().Format(time.RFC3339) + "\n" +
		"# " + title + "\n\n"
}

// Init 确保 <base>/<dir>/.env 存在（不存在则写入 defaults），
// 然后 Load .env、Overload local.env。已存在的进程环境变量优先于 .env。
func Init(tag, base, dir string, defaults []byte) string {
	if base == "" {
		log.Printf("[%s] base dir not found; skip init", tag)
		return ""
	}
	cfgDir := filepath.Join(base, dir)
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		log.Printf("[%s] mkdir %s: %v", tag, cfgDir, err)
		return ""
	}

	envPath := filepath.Join(cfgDir, mainEnv)
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		if err := os.WriteFile(envPath, defaults, 0o644); err != nil {
			log.Printf("[%s] write default env: %v", tag, err)
		} else {
			log.Printf("[%s] created %s", tag, envPath)
		}
	}

	_ = godotenv.Load(envPath)
	_ = godotenv.Overload(filepath.Join(cfgDir, localEnv))
	log.Printf("[%s] loaded %s", tag, cfgDir)
	return cfgDir
}

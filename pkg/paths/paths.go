package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	once       sync.Once
	cachedRoot string
	cachedErr  error
)

// Root 依次尝试：PROJECT_ROOT、可执行文件向上找 go.mod、工作目录向上找 go.mod。
// 结果只计算一次。
func Root() (string, error) {
	once.Do(func() {
		// 1) 显式指定
		if v := strings.TrimSpace(os.Getenv("PROJECT_ROOT")); v != "" {
			if isDir(v) {
				cachedRoot = v
				return
			}
		}

		// 2) 部署时可执行文件与 go.mod 同目录
		if exe, err := os.Executable(); err == nil {
			if r, ok := findRoot(filepath.Dir(exe)); ok {
				cachedRoot = r
				return
			}
		}

		// 3) 从当前工作目录向上找 go.mod（方便本地运行 `go run` / IDE）
		if wd, err := os.Getwd(); err == nil {
			if r, ok := findRoot(wd); ok {
				cachedRoot = r
				return
			}
		}

		cachedErr = errors.New("paths: project root not found (no go.mod upward)")
	})
	if cachedErr != nil {
		return "", cachedErr
	}
	return cachedRoot, nil
}

// Join = filepath.Join(Root(), elems...)
func Join(elems ...string) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	all := append([]string{root}, elems...)
	return filepath.Join(all...), nil
}

func findRoot(start string) (string, bool) {
	dir := start
	for i := 0; i < 50; i++ {
		if fileExists(filepath.Join(dir, "go.mod")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

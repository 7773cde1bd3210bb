package settings

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Merge 用 patch 的顶层键覆盖 base 中的同名键，其余字段保持不变。
// 嵌套对象整体替换，不做深合并。
func Merge(base, patch []byte) ([]byte, error) {
	if !isObject(patch) {
		return nil, ErrInvalidPatch
	}
	out := []byte("{}")
	if isObject(base) {
		out = append([]byte(nil), base...)
	}

	var err error
	gjson.ParseBytes(patch).ForEach(func(k, v gjson.Result) bool {
		// 空键无法表示为 sjson 路径
		if k.String() == "" {
			err = fmt.Errorf("%w: empty key", ErrInvalidPatch)
			return false
		}
		out, err = sjson.SetRawBytes(out, escapeKey(k.String()), []byte(v.Raw))
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`:`, `\:`,
)

// sjson 路径里的特殊字符需要转义，键名按字面处理。
func escapeKey(k string) string { return pathEscaper.Replace(k) }

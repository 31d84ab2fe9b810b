// Package conv 从 YAML/JSON 解析得到的参数表（map[string]any）中按类型取值。
// 取不到或无法转换时一律返回调用方给的默认值，不报错。
package conv

import (
	"time"

	"github.com/spf13/cast"
)

// ToFloat64 把数值或数字字符串转为 float64，bool 视为 1/0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}

// String 读取字符串参数，数字会被格式化为字符串。
func String(params map[string]any, key, def string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// Int64 读取整数参数。YAML 常给出 int，JSON 给出 float64，数字字符串也接受；bool 不接受。
func Int64(params map[string]any, key string, def int64) int64 {
	v, ok := number(params, key)
	if !ok {
		return def
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return def
	}
	return n
}

// Float64 读取浮点参数，bool 不接受。
func Float64(params map[string]any, key string, def float64) float64 {
	v, ok := number(params, key)
	if !ok {
		return def
	}
	f, ok := ToFloat64(v)
	if !ok {
		return def
	}
	return f
}

// Duration 读取时长参数：字符串按 time.ParseDuration 解析（如 "3s"、"150ms"），
// 纯数字按 unit 计。
func Duration(params map[string]any, key string, unit, def time.Duration) time.Duration {
	v, ok := params[key]
	if !ok || v == nil {
		return def
	}
	if s, isStr := v.(string); isStr {
		d, err := time.ParseDuration(s)
		if err != nil {
			return def
		}
		return d
	}
	n, ok := number(params, key)
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(n)
	if err != nil {
		return def
	}
	return time.Duration(f * float64(unit))
}

func number(params map[string]any, key string) (any, bool) {
	v, ok := params[key]
	if !ok || v == nil {
		return nil, false
	}
	if _, isBool := v.(bool); isBool {
		return nil, false
	}
	return v, true
}

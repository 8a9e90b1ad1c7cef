package util

import (
	"strconv"
	"strings"
)

// ClampInt 解析整数参数，解析失败取默认值，并限制在 [min, max] 区间
func ClampInt(raw string, def, min, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = def
	}
	if n < min {
		n = min
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

// ParseLimit 解析失败或为 0 时取默认值，范围由调用方限制
func ParseLimit(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n == 0 {
		return def
	}
	return n
}

// ParseOffset 解析偏移量，非法或负数时为 0
func ParseOffset(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// SplitList 合并重复参数与逗号分隔参数，去掉空白项
func SplitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ParseBoolFlag 解析 true/1/false/0，无法识别时 ok 为 false
func ParseBoolFlag(raw string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// BoolInt 将布尔值输出为 0/1
func BoolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// EscapeLike 转义 LIKE 通配符，配合 ESCAPE '!' 使用
func EscapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

package agents

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// sentinelBlanks 视为空值的占位符（大小写不敏感）
var sentinelBlanks = map[string]struct{}{
	"null":    {},
	"n/a":     {},
	"na":      {},
	"none":    {},
	"unknown": {},
	"missing": {},
	"-":       {},
	"--":      {},
	"?":       {},
	"???":     {},
}

// isBlank nil 或去空白后为空字符串
func isBlank(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// isEffectivelyBlank 在 isBlank 基础上识别占位符
func isEffectivelyBlank(value interface{}) bool {
	if isBlank(value) {
		return true
	}
	_, ok := sentinelBlanks[strings.ToLower(strings.TrimSpace(toString(value)))]
	return ok
}

// toString 单元格的字符串表示，nil 为 "null"
func toString(value interface{}) string {
	if value == nil {
		return "null"
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return ""
	}
	return s
}

// toFloat 解析数值单元格；布尔值、NaN 与无穷不算数值
func toFloat(value interface{}) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case nil, bool:
		return 0, false
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isNumeric 是否可解析为数值
func isNumeric(value interface{}) bool {
	_, ok := toFloat(value)
	return ok
}

// numericValues 提取可解析的数值
func numericValues(values []interface{}) []float64 {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := toFloat(v); ok {
			nums = append(nums, f)
		}
	}
	return nums
}

// mode 出现次数最多的值，次数相同取最先出现者
func mode(values []interface{}) (interface{}, bool) {
	if len(values) == 0 {
		return nil, false
	}
	counts := make(map[string]int, len(values))
	firstSeen := make(map[string]interface{}, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		key := toString(v)
		if _, seen := firstSeen[key]; !seen {
			firstSeen[key] = v
			order = append(order, key)
		}
		counts[key]++
	}

	best := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[best] {
			best = key
		}
	}
	return firstSeen[best], true
}

// mean 算术平均
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

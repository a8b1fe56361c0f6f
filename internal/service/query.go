package service

import (
	"strconv"
)

// BuildFilter 把外部传入的原始查询参数转换成存储层过滤条件
// 入参都是未分型的字符串（来自URL查询串），需要先归一化成记录字段的实际类型；
// 不在白名单内的键一律静默丢弃，防止任意字段注入查询
func BuildFilter(raw map[string]string, allowed []string) map[string]interface{} {
	filter := make(map[string]interface{})

	for _, field := range allowed {
		value, ok := raw[field]
		if !ok {
			continue
		}

		// 类型归一化："true"/"false" 转布尔，数字串转数字，其余保持字符串
		switch {
		case value == "true":
			filter[field] = true
		case value == "false":
			filter[field] = false
		default:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				filter[field] = n
			} else if f, err := strconv.ParseFloat(value, 64); err == nil {
				filter[field] = f
			} else {
				filter[field] = value
			}
		}
	}

	return filter
}

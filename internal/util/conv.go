package util

import "strconv"

// MustParseUint 路由参数里的数字 ID。解析失败按 0 处理，
// 0 不对应任何记录，后续查库自然报 not found
func MustParseUint(s string) uint {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

package util

import (
	"strconv"
)

// StrSliceToUInt64Slice 将字符串切片转换为 uint64 切片
func StrSliceToUInt64Slice(strs []string) ([]uint64, error) {
	res := make([]uint64, 0, len(strs))
	for _, s := range strs {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

// PtrUint64 用于将 uint64 转换为 *uint64，0 视为空
func PtrUint64(i uint64) *uint64 {
	if i == 0 {
		return nil
	}
	return &i
}

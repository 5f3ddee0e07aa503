package util

import (
	"strings"
	"time"
)

// GetMidnight 获取指定时间所在时区当天零点
func GetMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey 按指定时区将时间归入自然日，格式 YYYY-MM-DD
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// DayRange 返回 [start, end] 区间内按自然日递增的日期序列（含首尾）
func DayRange(start, end time.Time, loc *time.Location) []string {
	days := make([]string, 0)
	if end.Before(start) {
		return days
	}
	cur := GetMidnight(start.In(loc))
	last := GetMidnight(end.In(loc))
	for !cur.After(last) {
		days = append(days, cur.Format(time.DateOnly))
		cur = cur.AddDate(0, 0, 1)
	}
	return days
}

// ParseDate 解析 YYYY-MM-DD 或 RFC3339 格式的日期
// dateOnly 为 true 表示输入不带时间部分
func ParseDate(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err = time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	return t, false, err
}

// EndOfDay 当天最后一纳秒
func EndOfDay(t time.Time) time.Time {
	return GetMidnight(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// LoadLocation 加载时区，名称为空时使用 UTC
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

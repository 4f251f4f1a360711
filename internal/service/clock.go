package service

import "time"

// Clock 提供当前时间，测试中可替换为固定时钟
type Clock interface {
	Now() time.Time
}

// ClockFunc 函数适配 Clock
type ClockFunc func() time.Time

// Now 返回当前时间
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock 系统时钟
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock 返回固定时间的时钟
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func resolveClock(clock Clock) Clock {
	if clock == nil {
		return SystemClock
	}
	return clock
}

// CivilDate 取 t 所在时区的日历日期，统一表示为 UTC 零点（促销日期的存储形式）
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// storedDate 还原存储的促销日期，驱动可能以本地时区返回
func storedDate(t time.Time) time.Time {
	return CivilDate(t.UTC())
}

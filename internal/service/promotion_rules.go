package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"
)

// ClockTime 一天内的时刻（自零点起的秒数），负数表示未设置
type ClockTime int

const (
	unsetClockTime ClockTime = -1
	secondsPerDay            = 24 * 60 * 60
)

// ParseClockTime 解析 HH:MM 或 HH:MM:SS
func ParseClockTime(raw string) (ClockTime, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return unsetClockTime, fmt.Errorf("%w: %q", ErrWeeklyRuleInvalid, raw)
	}
	limits := []int{23, 59, 59}
	values := make([]int, 3)
	for i, part := range parts {
		if len(part) != 2 {
			return unsetClockTime, fmt.Errorf("%w: %q", ErrWeeklyRuleInvalid, raw)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > limits[i] {
			return unsetClockTime, fmt.Errorf("%w: %q", ErrWeeklyRuleInvalid, raw)
		}
		values[i] = n
	}
	return ClockTime(values[0]*3600 + values[1]*60 + values[2]), nil
}

// ClockTimeOf 取时间点的时刻部分
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// Valid 是否为一天内的合法时刻
func (c ClockTime) Valid() bool {
	return c >= 0 && c < secondsPerDay
}

// String 输出 HH:MM:SS
func (c ClockTime) String() string {
	if !c.Valid() {
		return ""
	}
	v := int(c)
	return fmt.Sprintf("%02d:%02d:%02d", v/3600, (v%3600)/60, v%60)
}

// Short 输出 HH:MM，秒数非零时保留秒
func (c ClockTime) Short() string {
	if !c.Valid() {
		return ""
	}
	if int(c)%60 != 0 {
		return c.String()
	}
	v := int(c)
	return fmt.Sprintf("%02d:%02d", v/3600, (v%3600)/60)
}

var dayNames = map[time.Weekday]string{
	time.Monday:    constants.DayMonday,
	time.Tuesday:   constants.DayTuesday,
	time.Wednesday: constants.DayWednesday,
	time.Thursday:  constants.DayThursday,
	time.Friday:    constants.DayFriday,
	time.Saturday:  constants.DaySaturday,
	time.Sunday:    constants.DaySunday,
}

// DayName 星期的存储名称
func DayName(day time.Weekday) string {
	return dayNames[day]
}

// ParseDayOfWeek 解析星期名称（MONDAY..SUNDAY，忽略大小写）
func ParseDayOfWeek(raw string) (time.Weekday, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	for day, name := range dayNames {
		if name == normalized {
			return day, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: day_of_week %q", ErrWeeklyRuleInvalid, raw)
}

// TimeWindow 每周某天的一个时段
type TimeWindow struct {
	Day   time.Weekday
	Start ClockTime
	End   ClockTime
}

// NewTimeWindow 从字符串构造时段并校验开始早于结束
func NewTimeWindow(day, start, end string) (TimeWindow, error) {
	weekday, err := ParseDayOfWeek(day)
	if err != nil {
		return TimeWindow{}, err
	}
	startAt, err := ParseClockTime(start)
	if err != nil {
		return TimeWindow{}, err
	}
	endAt, err := ParseClockTime(end)
	if err != nil {
		return TimeWindow{}, err
	}
	window := TimeWindow{Day: weekday, Start: startAt, End: endAt}
	if err := window.validateRange(); err != nil {
		return TimeWindow{}, err
	}
	return window, nil
}

// TimeWindowFromRule 将存储的规则转为时段，时刻无法解析时视为未设置
func TimeWindowFromRule(rule models.PromotionWeeklyRule) TimeWindow {
	window := TimeWindow{Start: unsetClockTime, End: unsetClockTime}
	if day, err := ParseDayOfWeek(rule.DayOfWeek); err == nil {
		window.Day = day
	}
	if start, err := ParseClockTime(rule.StartTime); err == nil {
		window.Start = start
	}
	if end, err := ParseClockTime(rule.EndTime); err == nil {
		window.End = end
	}
	return window
}

// ToRule 转为存储模型
func (w TimeWindow) ToRule(promotionID uint) models.PromotionWeeklyRule {
	return models.PromotionWeeklyRule{
		PromotionID: promotionID,
		DayOfWeek:   DayName(w.Day),
		StartTime:   w.Start.String(),
		EndTime:     w.End.String(),
	}
}

func (w TimeWindow) complete() bool {
	return w.Start.Valid() && w.End.Valid()
}

func (w TimeWindow) validateRange() error {
	if !w.complete() {
		return fmt.Errorf("%w: %s 缺少开始或结束时间", ErrWeeklyRuleInvalid, DayName(w.Day))
	}
	if w.Start >= w.End {
		return fmt.Errorf("%w: %s %s", ErrWeeklyRuleInvalidRange, DayName(w.Day), w.RangeString())
	}
	return nil
}

// Overlaps 同一天且区间相交（首尾相接不算重叠）
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	if w.Day != other.Day || !w.complete() || !other.complete() {
		return false
	}
	return w.Start < other.End && other.Start < w.End
}

// Contains 时刻是否落在时段内（含边界）
func (w TimeWindow) Contains(at ClockTime) bool {
	return w.complete() && at >= w.Start && at <= w.End
}

// RangeString 输出 HH:MM-HH:MM
func (w TimeWindow) RangeString() string {
	return w.Start.Short() + "-" + w.End.Short()
}

// ValidateWeeklyRules 校验时段集合：每个时段开始早于结束，同一天内互不重叠
func ValidateWeeklyRules(windows []TimeWindow) error {
	for _, window := range windows {
		if !window.complete() {
			continue
		}
		if err := window.validateRange(); err != nil {
			return err
		}
	}
	return detectRuleConflicts(windows)
}

// detectRuleConflicts 按天分组后排序扫描，相邻时段 end > next.start 即冲突
func detectRuleConflicts(windows []TimeWindow) error {
	byDay := make(map[time.Weekday][]TimeWindow)
	for _, window := range windows {
		byDay[window.Day] = append(byDay[window.Day], window)
	}

	days := make([]time.Weekday, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return weekdayIndex(days[i]) < weekdayIndex(days[j]) })

	for _, day := range days {
		group := byDay[day]
		if len(group) < 2 {
			continue
		}
		sorted := make([]TimeWindow, 0, len(group))
		for _, window := range group {
			if window.complete() {
				sorted = append(sorted, window)
			}
		}
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
		for i := 0; i+1 < len(sorted); i++ {
			current, next := sorted[i], sorted[i+1]
			if current.End > next.Start {
				return &RuleConflictError{Day: DayName(day), First: current, Second: next}
			}
		}
	}
	return nil
}

// weekdayIndex 周一为 0，周日为 6
func weekdayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}

package service

import (
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"
)

// IsPromotionCurrentlyValid 判断促销在 now 所在日期是否有效。
// 周期促销只要启用即视为有效，具体时刻需再用 IsWeeklyRuleActiveAt 判断。
func IsPromotionCurrentlyValid(promotion *models.Promotion, now time.Time) bool {
	if promotion == nil || !promotion.IsActive {
		return false
	}
	switch promotion.Type {
	case constants.PromotionTypeRecurring:
		return true
	case constants.PromotionTypeTemporary:
		return withinDateRange(promotion.StartsAt, promotion.EndsAt, now)
	default:
		return false
	}
}

// IsPromotionExpired 临时促销的结束日期早于今天
func IsPromotionExpired(promotion *models.Promotion, now time.Time) bool {
	if promotion == nil || promotion.Type != constants.PromotionTypeTemporary || promotion.EndsAt == nil {
		return false
	}
	return storedDate(*promotion.EndsAt).Before(CivilDate(now))
}

// IsWeeklyRuleActiveAt 规则星期与 now 相同、时刻落在 [start, end] 内且所属促销启用
func IsWeeklyRuleActiveAt(rule models.PromotionWeeklyRule, promotionActive bool, now time.Time) bool {
	if !promotionActive {
		return false
	}
	day, err := ParseDayOfWeek(rule.DayOfWeek)
	if err != nil || day != now.Weekday() {
		return false
	}
	return TimeWindowFromRule(rule).Contains(ClockTimeOf(now))
}

// IsPromotionRedeemableAt 下单兑换时的校验：临时促销按 now 判断日期，周期促销要求当前有生效时段
func IsPromotionRedeemableAt(promotion *models.Promotion, now time.Time) bool {
	if !IsPromotionCurrentlyValid(promotion, now) {
		return false
	}
	if promotion.Type != constants.PromotionTypeRecurring {
		return true
	}
	for _, rule := range promotion.WeeklyRules {
		if IsWeeklyRuleActiveAt(rule, promotion.IsActive, now) {
			return true
		}
	}
	return false
}

func withinDateRange(startsAt, endsAt *time.Time, now time.Time) bool {
	today := CivilDate(now)
	if startsAt != nil && storedDate(*startsAt).After(today) {
		return false
	}
	if endsAt != nil && storedDate(*endsAt).Before(today) {
		return false
	}
	return true
}

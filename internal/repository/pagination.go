package repository

import (
	"time"

	"gorm.io/gorm"
)

// countAndPage 先统计总数再截取当前页，pageSize<=0 时返回全部
func countAndPage(query *gorm.DB, page, pageSize int) (*gorm.DB, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if pageSize <= 0 {
		return query, total, nil
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize), total, nil
}

// whereCreatedBetween 按创建时间闭区间过滤
func whereCreatedBetween(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	return query
}

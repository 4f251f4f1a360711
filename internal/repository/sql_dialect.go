package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// buildContainsCondition 构建多列忽略大小写的模糊匹配条件，并返回参数数量。
func buildContainsCondition(db *gorm.DB, columns ...string) (string, int) {
	return buildContainsConditionByDialect(dbDialectName(db), columns...)
}

func buildContainsConditionByDialect(dialect string, columns ...string) (string, int) {
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		trimmed := strings.TrimSpace(column)
		if trimmed == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(dialect)) {
		case "postgres", "postgresql":
			parts = append(parts, fmt.Sprintf("%s ILIKE ?", trimmed))
		default:
			// sqlite 的 LIKE 只对 ASCII 忽略大小写，统一转小写比较
			parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE ?", trimmed))
		}
	}
	return strings.Join(parts, " OR "), len(parts)
}

// containsPattern 生成模糊匹配参数
func containsPattern(keyword string) string {
	return "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"
}

// repeatLikeArgs 生成重复的 LIKE 参数列表。
func repeatLikeArgs(like string, count int) []interface{} {
	args := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		args = append(args, like)
	}
	return args
}

package shared

import (
	"strconv"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout      = "2006-01-02"
	defaultPageSize = 20
	maxPageSize     = 100
)

// ParseIDParam 解析路径中的正整数 ID，失败时直接返回 400。
func ParseIDParam(c *gin.Context, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(key))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		RespondError(c, response.CodeBadRequest, "error.id_invalid", nil)
		return 0, false
	}
	return uint(parsed), true
}

// ParsePageQuery 读取 page / page_size 并归一化。
func ParsePageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	return NormalizePagination(page, pageSize)
}

// NormalizePagination 页码从 1 开始，每页条数限制在 [1, 100]。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// ParseDate 按 YYYY-MM-DD 在指定时区解析日期，空串返回 nil。
func ParseDate(raw string, loc *time.Location) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(dateLayout, trimmed, loc)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ParseDateQuery 读取日期查询参数，格式错误时直接返回 400。
func ParseDateQuery(c *gin.Context, key string, loc *time.Location) (*time.Time, bool) {
	parsed, err := ParseDate(c.Query(key), loc)
	if err != nil {
		RespondError(c, response.CodeBadRequest, "error.date_invalid", nil)
		return nil, false
	}
	return parsed, true
}

// ParseBoolQuery 读取可选布尔查询参数。
func ParseBoolQuery(c *gin.Context, key string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return nil, false
	}
	return &parsed, true
}

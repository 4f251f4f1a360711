package shared

import (
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/i18n"
	"github.com/foodtruck-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 带 request_id 的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID := c.GetString("request_id"); requestID != "" {
		return logger.SW("request_id", requestID)
	}
	return logger.S()
}

// RespondError 按 i18n 键返回错误响应
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithMsg(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondErrorWithMsg 返回已本地化的错误消息，err 非空时记录日志（5xx 为 error 级别）
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		kv := []interface{}{"code", code, "path", c.FullPath(), "message", msg, "error", err}
		if code >= response.CodeInternal {
			RequestLog(c).Errorw("handler_error", kv...)
		} else {
			RequestLog(c).Warnw("handler_error", kv...)
		}
	}
	response.Error(c, code, msg)
}

package shared

import (
	"github.com/foodtruck-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
	ContextTokenKey  = "token"
)

// CurrentUserID 当前登录账号 ID，未登录时直接返回 401。
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok {
		RespondError(c, response.CodeInternal, "error.user_id_type_invalid", nil)
		return 0, false
	}
	if userID == 0 {
		RespondError(c, response.CodeUnauthorized, "error.user_id_invalid", nil)
		return 0, false
	}
	return userID, true
}

// CurrentRole 当前登录账号角色
func CurrentRole(c *gin.Context) string {
	return c.GetString(ContextRoleKey)
}

// CurrentToken 当前请求携带的 token
func CurrentToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}

package public

import (
	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// respondServiceError 业务错误统一映射，未识别的错误按 fallbackKey 返回 500
func respondServiceError(c *gin.Context, err error, fallbackKey string) {
	handlershared.RespondServiceError(c, err, fallbackKey)
}

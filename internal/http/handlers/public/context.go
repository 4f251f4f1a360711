package public

import (
	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.CurrentUserID(c)
}

func getToken(c *gin.Context) string {
	return handlershared.CurrentToken(c)
}

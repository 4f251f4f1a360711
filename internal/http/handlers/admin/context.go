package admin

import (
	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// getStaffID 当前员工 ID
func getStaffID(c *gin.Context) (uint, bool) {
	return handlershared.CurrentUserID(c)
}

func getToken(c *gin.Context) string {
	return handlershared.CurrentToken(c)
}

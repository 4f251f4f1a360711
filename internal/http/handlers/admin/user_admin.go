package admin

import (
	"strings"

	"github.com/foodtruck-next/internal/cache"
	"github.com/foodtruck-next/internal/constants"
	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 启用/禁用账号请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 账号列表（仅管理员）
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Role:        strings.ToUpper(strings.TrimSpace(c.Query("role"))),
		Status:      strings.ToLower(strings.TrimSpace(c.Query("status"))),
		CreatedFrom: from,
		CreatedTo:   to,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// GetAdminUser 账号详情
func (h *Handler) GetAdminUser(c *gin.Context) {
	userID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.UserRepo.GetByID(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return
	}
	response.Success(c, user)
}

// UpdateUserStatus 启用或禁用账号，禁用后已签发的 token 立即失效
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	userID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if status == constants.UserStatusDisabled && userID == c.GetUint(handlershared.ContextUserIDKey) {
		respondError(c, response.CodeBadRequest, "error.cannot_disable_self", nil)
		return
	}

	user, err := h.UserRepo.GetByID(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return
	}
	user.Status = status
	if err := h.UserRepo.Update(user); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	_ = cache.DelUserAuthState(c.Request.Context(), userID)

	requestLog(c).Infow("admin_user_status_updated", "user_id", userID, "status", status, "operator_id", c.GetUint(handlershared.ContextUserIDKey))
	response.Success(c, user)
}

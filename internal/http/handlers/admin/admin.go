package admin

import (
	"time"

	"github.com/foodtruck-next/internal/constants"
	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/models"

	"github.com/gin-gonic/gin"
)

// LoginRequest 员工登录请求，username 可为用户名或邮箱
type LoginRequest struct {
	Username       string                              `json:"username" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	ExpiresAt string       `json:"expires_at"`
}

// StaffLogin 员工登录
func (h *Handler) StaffLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if h.CaptchaService != nil {
		if err := h.CaptchaService.Verify(constants.CaptchaSceneStaffLogin, req.CaptchaPayload.ToServicePayload()); err != nil {
			respondServiceError(c, err, "error.captcha_unavailable")
			return
		}
	}

	user, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		requestLog(c).Warnw("staff_login_failed", "login", req.Username, "client_ip", c.ClientIP(), "error", err)
		respondServiceError(c, err, "error.internal")
		return
	}
	requestLog(c).Infow("staff_login_success", "user_id", user.ID, "role", user.Role)

	response.Success(c, LoginResponse{
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// StaffLogout 员工注销当前 token
func (h *Handler) StaffLogout(c *gin.Context) {
	if err := h.AuthService.Logout(c.Request.Context(), getToken(c)); err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{"logged_out": true})
}

// GetStaffMe 当前员工信息与权限快照
func (h *Handler) GetStaffMe(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.GetUserByID(staffID)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(user.Role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"user":     user,
		"policies": policies,
	})
}

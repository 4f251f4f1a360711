package public

import (
	"strings"
	"time"

	"github.com/foodtruck-next/internal/constants"
	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/i18n"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 顾客注册请求
type RegisterRequest struct {
	Name           string                              `json:"name"`
	Username       string                              `json:"username" binding:"required"`
	Email          string                              `json:"email" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	Locale         string                              `json:"locale"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserLoginRequest 顾客登录请求，login 可为用户名或邮箱
type UserLoginRequest struct {
	Login          string                              `json:"login" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	RememberMe     bool                                `json:"remember_me"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserRegister 顾客注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneRegister, req.CaptchaPayload) {
		return
	}

	locale := req.Locale
	if strings.TrimSpace(locale) == "" {
		locale = i18n.ResolveLocale(c)
	}
	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Locale:   locale,
	})
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, authPayload(user, token, expiresAt))
}

// UserLogin 顾客登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneLogin, req.CaptchaPayload) {
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Login, req.Password, req.RememberMe)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, authPayload(user, token, expiresAt))
}

// UserRefresh 用当前 token 换取新 token，旧 token 立即失效
func (h *Handler) UserRefresh(c *gin.Context) {
	user, token, expiresAt, err := h.UserAuthService.Refresh(c.Request.Context(), getToken(c))
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, authPayload(user, token, expiresAt))
}

// UserLogout 注销当前 token
func (h *Handler) UserLogout(c *gin.Context) {
	if err := h.UserAuthService.Logout(c.Request.Context(), getToken(c)); err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{"logged_out": true})
}

// GetCurrentUser 获取当前顾客信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(userID)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, user)
}

// GetImageCaptcha 获取图片验证码挑战
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		respondError(c, response.CodeInternal, "error.captcha_unavailable", service.ErrCaptchaConfigInvalid)
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondServiceError(c, err, "error.captcha_unavailable")
		return
	}
	response.Success(c, gin.H{
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

func (h *Handler) verifyCaptcha(c *gin.Context, scene string, payload handlershared.CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	if err := h.CaptchaService.Verify(scene, payload.ToServicePayload()); err != nil {
		respondServiceError(c, err, "error.captcha_unavailable")
		return false
	}
	return true
}

func authPayload(user *models.User, token string, expiresAt time.Time) gin.H {
	return gin.H{
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
		"user":       user,
	}
}

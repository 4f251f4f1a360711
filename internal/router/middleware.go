package router

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/authz"
	"github.com/foodtruck-next/internal/cache"
	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/i18n"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/repository"
	"github.com/foodtruck-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// 鉴权通过后写入上下文的键
const (
	contextUserIDKey   = "user_id"
	contextUsernameKey = "username"
	contextUserRoleKey = "user_role"
	contextTokenKey    = "token"
)

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// tokenAuth 描述一类 token（员工/顾客）的解析与注销校验方式
type tokenAuth struct {
	parse     func(token string) (*service.JWTClaims, error)
	isRevoked func(ctx context.Context, token string) (bool, error)
	userRepo  repository.UserRepository
	staffOnly bool
}

// StaffJWTAuthMiddleware 员工 JWT 鉴权中间件，仅放行员工与管理员
func StaffJWTAuthMiddleware(authService *service.AuthService, userRepo repository.UserRepository) gin.HandlerFunc {
	if authService == nil {
		return jwtAuthMiddleware(tokenAuth{userRepo: userRepo, staffOnly: true})
	}
	return jwtAuthMiddleware(tokenAuth{
		parse:     authService.ParseJWT,
		isRevoked: authService.IsTokenRevoked,
		userRepo:  userRepo,
		staffOnly: true,
	})
}

// UserJWTAuthMiddleware 顾客 JWT 鉴权中间件
func UserJWTAuthMiddleware(userAuthService *service.UserAuthService, userRepo repository.UserRepository) gin.HandlerFunc {
	if userAuthService == nil {
		return jwtAuthMiddleware(tokenAuth{userRepo: userRepo})
	}
	return jwtAuthMiddleware(tokenAuth{
		parse:     userAuthService.ParseUserJWT,
		isRevoked: userAuthService.IsTokenRevoked,
		userRepo:  userRepo,
	})
}

func jwtAuthMiddleware(auth tokenAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.parse == nil || auth.isRevoked == nil || auth.userRepo == nil {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "error.auth_header_missing")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "error.auth_header_invalid")
			return
		}
		tokenString := strings.TrimSpace(parts[1])

		claims, err := auth.parse(tokenString)
		if err != nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		revoked, err := auth.isRevoked(c.Request.Context(), tokenString)
		if err != nil {
			logger.Errorw("auth_token_blacklist_check_failed", "user_id", claims.UserID, "error", err)
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		if revoked {
			abortUnauthorized(c, "error.token_revoked")
			return
		}

		state, err := cache.LoadUserAuthState(c.Request.Context(), claims.UserID, auth.userRepo.GetByID)
		if err != nil || state == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		if !state.Active() {
			abortUnauthorized(c, "error.user_disabled")
			return
		}
		var issuedAt *time.Time
		if claims.IssuedAt != nil {
			issuedAt = &claims.IssuedAt.Time
		}
		if !state.AcceptsToken(claims.TokenVersion, issuedAt) {
			abortUnauthorized(c, "error.token_revoked")
			return
		}
		if auth.staffOnly && !state.IsStaff() {
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.staff_only"))
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Set(contextUsernameKey, claims.Username)
		c.Set(contextUserRoleKey, state.Role)
		c.Set(contextTokenKey, tokenString)
		c.Next()
	}
}

// AdminRBACMiddleware 后台 RBAC 鉴权中间件，按账号角色匹配路由权限
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		role := strings.TrimSpace(c.GetString(contextUserRoleKey))
		if role == "" {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceRole(role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"user_id", c.GetUint(contextUserIDKey),
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			msg := i18n.T(i18n.ResolveLocale(c), "error.forbidden")
			response.Forbidden(c, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, key string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.Unauthorized(c, msg)
	c.Abort()
}


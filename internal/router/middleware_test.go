package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foodtruck-next/internal/authz"
	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"
	"github.com/foodtruck-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

type middlewareTestEnv struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	authService *service.AuthService
	userAuth    *service.UserAuthService
}

func setupMiddlewareTestEnv(t *testing.T) *middlewareTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:router_middleware_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RevokedToken{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{
		JWT:     config.JWTConfig{SecretKey: "staff-secret", ExpireHours: 12},
		UserJWT: config.JWTConfig{SecretKey: "user-secret", ExpireHours: 24},
	}
	userRepo := repository.NewUserRepository(db)
	blacklist := service.NewDBTokenBlacklist(repository.NewRevokedTokenRepository(db), nil)
	return &middlewareTestEnv{
		db:          db,
		userRepo:    userRepo,
		authService: service.NewAuthService(cfg, userRepo, blacklist),
		userAuth:    service.NewUserAuthService(cfg, userRepo, blacklist),
	}
}

func (e *middlewareTestEnv) createUser(t *testing.T, username, role, status string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Status:       status,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func performAuthRequest(r *gin.Engine, method, path, token string) (int, map[string]interface{}) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	code := 0
	if value, ok := resp["status_code"].(float64); ok {
		code = int(value)
	}
	return code, resp
}

func TestUserJWTAuthMiddlewareWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(UserJWTAuthMiddleware(nil, nil))
	r.GET("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0})
	})

	code, _ := performAuthRequest(r, http.MethodGet, "/orders", "anything")
	if code != 401 {
		t.Fatalf("status_code want 401 got %d", code)
	}
}

func TestUserJWTAuthMiddlewareSetsContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := setupMiddlewareTestEnv(t)
	user := env.createUser(t, "lucia", constants.RoleUser, constants.UserStatusActive)
	token, _, err := env.userAuth.GenerateUserJWT(user, 0)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	r := gin.New()
	r.Use(UserJWTAuthMiddleware(env.userAuth, env.userRepo))
	r.GET("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status_code": 0,
			"user_id":     c.GetUint(contextUserIDKey),
			"role":        c.GetString(contextUserRoleKey),
			"token":       c.GetString(contextTokenKey),
		})
	})

	code, resp := performAuthRequest(r, http.MethodGet, "/orders", token)
	if code != 0 {
		t.Fatalf("status_code want 0 got %d (%v)", code, resp)
	}
	if uint(resp["user_id"].(float64)) != user.ID || resp["role"] != constants.RoleUser || resp["token"] != token {
		t.Fatalf("unexpected context values: %v", resp)
	}

	if code, _ := performAuthRequest(r, http.MethodGet, "/orders", ""); code != 401 {
		t.Fatalf("missing header want 401 got %d", code)
	}
	staffToken, _, err := env.authService.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate staff token failed: %v", err)
	}
	if code, _ := performAuthRequest(r, http.MethodGet, "/orders", staffToken); code != 401 {
		t.Fatalf("token signed with staff secret want 401 got %d", code)
	}
}

func TestUserJWTAuthMiddlewareRejectsRevokedAndDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := setupMiddlewareTestEnv(t)
	user := env.createUser(t, "martin", constants.RoleUser, constants.UserStatusActive)

	r := gin.New()
	r.Use(UserJWTAuthMiddleware(env.userAuth, env.userRepo))
	r.GET("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0})
	})

	revokedToken, _, err := env.userAuth.GenerateUserJWT(user, 0)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if err := env.userAuth.Logout(context.Background(), revokedToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	code, resp := performAuthRequest(r, http.MethodGet, "/orders", revokedToken)
	if code != 401 || !strings.Contains(fmt.Sprint(resp["msg"]), "sesión") {
		t.Fatalf("revoked token want 401 token_revoked got %d %v", code, resp)
	}

	liveToken, _, err := env.userAuth.GenerateUserJWT(user, 0)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if err := env.db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if code, _ := performAuthRequest(r, http.MethodGet, "/orders", liveToken); code != 401 {
		t.Fatalf("disabled user want 401 got %d", code)
	}
}

func TestStaffJWTAuthMiddlewareRejectsCustomer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := setupMiddlewareTestEnv(t)
	customer := env.createUser(t, "cliente", constants.RoleUser, constants.UserStatusActive)
	employee := env.createUser(t, "cocina", constants.RoleEmployee, constants.UserStatusActive)

	r := gin.New()
	r.Use(StaffJWTAuthMiddleware(env.authService, env.userRepo))
	r.GET("/admin/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "role": c.GetString(contextUserRoleKey)})
	})

	customerToken, _, err := env.authService.GenerateJWT(customer)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if code, _ := performAuthRequest(r, http.MethodGet, "/admin/orders", customerToken); code != 403 {
		t.Fatalf("customer want 403 got %d", code)
	}

	employeeToken, _, err := env.authService.GenerateJWT(employee)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	code, resp := performAuthRequest(r, http.MethodGet, "/admin/orders", employeeToken)
	if code != 0 || resp["role"] != constants.RoleEmployee {
		t.Fatalf("employee want 0 got %d %v", code, resp)
	}
}

func TestAdminRBACMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := setupMiddlewareTestEnv(t)
	authzService, err := authz.NewService(env.db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	newRouter := func(role string) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(contextUserRoleKey, role)
			c.Next()
		})
		admin := r.Group("/api/v1/admin")
		admin.Use(AdminRBACMiddleware(authzService))
		ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status_code": 0}) }
		admin.GET("/orders", ok)
		admin.PATCH("/orders/:id/status", ok)
		admin.POST("/maintenance/promotion-sweep", ok)
		return r
	}

	cases := []struct {
		name   string
		role   string
		method string
		path   string
		want   int
	}{
		{name: "employee lists orders", role: constants.RoleEmployee, method: http.MethodGet, path: "/api/v1/admin/orders", want: 0},
		{name: "employee moves status", role: constants.RoleEmployee, method: http.MethodPatch, path: "/api/v1/admin/orders/9/status", want: 0},
		{name: "employee cannot sweep", role: constants.RoleEmployee, method: http.MethodPost, path: "/api/v1/admin/maintenance/promotion-sweep", want: 403},
		{name: "admin sweeps", role: constants.RoleAdmin, method: http.MethodPost, path: "/api/v1/admin/maintenance/promotion-sweep", want: 0},
		{name: "customer denied", role: constants.RoleUser, method: http.MethodGet, path: "/api/v1/admin/orders", want: 403},
		{name: "missing role", role: "", method: http.MethodGet, path: "/api/v1/admin/orders", want: 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, resp := performAuthRequest(newRouter(tc.role), tc.method, tc.path, "")
			if code != tc.want {
				t.Fatalf("status_code want %d got %d (%v)", tc.want, code, resp)
			}
		})
	}
}

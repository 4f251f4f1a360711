package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/foodtruck-next/internal/authz"
	"github.com/foodtruck-next/internal/cache"
	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/constants"
	adminhandlers "github.com/foodtruck-next/internal/http/handlers/admin"
	publichandlers "github.com/foodtruck-next/internal/http/handlers/public"
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.DefaultCachePrefix
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	staffLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:staff_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的图片）
	r.Static(cfg.Upload.PublicPrefix, cfg.Upload.Dir)

	apiV1 := r.Group("/api/v1")
	{
		// 菜单与促销（公开）
		apiV1.GET("/categories", publicHandler.GetCategories)
		apiV1.GET("/products", publicHandler.GetProducts)
		apiV1.GET("/products/:id", publicHandler.GetProduct)
		apiV1.GET("/promotions/current", publicHandler.GetCurrentPromotions)
		apiV1.GET("/promotions/now", publicHandler.GetRedeemablePromotions)
		apiV1.GET("/promotions/active", publicHandler.GetActivePromotions)
		apiV1.GET("/promotions/search", publicHandler.SearchPromotions)
		apiV1.GET("/promotions/:id", publicHandler.GetPromotion)
		apiV1.GET("/captcha/image", publicHandler.GetImageCaptcha)

		// 顾客认证
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("login")), publicHandler.UserLogin)
		}

		// 顾客接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(c.UserAuthService, c.UserRepo))
		{
			user.POST("/auth/refresh", publicHandler.UserRefresh)
			user.POST("/auth/logout", publicHandler.UserLogout)
			user.GET("/me", publicHandler.GetCurrentUser)

			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/recent", publicHandler.ListRecentOrders)
			user.GET("/orders/last", publicHandler.GetLastOrder)
			user.GET("/orders/active", publicHandler.HasActiveOrders)
			user.GET("/orders/status/:status", publicHandler.ListOrdersByStatus)
			user.GET("/orders/stream", publicHandler.StreamOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.PUT("/orders/:id", publicHandler.UpdateOrder)
			user.PATCH("/orders/:id/tip", publicHandler.UpdateOrderTip)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)
		}

		// 员工与管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/auth/login", RateLimitMiddleware(redisClient, staffLoginRule, KeyByIPAndJSONField("username")), adminHandler.StaffLogin)

			// 需要鉴权的接口
			authorized := admin.Group("")
			authorized.Use(StaffJWTAuthMiddleware(c.AuthService, c.UserRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.POST("/auth/logout", adminHandler.StaffLogout)
				authorized.GET("/auth/me", adminHandler.GetStaffMe)

				// 订单看板
				authorized.GET("/orders", adminHandler.GetAdminOrders)
				authorized.GET("/orders/active", adminHandler.GetActiveOrders)
				authorized.GET("/orders/pending", adminHandler.GetPendingOrders)
				authorized.GET("/orders/status/:status", adminHandler.GetOrdersByStatus)
				authorized.GET("/orders/statistics", adminHandler.GetOrderStatistics)
				authorized.GET("/orders/top-selling", adminHandler.GetTopSelling)
				authorized.GET("/orders/stream", adminHandler.StreamOrders)
				authorized.GET("/orders/:id", adminHandler.GetAdminOrder)
				authorized.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
				authorized.PATCH("/orders/:id/estimated-time", adminHandler.UpdateOrderEstimatedTime)
				authorized.GET("/users/:id/orders", adminHandler.GetUserOrders)

				// 账号管理（仅管理员）
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)
				authorized.PATCH("/users/:id/status", adminHandler.UpdateUserStatus)

				// 促销管理
				authorized.GET("/promotions", adminHandler.GetAdminPromotions)
				authorized.POST("/promotions", adminHandler.CreatePromotion)
				authorized.GET("/promotions/count", adminHandler.CountPromotionsByType)
				authorized.GET("/promotions/expired", adminHandler.GetExpiredPromotions)
				authorized.GET("/promotions/expiring", adminHandler.GetExpiringPromotions)
				authorized.GET("/promotions/type/:type", adminHandler.GetPromotionsByType)
				authorized.GET("/promotions/by-product/:id", adminHandler.GetPromotionsByProduct)
				authorized.GET("/promotions/:id", adminHandler.GetAdminPromotion)
				authorized.PUT("/promotions/:id", adminHandler.UpdatePromotion)
				authorized.PATCH("/promotions/:id/toggle", adminHandler.TogglePromotion)
				authorized.POST("/promotions/:id/image", adminHandler.UploadPromotionImage)
				authorized.DELETE("/promotions/:id", adminHandler.DeletePromotion)

				// 菜品管理
				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.PATCH("/products/:id/status", adminHandler.UpdateProductStatus)
				authorized.POST("/products/:id/image", adminHandler.UploadProductImage)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				// 分类管理
				authorized.GET("/categories", adminHandler.GetAdminCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 维护任务（仅管理员）
				authorized.POST("/maintenance/promotion-sweep", adminHandler.RunPromotionSweep)

				// 权限查看
				authorized.GET("/authz/roles", adminHandler.ListBuiltinRoles)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/auth/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}

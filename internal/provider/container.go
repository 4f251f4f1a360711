package provider

import (
	"context"
	"time"

	"github.com/foodtruck-next/internal/authz"
	"github.com/foodtruck-next/internal/cache"
	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/i18n"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/queue"
	"github.com/foodtruck-next/internal/realtime"
	"github.com/foodtruck-next/internal/repository"
	"github.com/foodtruck-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Broker      realtime.Broker

	// Token 黑名单：Redis 启用时使用 Redis，否则落库
	TokenBlacklist   service.TokenBlacklist
	DBTokenBlacklist *service.DBTokenBlacklist

	// Repositories
	UserRepo         repository.UserRepository
	RevokedTokenRepo repository.RevokedTokenRepository
	OrderRepo        repository.OrderRepository
	ProductRepo      repository.ProductRepository
	CategoryRepo     repository.CategoryRepository
	PromotionRepo    repository.PromotionRepository

	// Services
	AuthzService             *authz.Service
	AuthService              *service.AuthService
	UserAuthService          *service.UserAuthService
	CaptchaService           *service.CaptchaService
	UploadService            *service.UploadService
	ProductService           *service.ProductService
	CategoryService          *service.CategoryService
	PromotionService         *service.PromotionService
	PromotionAdminService    *service.PromotionAdminService
	PromotionExpiryService   *service.PromotionExpiryService
	OrderService             *service.OrderService
	OrderNotificationService *service.OrderNotificationService
	TelegramNotifyService    *service.TelegramNotifyService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化基础设施
	c.initInfrastructure()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.RevokedTokenRepo = repository.NewRevokedTokenRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
}

func (c *Container) initInfrastructure() {
	bufferSize := c.Config.Notify.Realtime.ClientBufferSize
	if cache.Enabled() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(pingCtx); err != nil {
			logger.Warnw("provider_redis_ping_failed", "error", err)
		}
		cancel()
		c.TokenBlacklist = cache.NewRedisTokenBlacklist(cache.Client(), cache.Prefix())
		c.Broker = realtime.NewRedisBroker(cache.Client(), c.Config.Notify.Realtime.ChannelPrefix, bufferSize)
		logger.Infow("provider_realtime_broker", "kind", "redis")
	} else {
		c.DBTokenBlacklist = service.NewDBTokenBlacklist(c.RevokedTokenRepo, service.SystemClock)
		c.TokenBlacklist = c.DBTokenBlacklist
		c.Broker = realtime.NewMemoryBroker(bufferSize)
		logger.Infow("provider_realtime_broker", "kind", "memory")
	}

	telegram, err := service.NewTelegramNotifyService(c.Config.Notify.Telegram)
	if err != nil {
		logger.Warnw("provider_init_telegram_failed", "error", err)
	}
	c.TelegramNotifyService = telegram
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	loc := c.Config.Promotion.Location()
	clock := service.SystemClock

	// 内存分发器无法跨进程，此时通知直接在下单进程内分发
	notifyQueue := c.QueueClient
	if !cache.Enabled() {
		notifyQueue = nil
	}
	var telegram service.TelegramSender
	if c.TelegramNotifyService != nil {
		telegram = c.TelegramNotifyService
	}
	c.OrderNotificationService = service.NewOrderNotificationService(c.Broker, telegram, notifyQueue, i18n.DefaultLocale)

	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.TokenBlacklist)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.TokenBlacklist)
	c.UploadService = service.NewUploadService(c.Config)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo, c.PromotionRepo, c.UploadService)
	c.PromotionService = service.NewPromotionService(c.PromotionRepo, clock, loc)
	c.PromotionAdminService = service.NewPromotionAdminService(c.PromotionRepo, c.ProductRepo, c.UploadService, clock, loc)
	c.PromotionExpiryService = service.NewPromotionExpiryService(c.PromotionRepo, clock, loc)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.PromotionRepo, c.OrderNotificationService, clock, c.Config.Order, loc)
}

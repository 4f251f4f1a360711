package constants

// 订单状态常量
const (
	OrderStatusPending       = "PENDING"
	OrderStatusInPreparation = "IN_PREPARATION"
	OrderStatusReady         = "READY"
	OrderStatusDelivered     = "DELIVERED"
	OrderStatusCancelled     = "CANCELLED"
)

// 订单项类型常量
const (
	OrderItemTypeProduct   = "PRODUCT"
	OrderItemTypePromotion = "PROMOTION"
)

// 促销类型常量
const (
	PromotionTypeTemporary = "TEMPORARY"
	PromotionTypeRecurring = "RECURRING"
)

// 促销字段约束
const (
	PromotionNameMaxLength = 120
)

// 星期常量
const (
	DayMonday    = "MONDAY"
	DayTuesday   = "TUESDAY"
	DayWednesday = "WEDNESDAY"
	DayThursday  = "THURSDAY"
	DayFriday    = "FRIDAY"
	DaySaturday  = "SATURDAY"
	DaySunday    = "SUNDAY"
)

// 用户角色常量
const (
	RoleUser     = "ROLE_USER"
	RoleEmployee = "ROLE_EMPLOYEE"
	RoleAdmin    = "ROLE_ADMIN"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 订单通知类型常量
const (
	NotificationOrderCreated              = "ORDER_CREATED"
	NotificationOrderUpdated              = "ORDER_UPDATED"
	NotificationOrderStatusChanged        = "ORDER_STATUS_CHANGED"
	NotificationOrderEstimatedTimeChanged = "ORDER_ESTIMATED_TIME_CHANGED"
	NotificationOrderCancelled            = "ORDER_CANCELLED"
)

// 通知接收方常量
const (
	NotifyAudienceEmployees = "employees"
	NotifyAudienceUser      = "user"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin      = "login"
	CaptchaSceneRegister   = "register"
	CaptchaSceneStaffLogin = "staff_login"
)

// 队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 缓存默认配置常量
const (
	DefaultCachePrefix = "ft"
)

// 站点语言常量
const (
	LocaleEsAR = "es-AR"
	LocaleEnUS = "en-US"
	LocaleZhCN = "zh-CN"
)

// SupportedLocales 支持的语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleEsAR, LocaleEnUS, LocaleZhCN}

// 异步任务类型常量
const (
	TaskOrderNotify          = "order:notify"
	TaskPromotionExpireSweep = "promotion:expire_sweep"
)

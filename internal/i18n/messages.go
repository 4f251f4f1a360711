package i18n

import "github.com/foodtruck-next/internal/constants"

var messages = map[string]map[string]string{
	constants.LocaleEsAR: {
		"error.bad_request":         "Solicitud inválida",
		"error.validation_failed":   "Los datos enviados no son válidos",
		"error.unauthorized":        "No autorizado",
		"error.token_invalid":       "Token inválido o vencido",
		"error.token_revoked":       "La sesión fue cerrada",
		"error.auth_header_missing": "Falta el encabezado de autorización",
		"error.auth_header_invalid": "Formato de autorización inválido",
		"error.jwt_secret_missing":  "Configuración de autenticación incompleta",
		"error.forbidden":           "No tenés permiso para esta operación",
		"error.not_found":           "Recurso no encontrado",
		"error.conflict":            "El recurso está en conflicto con el estado actual",
		"error.invalid_transition":  "Cambio de estado no permitido",
		"error.cannot_modify":       "El pedido ya no se puede modificar",
		"error.expired":             "El recurso está vencido",
		"error.too_many_requests":   "Demasiadas solicitudes, probá de nuevo en %d segundos",
		"error.invalid_credentials": "Usuario o contraseña incorrectos",
		"error.user_disabled":       "La cuenta está deshabilitada",
		"error.captcha_required":    "Completá el captcha",
		"error.captcha_invalid":     "Captcha incorrecto",
		"error.internal":            "Error interno del servidor",

		"error.password_min_length":      "La contraseña debe tener al menos %d caracteres",
		"error.password_max_length":      "La contraseña no puede superar los %d bytes",
		"error.password_require_upper":   "La contraseña debe incluir una mayúscula",
		"error.password_require_lower":   "La contraseña debe incluir una minúscula",
		"error.password_require_number":  "La contraseña debe incluir un número",
		"error.password_require_special": "La contraseña debe incluir un carácter especial",
		"error.email_invalid":            "El email no es válido",
		"error.username_invalid":         "El usuario debe tener entre 3 y 60 caracteres alfanuméricos",
		"error.email_exists":             "El email ya está registrado",
		"error.username_exists":          "El usuario ya está en uso",
		"error.staff_only":               "Solo el personal puede ingresar al panel",
		"error.login_too_many":           "Demasiados intentos, probá de nuevo en %d segundos",
		"error.rate_limit_unavailable":   "No se pudo verificar el límite de solicitudes",
		"error.id_invalid":               "Identificador inválido",
		"error.date_invalid":             "Fecha inválida, usá el formato AAAA-MM-DD",
		"error.user_id_invalid":          "Usuario inválido",
		"error.user_id_type_invalid":     "Tipo de usuario inválido en la sesión",
		"error.user_not_found":           "Usuario no encontrado",
		"error.order_not_found":          "Pedido no encontrado",
		"error.order_item_invalid":       "Los ítems del pedido no son válidos",
		"error.order_cannot_cancel":      "El pedido ya no se puede cancelar",
		"error.order_status_unchanged":   "El pedido ya está en ese estado",
		"error.active_order_limit":       "Alcanzaste el máximo de pedidos en curso",
		"error.estimated_time_invalid":   "El tiempo estimado debe tener el formato MM:SS",
		"error.product_not_found":        "Producto no encontrado",
		"error.product_unavailable":      "El producto no está disponible",
		"error.product_in_use":           "El producto está incluido en promociones",
		"error.category_not_found":       "Categoría no encontrada",
		"error.category_exists":          "Ya existe una categoría con ese nombre",
		"error.category_in_use":          "La categoría todavía tiene productos",
		"error.promotion_not_found":      "Promoción no encontrada",
		"error.promotion_unavailable":    "La promoción no está vigente en este momento",
		"error.promotion_expired":        "La promoción está vencida y no se puede activar",
		"error.promotion_name_exists":    "Ya existe una promoción activa con ese nombre",
		"error.promotion_delete_active":  "Desactivá la promoción antes de eliminarla",
		"error.weekly_rule_conflict":     "Franjas superpuestas el %s: %s y %s",
		"error.products_missing":         "Productos inexistentes: %s",
		"error.upload_invalid":           "El archivo no es válido",
		"error.captcha_unavailable":      "Captcha no disponible",
		"error.realtime_unavailable":     "Las notificaciones en vivo no están disponibles",
		"error.cannot_disable_self":      "No podés deshabilitar tu propia cuenta",

		"notify.order_created":               "Nuevo pedido #%d de %s por $%s",
		"notify.order_updated":               "El pedido #%d de %s fue modificado",
		"notify.order_cancelled":             "El pedido #%d fue cancelado",
		"notify.order_status_changed":        "Tu pedido #%d ahora está: %s",
		"notify.order_estimated_time_changed": "Tiempo estimado del pedido #%d: %s",

		"status.PENDING":        "pendiente",
		"status.IN_PREPARATION": "en preparación",
		"status.READY":          "listo para retirar",
		"status.DELIVERED":      "entregado",
		"status.CANCELLED":      "cancelado",
	},
	constants.LocaleEnUS: {
		"error.bad_request":         "Bad request",
		"error.validation_failed":   "Validation failed",
		"error.unauthorized":        "Unauthorized",
		"error.token_invalid":       "Invalid or expired token",
		"error.token_revoked":       "Session has been closed",
		"error.auth_header_missing": "Missing authorization header",
		"error.auth_header_invalid": "Invalid authorization header",
		"error.jwt_secret_missing":  "Authentication is not configured",
		"error.forbidden":           "You are not allowed to perform this operation",
		"error.not_found":           "Resource not found",
		"error.conflict":            "Resource conflicts with the current state",
		"error.invalid_transition":  "Status change not allowed",
		"error.cannot_modify":       "The order can no longer be modified",
		"error.expired":             "The resource has expired",
		"error.too_many_requests":   "Too many requests, try again in %d seconds",
		"error.invalid_credentials": "Wrong username or password",
		"error.user_disabled":       "The account is disabled",
		"error.captcha_required":    "Please complete the captcha",
		"error.captcha_invalid":     "Wrong captcha",
		"error.internal":            "Internal server error",

		"error.password_min_length":      "Password must be at least %d characters long",
		"error.password_max_length":      "Password must not exceed %d bytes",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",
		"error.email_invalid":            "Invalid email address",
		"error.username_invalid":         "Username must be 3 to 60 alphanumeric characters",
		"error.email_exists":             "Email is already registered",
		"error.username_exists":          "Username is already taken",
		"error.staff_only":               "Only staff accounts can sign in here",
		"error.login_too_many":           "Too many attempts, try again in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiter is unavailable",
		"error.id_invalid":               "Invalid identifier",
		"error.date_invalid":             "Invalid date, expected YYYY-MM-DD",
		"error.user_id_invalid":          "Invalid user",
		"error.user_id_type_invalid":     "Invalid user type in session",
		"error.user_not_found":           "User not found",
		"error.order_not_found":          "Order not found",
		"error.order_item_invalid":       "Invalid order items",
		"error.order_cannot_cancel":      "The order can no longer be cancelled",
		"error.order_status_unchanged":   "The order is already in that status",
		"error.active_order_limit":       "You reached the maximum number of active orders",
		"error.estimated_time_invalid":   "Estimated time must use the MM:SS format",
		"error.product_not_found":        "Product not found",
		"error.product_unavailable":      "The product is not available",
		"error.product_in_use":           "The product is referenced by promotions",
		"error.category_not_found":       "Category not found",
		"error.category_exists":          "A category with that name already exists",
		"error.category_in_use":          "The category still has products",
		"error.promotion_not_found":      "Promotion not found",
		"error.promotion_unavailable":    "The promotion is not available right now",
		"error.promotion_expired":        "The promotion has expired and cannot be activated",
		"error.promotion_name_exists":    "An active promotion with that name already exists",
		"error.promotion_delete_active":  "Deactivate the promotion before deleting it",
		"error.weekly_rule_conflict":     "Overlapping windows on %s: %s and %s",
		"error.products_missing":         "Missing products: %s",
		"error.upload_invalid":           "Invalid upload",
		"error.captcha_unavailable":      "Captcha is unavailable",
		"error.realtime_unavailable":     "Live notifications are unavailable",
		"error.cannot_disable_self":      "You cannot disable your own account",

		"notify.order_created":               "New order #%d from %s for $%s",
		"notify.order_updated":               "Order #%d from %s was modified",
		"notify.order_cancelled":             "Order #%d was cancelled",
		"notify.order_status_changed":        "Your order #%d is now: %s",
		"notify.order_estimated_time_changed": "Estimated time for order #%d: %s",

		"status.PENDING":        "pending",
		"status.IN_PREPARATION": "in preparation",
		"status.READY":          "ready for pickup",
		"status.DELIVERED":      "delivered",
		"status.CANCELLED":      "cancelled",
	},
	constants.LocaleZhCN: {
		"error.bad_request":         "请求参数错误",
		"error.validation_failed":   "参数校验失败",
		"error.unauthorized":        "未登录",
		"error.token_invalid":       "token 无效或已过期",
		"error.token_revoked":       "登录状态已失效",
		"error.auth_header_missing": "缺少认证头",
		"error.auth_header_invalid": "认证头格式错误",
		"error.jwt_secret_missing":  "认证配置缺失",
		"error.forbidden":           "无权执行该操作",
		"error.not_found":           "资源不存在",
		"error.conflict":            "资源状态冲突",
		"error.invalid_transition":  "状态流转不合法",
		"error.cannot_modify":       "订单已无法修改",
		"error.expired":             "资源已过期",
		"error.too_many_requests":   "请求过于频繁，请 %d 秒后再试",
		"error.invalid_credentials": "用户名或密码错误",
		"error.user_disabled":       "账号已被禁用",
		"error.captcha_required":    "请完成验证码校验",
		"error.captcha_invalid":     "验证码错误",
		"error.internal":            "服务器内部错误",

		"error.password_min_length":      "密码长度至少 %d 位",
		"error.password_max_length":      "密码长度不能超过 %d 字节",
		"error.password_require_upper":   "密码需包含大写字母",
		"error.password_require_lower":   "密码需包含小写字母",
		"error.password_require_number":  "密码需包含数字",
		"error.password_require_special": "密码需包含特殊字符",
		"error.email_invalid":            "邮箱格式无效",
		"error.username_invalid":         "用户名需为 3 到 60 位字母数字",
		"error.email_exists":             "邮箱已被注册",
		"error.username_exists":          "用户名已被占用",
		"error.staff_only":               "仅员工账号可登录后台",
		"error.login_too_many":           "尝试次数过多，请 %d 秒后再试",
		"error.rate_limit_unavailable":   "限流服务不可用",
		"error.id_invalid":               "ID 无效",
		"error.date_invalid":             "日期格式无效，应为 YYYY-MM-DD",
		"error.user_id_invalid":          "用户无效",
		"error.user_id_type_invalid":     "会话中的用户类型无效",
		"error.user_not_found":           "用户不存在",
		"error.order_not_found":          "订单不存在",
		"error.order_item_invalid":       "订单项无效",
		"error.order_cannot_cancel":      "订单当前状态无法取消",
		"error.order_status_unchanged":   "订单已处于该状态",
		"error.active_order_limit":       "进行中的订单数量已达上限",
		"error.estimated_time_invalid":   "预计时间格式应为 MM:SS",
		"error.product_not_found":        "菜品不存在",
		"error.product_unavailable":      "菜品不可售",
		"error.product_in_use":           "菜品仍被促销引用",
		"error.category_not_found":       "分类不存在",
		"error.category_exists":          "分类名称已存在",
		"error.category_in_use":          "分类下仍有菜品",
		"error.promotion_not_found":      "促销不存在",
		"error.promotion_unavailable":    "促销当前不可用",
		"error.promotion_expired":        "促销已过期，无法启用",
		"error.promotion_name_exists":    "已存在同名的启用促销",
		"error.promotion_delete_active":  "启用中的促销不能删除",
		"error.weekly_rule_conflict":     "%s 的时段 %s 与 %s 重叠",
		"error.products_missing":         "菜品不存在: %s",
		"error.upload_invalid":           "上传文件无效",
		"error.captcha_unavailable":      "验证码不可用",
		"error.realtime_unavailable":     "实时通知不可用",
		"error.cannot_disable_self":      "不能禁用自己的账号",

		"notify.order_created":               "新订单 #%d，来自 %s，金额 $%s",
		"notify.order_updated":               "订单 #%d（%s）已修改",
		"notify.order_cancelled":             "订单 #%d 已取消",
		"notify.order_status_changed":        "你的订单 #%d 当前状态：%s",
		"notify.order_estimated_time_changed": "订单 #%d 预计时间：%s",

		"status.PENDING":        "待处理",
		"status.IN_PREPARATION": "制作中",
		"status.READY":          "待取餐",
		"status.DELIVERED":      "已交付",
		"status.CANCELLED":      "已取消",
	},
}

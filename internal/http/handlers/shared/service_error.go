package shared

import (
	"errors"
	"strconv"
	"strings"

	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/i18n"
	"github.com/foodtruck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// keyedError 携带 i18n 键与参数的业务错误（如密码策略）
type keyedError interface {
	error
	Key() string
	Args() []interface{}
}

// serviceErrorRules 具体错误优先于错误类别匹配
var serviceErrorRules = []MappedError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
	{Target: service.ErrInvalidToken, Code: response.CodeUnauthorized, Key: "error.token_invalid"},
	{Target: service.ErrTokenRevoked, Code: response.CodeUnauthorized, Key: "error.token_revoked"},
	{Target: service.ErrNotStaff, Code: response.CodeForbidden, Key: "error.staff_only"},
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrCaptchaConfigInvalid, Code: response.CodeInternal, Key: "error.captcha_unavailable"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrInvalidUsername, Code: response.CodeBadRequest, Key: "error.username_invalid"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrUsernameExists, Code: response.CodeConflict, Key: "error.username_exists"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderItemsRequired, Code: response.CodeBadRequest, Key: "error.order_item_invalid"},
	{Target: service.ErrInvalidOrderItem, Code: response.CodeBadRequest, Key: "error.order_item_invalid"},
	{Target: service.ErrEstimatedTimeInvalid, Code: response.CodeBadRequest, Key: "error.estimated_time_invalid"},
	{Target: service.ErrOrderCannotCancel, Code: response.CodeConflict, Key: "error.order_cannot_cancel"},
	{Target: service.ErrOrderStatusUnchanged, Code: response.CodeConflict, Key: "error.order_status_unchanged"},
	{Target: service.ErrActiveOrderLimit, Code: response.CodeConflict, Key: "error.active_order_limit"},
	{Target: service.ErrProductUnavailable, Code: response.CodeBadRequest, Key: "error.product_unavailable"},
	{Target: service.ErrPromotionUnavailable, Code: response.CodeBadRequest, Key: "error.promotion_unavailable"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrProductInUse, Code: response.CodeConflict, Key: "error.product_in_use"},
	{Target: service.ErrCategoryNotFound, Code: response.CodeNotFound, Key: "error.category_not_found"},
	{Target: service.ErrCategoryExists, Code: response.CodeConflict, Key: "error.category_exists"},
	{Target: service.ErrCategoryInUse, Code: response.CodeConflict, Key: "error.category_in_use"},
	{Target: service.ErrPromotionNotFound, Code: response.CodeNotFound, Key: "error.promotion_not_found"},
	{Target: service.ErrPromotionNameExists, Code: response.CodeConflict, Key: "error.promotion_name_exists"},
	{Target: service.ErrPromotionDeleteActive, Code: response.CodeConflict, Key: "error.promotion_delete_active"},
	{Target: service.ErrPromotionExpired, Code: response.CodeConflict, Key: "error.promotion_expired"},
	{Target: service.ErrUploadEmpty, Code: response.CodeBadRequest, Key: "error.upload_invalid"},
	{Target: service.ErrUploadTooLarge, Code: response.CodeBadRequest, Key: "error.upload_invalid"},
	{Target: service.ErrUploadTypeInvalid, Code: response.CodeBadRequest, Key: "error.upload_invalid"},
}

var errorKindRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrValidationFailed, Code: response.CodeBadRequest, Key: "error.validation_failed"},
	{Target: service.ErrConflict, Code: response.CodeConflict, Key: "error.conflict"},
	{Target: service.ErrInvalidTransition, Code: response.CodeConflict, Key: "error.invalid_transition"},
	{Target: service.ErrCannotModify, Code: response.CodeConflict, Key: "error.cannot_modify"},
	{Target: service.ErrAccessDenied, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrExpired, Code: response.CodeConflict, Key: "error.expired"},
}

// RespondServiceError 按业务错误返回对应响应，无法识别时按 fallbackKey 返回 500 并记录日志。
func RespondServiceError(c *gin.Context, err error, fallbackKey string) {
	locale := i18n.ResolveLocale(c)

	var keyed keyedError
	if errors.As(err, &keyed) {
		RespondErrorWithMsg(c, response.CodeBadRequest, i18n.Tf(locale, keyed.Key(), keyed.Args()...), nil)
		return
	}
	var ruleConflict *service.RuleConflictError
	if errors.As(err, &ruleConflict) {
		msg := i18n.Tf(locale, "error.weekly_rule_conflict", ruleConflict.Day, ruleConflict.First.RangeString(), ruleConflict.Second.RangeString())
		RespondErrorWithMsg(c, response.CodeConflict, msg, nil)
		return
	}
	var missing *service.MissingProductsError
	if errors.As(err, &missing) {
		ids := make([]string, 0, len(missing.IDs))
		for _, id := range missing.IDs {
			ids = append(ids, strconv.FormatUint(uint64(id), 10))
		}
		RespondErrorWithMsg(c, response.CodeNotFound, i18n.Tf(locale, "error.products_missing", strings.Join(ids, ", ")), nil)
		return
	}

	for _, rules := range [][]MappedError{serviceErrorRules, errorKindRules} {
		for _, rule := range rules {
			if errors.Is(err, rule.Target) {
				RespondError(c, rule.Code, rule.Key, nil)
				return
			}
		}
	}
	RespondError(c, response.CodeInternal, fallbackKey, err)
}

package service

import (
	"errors"
	"fmt"
	"strings"
)

// 错误类别，具体错误通过 %w 归入其中一类，调用方用 errors.Is 判断类别
var (
	ErrNotFound          = errors.New("资源不存在")
	ErrValidationFailed  = errors.New("参数校验失败")
	ErrConflict          = errors.New("资源冲突")
	ErrInvalidTransition = errors.New("状态流转不合法")
	ErrCannotModify      = errors.New("当前状态不可修改")
	ErrAccessDenied      = errors.New("无权访问")
	ErrExpired           = errors.New("已过期")
)

// 促销相关错误
var (
	ErrPromotionNotFound         = fmt.Errorf("%w: 促销不存在", ErrNotFound)
	ErrPromotionNameInvalid      = fmt.Errorf("%w: 促销名称无效", ErrValidationFailed)
	ErrPromotionPriceInvalid     = fmt.Errorf("%w: 促销价格必须大于 0", ErrValidationFailed)
	ErrPromotionTypeInvalid      = fmt.Errorf("%w: 促销类型无效", ErrValidationFailed)
	ErrPromotionProductsRequired = fmt.Errorf("%w: 促销至少关联一个菜品", ErrValidationFailed)
	ErrPromotionDatesRequired    = fmt.Errorf("%w: 临时促销必须同时设置开始与结束日期", ErrValidationFailed)
	ErrPromotionDateRange        = fmt.Errorf("%w: 开始日期不能晚于结束日期", ErrValidationFailed)
	ErrPromotionEndsInPast       = fmt.Errorf("%w: 结束日期不能早于今天", ErrValidationFailed)
	ErrPromotionRulesNotAllowed  = fmt.Errorf("%w: 临时促销不能设置每周时段", ErrValidationFailed)
	ErrPromotionRulesRequired    = fmt.Errorf("%w: 周期促销至少需要一个每周时段", ErrValidationFailed)
	ErrPromotionDatesNotAllowed  = fmt.Errorf("%w: 周期促销不能设置日期", ErrValidationFailed)
	ErrWeeklyRuleInvalid         = fmt.Errorf("%w: 每周时段格式无效", ErrValidationFailed)
	ErrWeeklyRuleInvalidRange    = fmt.Errorf("%w: 时段开始时间必须早于结束时间", ErrValidationFailed)
	ErrPromotionNameExists       = fmt.Errorf("%w: 已存在同名的启用促销", ErrConflict)
	ErrPromotionDeleteActive     = fmt.Errorf("%w: 启用中的促销不能删除", ErrConflict)
	ErrPromotionExpired          = fmt.Errorf("%w: 促销已过期，无法启用", ErrExpired)
)

// 订单相关错误
var (
	ErrOrderNotFound         = fmt.Errorf("%w: 订单不存在", ErrNotFound)
	ErrOrderItemsRequired    = fmt.Errorf("%w: 订单至少包含一个订单项", ErrValidationFailed)
	ErrInvalidOrderItem      = fmt.Errorf("%w: 订单项无效", ErrValidationFailed)
	ErrOrderTipInvalid       = fmt.Errorf("%w: 小费不能为负数", ErrValidationFailed)
	ErrEstimatedTimeInvalid  = fmt.Errorf("%w: 预计时间格式应为 MM:SS", ErrValidationFailed)
	ErrOrderStatusInvalid    = fmt.Errorf("%w: 订单状态无效", ErrValidationFailed)
	ErrProductUnavailable    = fmt.Errorf("%w: 菜品不可售", ErrValidationFailed)
	ErrPromotionUnavailable  = fmt.Errorf("%w: 促销当前不可用", ErrValidationFailed)
	ErrActiveOrderLimit      = fmt.Errorf("%w: 进行中的订单数量已达上限", ErrConflict)
	ErrOrderCannotModify     = fmt.Errorf("%w: 订单已无法修改", ErrCannotModify)
	ErrOrderCannotCancel     = fmt.Errorf("%w: 订单当前状态无法取消", ErrInvalidTransition)
	ErrOrderAccessDenied     = fmt.Errorf("%w: 无权操作该订单", ErrAccessDenied)
	ErrOrderStatusUnchanged  = fmt.Errorf("%w: 订单已处于该状态", ErrInvalidTransition)
	ErrOrderDateRangeInvalid = fmt.Errorf("%w: 日期范围无效", ErrValidationFailed)
	ErrOrderFetchFailed      = errors.New("订单查询失败")
	ErrOrderUpdateFailed     = errors.New("订单更新失败")
)

// 目录相关错误
var (
	ErrProductNotFound  = fmt.Errorf("%w: 菜品不存在", ErrNotFound)
	ErrProductInvalid   = fmt.Errorf("%w: 菜品参数无效", ErrValidationFailed)
	ErrCategoryNotFound = fmt.Errorf("%w: 分类不存在", ErrNotFound)
	ErrCategoryInvalid  = fmt.Errorf("%w: 分类参数无效", ErrValidationFailed)
	ErrCategoryExists   = fmt.Errorf("%w: 分类名称已存在", ErrConflict)
	ErrCategoryInUse    = fmt.Errorf("%w: 分类下仍有菜品", ErrConflict)
	ErrProductInUse     = fmt.Errorf("%w: 菜品仍被促销引用", ErrConflict)
)

// 账号与鉴权相关错误
var (
	ErrUserNotFound         = fmt.Errorf("%w: 用户不存在", ErrNotFound)
	ErrInvalidCredentials   = errors.New("用户名或密码错误")
	ErrUserDisabled         = errors.New("账号已被禁用")
	ErrNotStaff             = fmt.Errorf("%w: 非员工账号", ErrAccessDenied)
	ErrEmailExists          = fmt.Errorf("%w: 邮箱已被注册", ErrConflict)
	ErrUsernameExists       = fmt.Errorf("%w: 用户名已被占用", ErrConflict)
	ErrInvalidEmail         = fmt.Errorf("%w: 邮箱格式无效", ErrValidationFailed)
	ErrInvalidUsername      = fmt.Errorf("%w: 用户名无效", ErrValidationFailed)
	ErrWeakPassword         = fmt.Errorf("%w: 密码强度不足", ErrValidationFailed)
	ErrInvalidToken         = errors.New("无效的 token")
	ErrTokenRevoked         = errors.New("token 已注销")
	ErrCaptchaRequired      = fmt.Errorf("%w: 请完成验证码校验", ErrValidationFailed)
	ErrCaptchaInvalid       = fmt.Errorf("%w: 验证码错误", ErrValidationFailed)
	ErrCaptchaConfigInvalid = errors.New("验证码配置无效")
)

// 上传相关错误
var (
	ErrUploadEmpty       = fmt.Errorf("%w: 上传文件为空", ErrValidationFailed)
	ErrUploadTooLarge    = fmt.Errorf("%w: 上传文件过大", ErrValidationFailed)
	ErrUploadTypeInvalid = fmt.Errorf("%w: 不支持的文件类型", ErrValidationFailed)
)

// RuleConflictError 同一天内两个时段重叠
type RuleConflictError struct {
	Day    string
	First  TimeWindow
	Second TimeWindow
}

func (e *RuleConflictError) Error() string {
	return fmt.Sprintf("每周时段冲突: %s %s 与 %s 重叠", e.Day, e.First.RangeString(), e.Second.RangeString())
}

// Unwrap 归类为冲突错误
func (e *RuleConflictError) Unwrap() error {
	return ErrConflict
}

// InvalidTransitionError 订单状态流转不合法
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("订单状态不能从 %s 变更为 %s", e.From, e.To)
}

// Unwrap 归类为状态流转错误
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// MissingProductsError 促销引用了不存在的菜品
type MissingProductsError struct {
	IDs []uint
}

func (e *MissingProductsError) Error() string {
	parts := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf("菜品不存在: %s", strings.Join(parts, ", "))
}

// Unwrap 归类为资源不存在
func (e *MissingProductsError) Unwrap() error {
	return ErrNotFound
}

// errorKinds 错误类别，按匹配优先级排列
var errorKinds = []error{
	ErrNotFound,
	ErrValidationFailed,
	ErrConflict,
	ErrInvalidTransition,
	ErrCannotModify,
	ErrAccessDenied,
	ErrExpired,
}

// ErrorKind 返回错误所属类别，无法归类时返回 nil
func ErrorKind(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

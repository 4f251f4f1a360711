package service

import (
	"unicode"

	"github.com/foodtruck-next/internal/config"
)

// bcrypt 只使用前 72 字节
const maxPasswordBytes = 72

// PasswordRuleError 密码不满足策略时返回，携带提示文案的 i18n 键
type PasswordRuleError struct {
	key  string
	args []interface{}
}

func (e *PasswordRuleError) Error() string { return "password policy: " + e.key }

func (e *PasswordRuleError) Is(target error) bool {
	return target == ErrWeakPassword || target == ErrValidationFailed
}

func (e *PasswordRuleError) Key() string { return e.key }

func (e *PasswordRuleError) Args() []interface{} { return e.args }

type passwordCharClass struct {
	required bool
	match    func(rune) bool
	key      string
}

func isSpecialRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if len(password) > maxPasswordBytes {
		return &PasswordRuleError{key: "error.password_max_length", args: []interface{}{maxPasswordBytes}}
	}
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return &PasswordRuleError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}

	classes := []passwordCharClass{
		{required: policy.RequireUpper, match: unicode.IsUpper, key: "error.password_require_upper"},
		{required: policy.RequireLower, match: unicode.IsLower, key: "error.password_require_lower"},
		{required: policy.RequireNumber, match: unicode.IsDigit, key: "error.password_require_number"},
		{required: policy.RequireSpecial, match: isSpecialRune, key: "error.password_require_special"},
	}
	for _, class := range classes {
		if !class.required {
			continue
		}
		found := false
		for _, r := range password {
			if class.match(r) {
				found = true
				break
			}
		}
		if !found {
			return &PasswordRuleError{key: class.key}
		}
	}
	return nil
}

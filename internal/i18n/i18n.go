package i18n

import (
	"fmt"
	"strings"

	"github.com/foodtruck-next/internal/constants"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 默认语言
const DefaultLocale = constants.LocaleEsAR

// T 翻译消息键，缺失时依次回退到默认语言与键本身
func T(locale, key string) string {
	if msg, ok := lookup(NormalizeLocale(locale), key); ok {
		return msg
	}
	for _, fallback := range constants.SupportedLocales {
		if msg, ok := lookup(fallback, key); ok {
			return msg
		}
	}
	return key
}

// Tf 翻译并格式化
func Tf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func lookup(locale, key string) (string, bool) {
	table, ok := messages[locale]
	if !ok {
		return "", false
	}
	msg, ok := table[key]
	return msg, ok && msg != ""
}

// NormalizeLocale 归一化语言标识，无法识别时返回默认语言
func NormalizeLocale(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return DefaultLocale
	}
	value = strings.ReplaceAll(value, "_", "-")
	for _, locale := range constants.SupportedLocales {
		if strings.EqualFold(locale, value) {
			return locale
		}
	}
	prefix := strings.ToLower(strings.SplitN(value, "-", 2)[0])
	for _, locale := range constants.SupportedLocales {
		if strings.HasPrefix(strings.ToLower(locale), prefix+"-") {
			return locale
		}
	}
	return DefaultLocale
}

// ResolveLocale 从请求解析语言：query lang > X-Locale > Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	if header := strings.TrimSpace(c.GetHeader("X-Locale")); header != "" {
		return NormalizeLocale(header)
	}
	accept := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if accept == "" {
		return DefaultLocale
	}
	first := strings.SplitN(accept, ",", 2)[0]
	first = strings.SplitN(first, ";", 2)[0]
	return NormalizeLocale(first)
}

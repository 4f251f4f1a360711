package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/i18n"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int // 超限后封禁时长，0 表示等待窗口结束
	MessageKey    string
}

// KEYS[1] 计数 key，KEYS[2] 封禁 key；ARGV 依次为窗口秒数、上限、封禁秒数
var rateLimitScript = redis.NewScript(`
local blocked = redis.call("TTL", KEYS[2])
if blocked > 0 then
	return {tonumber(ARGV[2]) + 1, blocked}
end
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
if current > tonumber(ARGV[2]) and tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], "1", "EX", ARGV[3])
	ttl = tonumber(ARGV[3])
end
return {current, ttl}
`)

// RateLimitMiddleware Redis 频率限制中间件，Redis 未启用时直接放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		count, ttl, err := runRateLimit(c, client, rule, rule.buildKey(c, keyFunc))
		if err != nil {
			abortRateLimit(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable"))
			return
		}
		if count > int64(rule.MaxRequests) {
			abortRateLimit(c, response.CodeTooManyRequests, i18n.Tf(i18n.ResolveLocale(c), rule.messageKey(), rule.retryAfter(ttl)))
			return
		}
		c.Next()
	}
}

func (r RateLimitRule) buildKey(c *gin.Context, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if r.Prefix == "" {
		return key
	}
	return r.Prefix + ":" + key
}

func (r RateLimitRule) messageKey() string {
	if key := strings.TrimSpace(r.MessageKey); key != "" {
		return key
	}
	return "error.too_many_requests"
}

// retryAfter 提示等待秒数，至少 1 秒
func (r RateLimitRule) retryAfter(ttl int64) int {
	wait := int(ttl)
	if wait < 1 {
		wait = r.WindowSeconds
	}
	if wait < 1 {
		wait = 1
	}
	return wait
}

func runRateLimit(c *gin.Context, client *redis.Client, rule RateLimitRule, key string) (int64, int64, error) {
	result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key, key + ":block"}, rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(result) < 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit reply: %v", result)
	}
	return result[0], result[1], nil
}

func abortRateLimit(c *gin.Context, code int, msg string) {
	response.Error(c, code, msg)
	c.Abort()
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

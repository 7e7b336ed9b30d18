package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"symptom-checker-go/pkg/log"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitMessage 是超过限流阈值时返回给用户的提示。
const RateLimitMessage = "Too many symptom checks. Please wait a moment and try again."

// Counter 是固定窗口计数器，由 database.RedisCounter 实现。
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter 按客户端 IP 对症状检查提交计数。HTTP 路由通过 Middleware 使用，
// WebSocket 会话对每条提交消息调用 Take。nil Limiter 总是放行。
type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
}

// NewLimiter 创建限流器。counter 为 nil 或 limit 非正时返回 nil，即不限流。
func NewLimiter(counter Counter, limit int, window time.Duration) *Limiter {
	if counter == nil || limit <= 0 {
		return nil
	}
	return &Limiter{counter: counter, limit: limit, window: window}
}

// Take 为 clientIP 计一次提交，返回窗口内计数以及是否超限。
// 计数失败时记录告警并放行，此时 count 为 0，不因限流组件不可用而拒绝用户。
func (l *Limiter) Take(ctx context.Context, clientIP string) (count int64, limited bool) {
	if l == nil {
		return 0, false
	}
	key := fmt.Sprintf("ratelimit:symptom:%s", clientIP)
	count, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		log.Warnf("限流计数失败，放行请求: key=%s, err=%v", key, err)
		return 0, false
	}
	return count, count > int64(l.limit)
}

// Middleware 返回对应的 Gin 中间件。
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		count, limited := l.Take(c.Request.Context(), c.ClientIP())
		if count == 0 {
			c.Next()
			return
		}

		remaining := int64(l.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if limited {
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": RateLimitMessage,
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}

// RateLimit 是 NewLimiter(counter, limit, window).Middleware() 的简写。
func RateLimit(counter Counter, limit int, window time.Duration) gin.HandlerFunc {
	return NewLimiter(counter, limit, window).Middleware()
}

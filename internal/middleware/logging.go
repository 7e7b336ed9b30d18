// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"symptom-checker-go/pkg/log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger 是一个 Gin 中间件，用于记录请求日志。
// 请求体与响应体中可能含有症状描述，因此只记录大小，不记录内容。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 记录请求开始时间
		startTime := time.Now()

		// 处理请求
		c.Next()

		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"requestBytes", c.Request.ContentLength,
			"responseBytes", c.Writer.Size(),
			"errors", c.Errors.ByType(gin.ErrorTypePrivate).String(),
		)
	}
}

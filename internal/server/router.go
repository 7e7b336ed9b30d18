// Package server 负责组装 Gin 路由。
package server

import (
	"symptom-checker-go/internal/handler"
	"symptom-checker-go/internal/middleware"
	"symptom-checker-go/internal/service"
	"symptom-checker-go/pkg/llm"
	"symptom-checker-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// Deps 汇总路由所需的全部依赖。Limiter 为 nil 时不限流。
type Deps struct {
	LLMClient      llm.Client
	SymptomService service.SymptomService
	AuditService   service.AuditService
	JWTManager     *token.JWTManager
	Limiter        *middleware.Limiter
}

// NewRouter 创建路由引擎并注册所有路由。
func NewRouter(d Deps) *gin.Engine {
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())
	r.SetHTMLTemplate(handler.LoadTemplates())

	limiter := d.Limiter.Middleware()

	healthHandler := handler.NewHealthHandler(d.LLMClient)
	pageHandler := handler.NewPageHandler(d.SymptomService, d.AuditService)
	symptomHandler := handler.NewSymptomHandler(d.SymptomService, d.AuditService)
	sessionHandler := handler.NewSessionHandler(d.SymptomService, d.AuditService, d.JWTManager, d.Limiter)

	r.GET("/health", healthHandler.Health)

	// 服务端渲染的表单页面
	r.GET("/symptom-checker", pageHandler.Show)
	r.POST("/symptom-checker", limiter, pageHandler.Submit)

	apiV1 := r.Group("/api/v1")
	{
		ai := apiV1.Group("/ai")
		{
			ai.POST("/symptom-check", limiter, symptomHandler.Check)
		}

		// 实时表单会话 (WebSocket)，限流按消息在 SessionHandler 中进行
		checker := apiV1.Group("/symptom-checker")
		{
			checker.GET("/session-token", sessionHandler.IssueToken)
			checker.GET("/ws/:token", sessionHandler.Handle)
		}
	}
	return r
}

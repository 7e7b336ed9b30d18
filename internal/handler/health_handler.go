package handler

import (
	"net/http"
	"symptom-checker-go/pkg/llm"

	"github.com/gin-gonic/gin"
)

// HealthStatus 表示单项检查的结果。
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthError HealthStatus = "error"
)

// HealthCheck 是单项检查结果。
type HealthCheck struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Details string       `json:"details,omitempty"`
}

// HealthHandler 提供存活探测。进程在 LLM 不可用时仍然存活，因此始终返回 200。
type HealthHandler struct {
	llmClient llm.Client
}

// NewHealthHandler 创建一个新的 HealthHandler。
func NewHealthHandler(llmClient llm.Client) *HealthHandler {
	return &HealthHandler{llmClient: llmClient}
}

// Health 处理 GET /health。
func (h *HealthHandler) Health(c *gin.Context) {
	check := HealthCheck{Name: "llm", Status: HealthOK, Details: h.llmClient.Name()}
	overall := HealthOK
	if !llm.Available(h.llmClient) {
		check.Status = HealthError
		check.Details = "provider client not initialized"
		overall = HealthError
	}
	c.JSON(http.StatusOK, gin.H{
		"status": overall,
		"checks": []HealthCheck{check},
	})
}

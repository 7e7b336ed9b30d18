// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"io"
	"net/http"
	"symptom-checker-go/internal/service"
	"symptom-checker-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SymptomHandler 负责症状检查的 JSON API。
type SymptomHandler struct {
	symptomService service.SymptomService
	auditService   service.AuditService
}

// NewSymptomHandler 创建一个新的 SymptomHandler。
func NewSymptomHandler(symptomService service.SymptomService, auditService service.AuditService) *SymptomHandler {
	return &SymptomHandler{symptomService: symptomService, auditService: auditService}
}

// SymptomCheckRequest 同时支持 JSON 与 form-encoded 请求体。
type SymptomCheckRequest struct {
	Symptoms string `json:"symptoms" form:"symptoms"`
}

// Check 处理 POST /api/v1/ai/symptom-check。
// 三种编排结果都返回 200，由 data 中的状态区分成功与失败。
func (h *SymptomHandler) Check(c *gin.Context) {
	var req SymptomCheckRequest
	// 空请求体视为未填写症状，交由校验器处理
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warnf("SymptomCheck: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request payload",
			"data":    nil,
		})
		return
	}

	sub := h.symptomService.Submit(c.Request.Context(), req.Symptoms)
	h.auditService.Record(c.Request.Context(), "", "api", req.Symptoms, sub)

	message := "success"
	if sub.State.Failed() {
		message = sub.State.Error
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": message,
		"data":    sub.State,
	})
}

package handler

import (
	"net/http"
	"symptom-checker-go/internal/model"
	"symptom-checker-go/internal/service"
	"time"

	"github.com/gin-gonic/gin"
)

const pageTemplate = "symptom_checker.html"

// PageHandler 负责服务端渲染的症状检查页面（无 JS 时的表单回退）。
type PageHandler struct {
	symptomService service.SymptomService
	auditService   service.AuditService
}

// NewPageHandler 创建一个新的 PageHandler。
func NewPageHandler(symptomService service.SymptomService, auditService service.AuditService) *PageHandler {
	return &PageHandler{symptomService: symptomService, auditService: auditService}
}

// pageData 是页面模板的数据。提交中的 pending 状态只存在于浏览器端脚本。
type pageData struct {
	State model.FormState
}

// Show 渲染初始状态的页面。
func (h *PageHandler) Show(c *gin.Context) {
	c.HTML(http.StatusOK, pageTemplate, pageData{State: model.InitialFormState()})
}

// Submit 处理 form-encoded 提交并以新状态重新渲染页面。
func (h *PageHandler) Submit(c *gin.Context) {
	start := time.Now()
	_ = c.Request.ParseForm()
	form := c.Request.PostForm

	state := h.symptomService.Check(c.Request.Context(), model.InitialFormState(), form)
	h.auditService.Record(c.Request.Context(), "", "page", form.Get("symptoms"), service.Submission{
		State:   state,
		Outcome: service.OutcomeOf(state),
		Latency: time.Since(start),
	})

	c.HTML(http.StatusOK, pageTemplate, pageData{State: state})
}

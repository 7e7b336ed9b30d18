package service

import (
	"context"
	"time"
	"unicode/utf8"

	"symptom-checker-go/internal/model"
	"symptom-checker-go/pkg/log"

	"github.com/google/uuid"
)

// EventPublisher 将审计事件送往下游（Kafka 或直接写库）。
type EventPublisher interface {
	Publish(ctx context.Context, event model.CheckEvent) error
}

// AuditService 记录每次提交的结果元数据。
type AuditService interface {
	Record(ctx context.Context, sessionID, channel, symptoms string, sub Submission)
}

type auditService struct {
	publisher EventPublisher
	model     string
}

// NewAuditService 创建审计服务。publisher 为 nil 时只写日志。
func NewAuditService(publisher EventPublisher, model string) AuditService {
	return &auditService{publisher: publisher, model: model}
}

// Record 构造不含症状原文的审计事件并发布。发布失败只记录日志，不影响用户请求。
func (s *auditService) Record(ctx context.Context, sessionID, channel, symptoms string, sub Submission) {
	event := model.CheckEvent{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		Channel:        channel,
		Outcome:        sub.Outcome,
		SymptomsLength: utf8.RuneCountInString(symptoms),
		Model:          s.model,
		LatencyMs:      sub.Latency.Milliseconds(),
		CreatedAt:      time.Now(),
	}
	log.Infow("symptom check finished",
		"eventId", event.ID,
		"sessionId", event.SessionID,
		"channel", event.Channel,
		"outcome", event.Outcome,
		"latencyMs", event.LatencyMs,
	)
	if s.publisher == nil {
		return
	}

	// 使用独立上下文：即使原始请求已结束，也尽量完成审计写入
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		log.Errorf("发布审计事件失败: id=%s, err=%v", event.ID, err)
	}
}

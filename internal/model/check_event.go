package model

import "time"

// CheckOutcome 描述一次症状检查提交的结果类别。
type CheckOutcome string

const (
	OutcomeSuccess         CheckOutcome = "success"
	OutcomeValidationError CheckOutcome = "validation_error"
	OutcomeProviderError   CheckOutcome = "provider_error"
	OutcomeUnexpectedError CheckOutcome = "unexpected_error"
)

// CheckEvent 是一次提交的审计记录，对应 symptom_check_events 表。
// 不包含症状原文、诊断内容或上游错误详情。
type CheckEvent struct {
	ID             string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	SessionID      string       `gorm:"type:varchar(36);index" json:"sessionId"`
	Channel        string       `gorm:"type:varchar(20);not null" json:"channel"` // page | api | websocket
	Outcome        CheckOutcome `gorm:"type:varchar(32);not null;index" json:"outcome"`
	SymptomsLength int          `gorm:"not null" json:"symptomsLength"`
	Model          string       `gorm:"type:varchar(100)" json:"model"`
	LatencyMs      int64        `gorm:"not null" json:"latencyMs"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (CheckEvent) TableName() string {
	return "symptom_check_events"
}

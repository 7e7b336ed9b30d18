package service

import (
	"context"
	"fmt"

	"symptom-checker-go/internal/model"
	"symptom-checker-go/internal/repository"
)

// CheckEventService 负责审计事件的持久化，既可作为 Kafka 消费端的落库处理器，
// 也可在未配置 Kafka 时直接作为 EventPublisher 使用。
type CheckEventService interface {
	EventPublisher
	Handle(ctx context.Context, event model.CheckEvent) error
}

type checkEventService struct {
	repo repository.CheckEventRepository
}

// NewCheckEventService 创建一个新的 CheckEventService 实例。
func NewCheckEventService(repo repository.CheckEventRepository) CheckEventService {
	return &checkEventService{repo: repo}
}

// Handle 校验并保存一条审计事件。
func (s *checkEventService) Handle(ctx context.Context, event model.CheckEvent) error {
	if event.ID == "" {
		return fmt.Errorf("check event without id")
	}
	switch event.Outcome {
	case model.OutcomeSuccess, model.OutcomeValidationError, model.OutcomeProviderError, model.OutcomeUnexpectedError:
	default:
		return fmt.Errorf("check event %s has unknown outcome %q", event.ID, event.Outcome)
	}
	if err := s.repo.Create(ctx, &event); err != nil {
		return fmt.Errorf("failed to save check event: %w", err)
	}
	return nil
}

// Publish 满足 EventPublisher 接口：未启用 Kafka 时直接落库。
func (s *checkEventService) Publish(ctx context.Context, event model.CheckEvent) error {
	return s.Handle(ctx, event)
}

package service

import (
	"context"
	"sync"
	"sync/atomic"

	"symptom-checker-go/internal/model"
	"symptom-checker-go/internal/repository"
)

var _ Diagnoser = (*MockDiagnoser)(nil)

// MockDiagnoser counts inference calls.
type MockDiagnoser struct {
	DiagnoseFunc      func(ctx context.Context, in model.SymptomInput) (model.DiagnosisResult, error)
	DiagnoseCallCount int32
}

func (m *MockDiagnoser) Diagnose(ctx context.Context, in model.SymptomInput) (model.DiagnosisResult, error) {
	atomic.AddInt32(&m.DiagnoseCallCount, 1)
	if m.DiagnoseFunc != nil {
		return m.DiagnoseFunc(ctx, in)
	}
	return model.DiagnosisResult{}, nil
}

func (m *MockDiagnoser) Model() string { return "mock:model" }

var _ EventPublisher = (*MockPublisher)(nil)

type MockPublisher struct {
	PublishFunc func(ctx context.Context, event model.CheckEvent) error

	mu     sync.Mutex
	Events []model.CheckEvent
}

func (m *MockPublisher) Publish(ctx context.Context, event model.CheckEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	return nil
}

var _ repository.CheckEventRepository = (*MockCheckEventRepository)(nil)

type MockCheckEventRepository struct {
	CreateFunc      func(ctx context.Context, event *model.CheckEvent) error
	CreateCallCount int32
}

func (m *MockCheckEventRepository) Create(ctx context.Context, event *model.CheckEvent) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

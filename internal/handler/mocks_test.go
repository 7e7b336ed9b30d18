package handler

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"

	"symptom-checker-go/internal/model"
	"symptom-checker-go/internal/service"
)

var _ service.SymptomService = (*MockSymptomService)(nil)

type MockSymptomService struct {
	SubmitFunc      func(ctx context.Context, symptoms string) service.Submission
	SubmitCallCount int32
}

func (m *MockSymptomService) Check(ctx context.Context, prev model.FormState, form url.Values) model.FormState {
	return m.Submit(ctx, form.Get("symptoms")).State
}

func (m *MockSymptomService) Submit(ctx context.Context, symptoms string) service.Submission {
	atomic.AddInt32(&m.SubmitCallCount, 1)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, symptoms)
	}
	return service.Submission{State: model.InitialFormState(), Outcome: model.OutcomeSuccess}
}

func (m *MockSymptomService) Model() string { return "mock:model" }

var _ service.AuditService = (*MockAuditService)(nil)

type auditRecord struct {
	SessionID string
	Channel   string
	Symptoms  string
	Outcome   model.CheckOutcome
}

type MockAuditService struct {
	mu      sync.Mutex
	Records []auditRecord
}

func (m *MockAuditService) Record(_ context.Context, sessionID, channel, symptoms string, sub service.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, auditRecord{SessionID: sessionID, Channel: channel, Symptoms: symptoms, Outcome: sub.Outcome})
}

func (m *MockAuditService) snapshot() []auditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]auditRecord(nil), m.Records...)
}

func successSubmission() service.Submission {
	return service.Submission{
		State:   model.FormState{Result: &model.DiagnosisResult{PossibleDiagnoses: "1. Tension headache", Disclaimer: "Consult a professional."}},
		Outcome: model.OutcomeSuccess,
	}
}

func failedSubmission(symptoms, msg string, outcome model.CheckOutcome) service.Submission {
	return service.Submission{
		State:   model.FormState{Form: model.FormData{Symptoms: symptoms}, Error: msg},
		Outcome: outcome,
	}
}

// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"symptom-checker-go/internal/model"
	"symptom-checker-go/internal/symptom"
	"symptom-checker-go/pkg/llm"
	"symptom-checker-go/pkg/log"
)

// 返回给用户的固定错误提示，从不包含上游错误原文。
const (
	MsgServiceUnavailable = "Service temporarily unavailable. Please try again later."
	MsgUnexpectedError    = "An unexpected error occurred. Please try again."
)

// Diagnoser 是一次推理调用的抽象，由 symptom.Checker 实现。
type Diagnoser interface {
	Diagnose(ctx context.Context, in model.SymptomInput) (model.DiagnosisResult, error)
	Model() string
}

// Submission 是一次提交的完整结果，Outcome 与 Latency 供审计使用。
type Submission struct {
	State   model.FormState
	Outcome model.CheckOutcome
	Latency time.Duration
}

// SymptomService 定义了症状检查的编排接口。
type SymptomService interface {
	// Check 对应表单 action：(上一个状态, 表单数据) -> 新状态。
	Check(ctx context.Context, prev model.FormState, form url.Values) model.FormState
	// Submit 以原始症状文本执行一次提交，并返回审计所需的结果类别。
	Submit(ctx context.Context, symptoms string) Submission
	// Model 返回当前使用的模型标识。
	Model() string
}

type symptomService struct {
	diagnoser Diagnoser
}

// NewSymptomService 创建一个新的 SymptomService 实例。
func NewSymptomService(diagnoser Diagnoser) SymptomService {
	return &symptomService{diagnoser: diagnoser}
}

// Check 的结果只取决于本次表单数据，prev 仅为兼容表单 action 签名而保留。
func (s *symptomService) Check(ctx context.Context, prev model.FormState, form url.Values) model.FormState {
	return s.Submit(ctx, form.Get("symptoms")).State
}

// Submit 校验 -> 推理 -> 状态映射。校验失败时不会发起推理调用。
func (s *symptomService) Submit(ctx context.Context, symptoms string) Submission {
	start := time.Now()

	input, err := symptom.Validate(symptoms)
	if err != nil {
		return Submission{
			State:   model.FormState{Form: model.FormData{Symptoms: symptoms}, Error: err.Error()},
			Outcome: model.OutcomeValidationError,
			Latency: time.Since(start),
		}
	}

	result, err := s.diagnoser.Diagnose(ctx, input)
	if err != nil {
		message, outcome := classify(err)
		log.Errorw("AI Symptom Checker Error",
			"error", err.Error(),
			"symptoms", input.Symptoms,
			"timestamp", time.Now().UTC().Format(time.RFC3339Nano),
			"model", s.diagnoser.Model(),
		)
		return Submission{
			State:   model.FormState{Form: model.FormData{Symptoms: symptoms}, Error: message},
			Outcome: outcome,
			Latency: time.Since(start),
		}
	}

	return Submission{
		State:   model.FormState{Form: model.FormData{Symptoms: ""}, Result: &result},
		Outcome: model.OutcomeSuccess,
		Latency: time.Since(start),
	}
}

func (s *symptomService) Model() string { return s.diagnoser.Model() }

// classify 将错误映射为固定的用户提示：上游故障提示稍后重试，其余一律为未知错误。
func classify(err error) (string, model.CheckOutcome) {
	var schemaErr *symptom.SchemaError
	if llm.IsProviderFault(err) || errors.As(err, &schemaErr) {
		return MsgServiceUnavailable, model.OutcomeProviderError
	}
	return MsgUnexpectedError, model.OutcomeUnexpectedError
}

// OutcomeOf 从已生成的状态反推结果类别，供只拿到 FormState 的调用方（表单 action）审计使用。
func OutcomeOf(state model.FormState) model.CheckOutcome {
	switch {
	case state.Succeeded():
		return model.OutcomeSuccess
	case state.Error == symptom.ValidationMessage:
		return model.OutcomeValidationError
	case state.Error == MsgServiceUnavailable:
		return model.OutcomeProviderError
	default:
		return model.OutcomeUnexpectedError
	}
}

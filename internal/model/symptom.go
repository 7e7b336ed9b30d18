// Package model 包含了应用的数据模型定义。
package model

// SymptomInput 是一次提交中用户输入的症状描述。
type SymptomInput struct {
	Symptoms string `json:"symptoms" form:"symptoms"`
}

// DiagnosisResult 是模型返回的结构化结果。
type DiagnosisResult struct {
	PossibleDiagnoses string `json:"possibleDiagnoses"`
	Disclaimer        string `json:"disclaimer"`
}

// FormData 是回显给表单的数据。
type FormData struct {
	Symptoms string `json:"symptoms"`
}

// FormState 是编排器返回给 UI 的状态：Result 非空为成功，Error 非空为失败，二者皆空为初始状态。
type FormState struct {
	Form   FormData         `json:"form"`
	Result *DiagnosisResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// InitialFormState 返回表单的初始状态。
func InitialFormState() FormState {
	return FormState{Form: FormData{Symptoms: ""}}
}

// Succeeded 表示本次提交已得到诊断结果。
func (s FormState) Succeeded() bool { return s.Result != nil }

// Failed 表示本次提交以校验或调用错误结束。
func (s FormState) Failed() bool { return s.Error != "" }

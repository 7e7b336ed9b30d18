package symptom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"symptom-checker-go/internal/model"
	"symptom-checker-go/pkg/llm"
)

const (
	fieldPossibleDiagnoses = "possibleDiagnoses"
	fieldDisclaimer        = "disclaimer"
)

// OutputSchema is declared to the provider with every request.
var OutputSchema = llm.Schema{
	Name: "SymptomCheckerOutput",
	Fields: []llm.Field{
		{Name: fieldPossibleDiagnoses, Description: "A numbered list of possible diagnoses based on the symptoms provided, each with a brief explanation of why it might be relevant."},
		{Name: fieldDisclaimer, Description: "A disclaimer stating that the results are not a substitute for professional medical advice and that the user should always consult with a qualified healthcare provider for diagnosis and treatment."},
	},
}

// SchemaError reports a response that does not structurally match
// OutputSchema. Content is never judged, only shape.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string { return "symptom: response schema mismatch: " + e.Reason }

// ParseDiagnosis decodes raw provider output. It requires a JSON object with
// exactly the possibleDiagnoses and disclaimer fields, both strings.
func ParseDiagnosis(raw []byte) (model.DiagnosisResult, error) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&fields); err != nil {
		return model.DiagnosisResult{}, &SchemaError{Reason: fmt.Sprintf("not a JSON object: %v", err)}
	}
	if fields == nil {
		return model.DiagnosisResult{}, &SchemaError{Reason: "not a JSON object: null"}
	}
	if dec.More() {
		return model.DiagnosisResult{}, &SchemaError{Reason: "trailing data after JSON object"}
	}

	var extra []string
	for name := range fields {
		if name != fieldPossibleDiagnoses && name != fieldDisclaimer {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return model.DiagnosisResult{}, &SchemaError{Reason: "unexpected fields: " + strings.Join(extra, ", ")}
	}

	diagnoses, err := stringField(fields, fieldPossibleDiagnoses)
	if err != nil {
		return model.DiagnosisResult{}, err
	}
	disclaimer, err := stringField(fields, fieldDisclaimer)
	if err != nil {
		return model.DiagnosisResult{}, err
	}
	return model.DiagnosisResult{PossibleDiagnoses: diagnoses, Disclaimer: disclaimer}, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	v, ok := fields[name]
	if !ok {
		return "", &SchemaError{Reason: "missing field " + name}
	}
	var s string
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return "", &SchemaError{Reason: "field " + name + " is null"}
	}
	if err := json.Unmarshal(v, &s); err != nil {
		return "", &SchemaError{Reason: "field " + name + " is not a string"}
	}
	return s, nil
}

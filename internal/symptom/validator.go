// Package symptom holds the symptom checker core: input validation, the
// prompt and output schema shared with the inference provider, and the
// single-call diagnosis flow.
package symptom

import (
	"net/url"
	"unicode/utf8"

	"symptom-checker-go/internal/model"
)

// MinSymptomsLength is the minimum number of characters accepted.
const MinSymptomsLength = 10

// ValidationMessage is shown verbatim to the user when input is too short.
const ValidationMessage = "Please describe your symptoms in more detail (at least 10 characters)."

// ValidationError carries the user-facing rule that was violated and the
// input exactly as submitted.
type ValidationError struct {
	Message string
	Input   string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks presence and minimum length. The input is returned
// unchanged on success; no trimming is applied.
func Validate(symptoms string) (model.SymptomInput, error) {
	if utf8.RuneCountInString(symptoms) < MinSymptomsLength {
		return model.SymptomInput{}, &ValidationError{Message: ValidationMessage, Input: symptoms}
	}
	return model.SymptomInput{Symptoms: symptoms}, nil
}

// ValidateForm extracts the symptoms field from form data. An absent field is
// treated as the empty string.
func ValidateForm(form url.Values) (model.SymptomInput, error) {
	return Validate(form.Get("symptoms"))
}

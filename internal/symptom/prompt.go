package symptom

import "strings"

const promptTemplate = `You are an AI-powered symptom checker. You take a list of symptoms as input and return a list of possible diagnoses.

Symptoms: {{symptoms}}

Based on these symptoms, provide a numbered list of possible diagnoses in the "possibleDiagnoses" field. For each diagnosis, briefly explain why it might be relevant.

In the "disclaimer" field, state that this symptom checker is not a substitute for professional medical advice and that the user should always consult with a qualified healthcare provider for diagnosis and treatment.

Return only a JSON object with the fields "possibleDiagnoses" and "disclaimer".`

// BuildPrompt embeds the symptom text verbatim.
func BuildPrompt(symptoms string) string {
	return strings.Replace(promptTemplate, "{{symptoms}}", symptoms, 1)
}

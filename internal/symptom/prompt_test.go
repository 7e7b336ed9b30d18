package symptom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("headache, fever, sore throat")
	assert.Contains(t, p, "Symptoms: headache, fever, sore throat\n")
	assert.Contains(t, p, `"possibleDiagnoses"`)
	assert.Contains(t, p, `"disclaimer"`)
	assert.NotContains(t, p, "{{symptoms}}")
}

func TestBuildPrompt_Verbatim(t *testing.T) {
	in := "  chest pain {{symptoms}} \n\tand $1 dizziness  "
	p := BuildPrompt(in)
	assert.Equal(t, 1, strings.Count(p, in))
	assert.Contains(t, p, "Symptoms: "+in+"\n")
}

package observability

import (
	"bytes"
	"testing"

	"github.com/jonathan/recruit-pipeline/internal/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestPrintStartup(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStartup(8080, map[string]bool{
		"hasGeminiKey": true,
		"hasVapiKey":   false,
	})
	output := buf.String()

	assert.Contains(t, output, "RECRUITMENT PIPELINE SERVER")
	assert.Contains(t, output, "port 8080")
	assert.Contains(t, output, "✓ hasGeminiKey")
	assert.Contains(t, output, "✗ hasVapiKey")
}

func TestPrintDispatchResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDispatchResult(&pipeline.Result{
		Outcome:       pipeline.OutcomeProcessed,
		Message:       "Technical callback processed and sheet updated",
		Stage:         "lionagent",
		CandidateName: "Jane Doe",
		Row:           12,
		Score:         "4",
		Evaluation:    "Overall Assessment Score: 4",
	})
	output := buf.String()

	assert.Contains(t, output, "CALLBACK RESULT")
	assert.Contains(t, output, "processed")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "12")
	assert.Contains(t, output, "4")
}

func TestPrintDispatchResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDispatchResult(nil)

	assert.Empty(t, buf.String())
}

func TestPrintDispatchResult_TruncatesEvaluation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	p.PrintDispatchResult(&pipeline.Result{
		Outcome:    pipeline.OutcomeProcessed,
		Evaluation: string(long),
	})

	assert.Contains(t, buf.String(), "...")
}

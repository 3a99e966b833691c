package pipeline

import "fmt"

// EvaluationError indicates the model call for a stage failed. It occurs
// before any record write, so a failed evaluation never leaves a partial row.
type EvaluationError struct {
	Stage string
	Cause error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed for stage %s: %v", e.Stage, e.Cause)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// WriteError indicates a record-store write failed after a successful
// evaluation. The evaluation result is not retried or cached.
type WriteError struct {
	Range string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("record write failed for range %s: %v", e.Range, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

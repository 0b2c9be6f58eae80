package chunking

import "fmt"

// PlanningError reports malformed document metrics or an invalid chunking
// configuration. It is fatal for the document and not retryable: the input
// is broken, not the infrastructure.
type PlanningError struct {
	msg string
}

func (e *PlanningError) Error() string { return e.msg }

func planningErrorf(format string, args ...any) *PlanningError {
	return &PlanningError{msg: fmt.Sprintf(format, args...)}
}

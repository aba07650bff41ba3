package pipeline

import (
	"errors"
	"time"
)

// Status is the final state of a step in a report.
type Status string

const (
	StatusPending        Status = "pending"
	StatusExecuted       Status = "executed"
	StatusSkipped        Status = "skipped"
	StatusFailed         Status = "failed"
	StatusRolledBack     Status = "rolled_back"
	StatusRollbackFailed Status = "rollback_failed"
)

// StepResult describes what happened to one step.
type StepResult struct {
	Index       int
	Name        string
	Status      Status
	Duration    time.Duration
	Err         error // execution error, kept after rollback
	RollbackErr error
}

// Report summarizes one pipeline execution.
type Report struct {
	RunID      string
	Steps      []StepResult
	Order      []string // names of steps that ran, in order
	RolledBack []string // names of rolled back steps, in rollback order
	Aborted    bool
	Reason     string
	Err        error
	Errors     []error // non-critical step errors and rollback errors
}

// Succeeded reports whether the pipeline ran to completion.
func (r Report) Succeeded() bool {
	return !r.Aborted
}

// Result returns the result of the named step.
func (r Report) Result(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Error returns a single error for the report: the abort error if any, or
// the joined non-critical errors.
func (r Report) Error() error {
	if r.Err != nil {
		return r.Err
	}
	if r.Aborted {
		return errors.New("pipeline: aborted: " + r.Reason)
	}
	return errors.Join(r.Errors...)
}

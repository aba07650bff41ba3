// Package pipeline runs an ordered list of steps with cooperative abort and
// reverse-order rollback of the steps that already ran.
package pipeline

import "context"

// Step is one unit of work in a pipeline.
type Step interface {
	// Name identifies the step in logs, reports and spans.
	Name() string

	// CanExecute reports whether the step should run. A step that returns
	// false is skipped and never rolled back.
	CanExecute(ctx context.Context) bool

	// Execute does the work. A step may also abort the pipeline through ctl
	// without returning an error.
	Execute(ctx context.Context, ctl *Control) error
}

// Reversible is implemented by steps that can undo their work.
type Reversible interface {
	// WasExecuted reports whether there is anything to roll back.
	WasExecuted() bool

	// Rollback undoes the step's effects.
	Rollback(ctx context.Context) error
}

// Criticality is implemented by steps that can declare themselves
// non-critical. Steps without it are critical.
type Criticality interface {
	Critical() bool
}

// IsCritical reports whether a failure of s aborts the pipeline.
func IsCritical(s Step) bool {
	if c, ok := s.(Criticality); ok {
		return c.Critical()
	}
	return true
}

// Tracker records whether a reversible step has run. Embed it and call
// MarkExecuted once the step has changed state.
type Tracker struct {
	executed bool
}

// MarkExecuted flags the step as having changed state.
func (t *Tracker) MarkExecuted() { t.executed = true }

// ResetExecuted clears the flag, typically after a rollback.
func (t *Tracker) ResetExecuted() { t.executed = false }

// WasExecuted reports whether MarkExecuted was called.
func (t *Tracker) WasExecuted() bool { return t.executed }

// Func adapts plain functions to a Step. It is reversible only when Undo is
// set, and critical unless Optional is true.
type Func struct {
	StepName string
	When     func(ctx context.Context) bool
	Run      func(ctx context.Context, ctl *Control) error
	Undo     func(ctx context.Context) error
	Optional bool

	Tracker
}

// Name returns the step name.
func (f *Func) Name() string { return f.StepName }

// CanExecute calls When, defaulting to true.
func (f *Func) CanExecute(ctx context.Context) bool {
	if f.When == nil {
		return true
	}
	return f.When(ctx)
}

// Execute calls Run and marks the step executed when Run succeeds.
func (f *Func) Execute(ctx context.Context, ctl *Control) error {
	if f.Run != nil {
		if err := f.Run(ctx, ctl); err != nil {
			return err
		}
	}
	f.MarkExecuted()
	return nil
}

// WasExecuted reports whether Execute ran and there is an Undo to call.
func (f *Func) WasExecuted() bool {
	return f.Undo != nil && f.Tracker.WasExecuted()
}

// Rollback calls Undo.
func (f *Func) Rollback(ctx context.Context) error {
	defer f.ResetExecuted()
	if f.Undo == nil {
		return nil
	}
	return f.Undo(ctx)
}

// Critical reports whether failures abort the pipeline.
func (f *Func) Critical() bool { return !f.Optional }

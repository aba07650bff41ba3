package pipeline

import "sync"

// Control is the per-run flow state shared by the steps of one pipeline
// execution. It is created by the executor and never reused.
type Control struct {
	mu      sync.Mutex
	aborted bool
	reason  string
	err     error
	errs    []error
}

// NewControl creates a fresh control object.
func NewControl() *Control {
	return &Control{}
}

// Abort stops the pipeline after the current step and triggers rollback.
// Only the first abort is kept.
func (c *Control) Abort(reason string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.aborted {
		return
	}
	c.aborted = true
	c.reason = reason
	c.err = err
}

// Aborted reports whether Abort was called.
func (c *Control) Aborted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aborted
}

// Reason returns the abort reason.
func (c *Control) Reason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Err returns the error that caused the abort, if any.
func (c *Control) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// RecordError keeps a non-fatal error.
func (c *Control) RecordError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

// Errors returns the recorded non-fatal errors.
func (c *Control) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}

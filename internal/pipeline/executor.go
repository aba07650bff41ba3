package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vovakirdan/tui-farm/internal/pipeline"

// Hooks observe step progress. Either field may be nil. A panicking hook is
// recovered and logged; it never changes the outcome of a run.
type Hooks struct {
	OnStepStarted  func(index int, name string)
	OnStepFinished func(index int, name string, d time.Duration, err error)
}

// Executor runs pipelines.
type Executor struct {
	logger *log.Logger
	tracer trace.Tracer
	hooks  Hooks
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithHooks installs progress hooks.
func WithHooks(h Hooks) Option {
	return func(e *Executor) { e.hooks = h }
}

// NewExecutor creates an executor.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		logger: log.New(io.Discard),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs steps in order with a fresh Control.
//
// A step whose CanExecute returns false is skipped. A critical step that
// fails (error or panic) aborts the run; a non-critical failure is recorded
// and the run continues. A step may also abort cooperatively through the
// control object. After an abort no further step runs and every executed
// step that is Reversible and reports WasExecuted is rolled back once, in
// reverse order. Rollback failures are recorded and do not stop the rollback.
func (e *Executor) Execute(ctx context.Context, steps []Step) Report {
	ctl := NewControl()
	report := Report{
		RunID: uuid.NewString(),
		Steps: make([]StepResult, len(steps)),
	}
	for i, s := range steps {
		report.Steps[i] = StepResult{Index: i, Name: s.Name(), Status: StatusPending}
	}
	logger := e.logger.With("run", report.RunID)

	ctx, span := e.tracer.Start(ctx, "pipeline.execute", trace.WithAttributes(
		attribute.String("pipeline.run_id", report.RunID),
		attribute.Int("pipeline.steps", len(steps)),
	))
	defer span.End()

	var executed []int
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			ctl.Abort("context done before "+s.Name(), err)
			break
		}

		res := &report.Steps[i]
		if !s.CanExecute(ctx) {
			res.Status = StatusSkipped
			logger.Debug("step skipped", "step", res.Name)
			continue
		}

		e.started(logger, i, res.Name)
		start := time.Now()
		err := e.runStep(ctx, i, s, ctl)
		res.Duration = time.Since(start)
		e.finished(logger, i, res.Name, res.Duration, err)

		executed = append(executed, i)
		report.Order = append(report.Order, res.Name)

		switch {
		case err == nil:
			res.Status = StatusExecuted
		case IsCritical(s):
			res.Status = StatusFailed
			res.Err = err
			logger.Error("critical step failed", "step", res.Name, "error", err)
			ctl.Abort(fmt.Sprintf("step %s failed", res.Name), err)
		default:
			res.Status = StatusFailed
			res.Err = err
			logger.Warn("non-critical step failed", "step", res.Name, "error", err)
			ctl.RecordError(fmt.Errorf("%s: %w", res.Name, err))
		}

		if ctl.Aborted() {
			break
		}
	}

	if ctl.Aborted() {
		logger.Warn("pipeline aborted, rolling back", "reason", ctl.Reason(), "executed", len(executed))
		span.SetStatus(codes.Error, ctl.Reason())
		// Rollback must finish even when the caller's context is done.
		rbCtx := context.WithoutCancel(ctx)
		for j := len(executed) - 1; j >= 0; j-- {
			e.rollback(rbCtx, logger, steps[executed[j]], &report, ctl, executed[j])
		}
	}

	report.Aborted = ctl.Aborted()
	report.Reason = ctl.Reason()
	report.Err = ctl.Err()
	report.Errors = ctl.Errors()
	return report
}

// runStep executes one step inside a span, converting a panic into an error.
func (e *Executor) runStep(ctx context.Context, index int, s Step, ctl *Control) (err error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.step", trace.WithAttributes(
		attribute.String("step.name", s.Name()),
		attribute.Int("step.index", index),
		attribute.Bool("step.critical", IsCritical(s)),
	))
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline: step %s panicked: %v", s.Name(), r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	return s.Execute(ctx, ctl)
}

func (e *Executor) rollback(ctx context.Context, logger *log.Logger, s Step, report *Report, ctl *Control, index int) {
	r, ok := s.(Reversible)
	if !ok || !r.WasExecuted() {
		return
	}
	res := &report.Steps[index]

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("pipeline: rollback of %s panicked: %v", s.Name(), p)
			}
		}()
		return r.Rollback(ctx)
	}()

	report.RolledBack = append(report.RolledBack, res.Name)
	if err != nil {
		res.Status = StatusRollbackFailed
		res.RollbackErr = err
		logger.Error("rollback failed", "step", res.Name, "error", err)
		ctl.RecordError(fmt.Errorf("rollback %s: %w", res.Name, err))
		return
	}
	res.Status = StatusRolledBack
	logger.Info("step rolled back", "step", res.Name)
}

func (e *Executor) started(logger *log.Logger, index int, name string) {
	logger.Debug("step started", "index", index, "step", name)
	if e.hooks.OnStepStarted == nil {
		return
	}
	defer e.recoverHook(logger, "OnStepStarted")
	e.hooks.OnStepStarted(index, name)
}

func (e *Executor) finished(logger *log.Logger, index int, name string, d time.Duration, err error) {
	logger.Debug("step finished", "index", index, "step", name, "duration", d, "error", err)
	if e.hooks.OnStepFinished == nil {
		return
	}
	defer e.recoverHook(logger, "OnStepFinished")
	e.hooks.OnStepFinished(index, name, d, err)
}

func (e *Executor) recoverHook(logger *log.Logger, hook string) {
	if r := recover(); r != nil {
		logger.Warn("progress hook panicked", "hook", hook, "panic", r)
	}
}

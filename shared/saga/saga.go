package saga

import (
	"context"
	"time"

	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// Status represents the current status of a saga run
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// StepOutcome represents the recorded outcome of a single step
type StepOutcome string

const (
	OutcomePending   StepOutcome = "pending"
	OutcomeCommitted StepOutcome = "committed"
	OutcomeFailed    StepOutcome = "failed"
)

// ActionFunc executes a forward step of a saga
type ActionFunc func(ctx context.Context) error

// CompensationFunc semantically undoes a previously committed step
type CompensationFunc func(ctx context.Context) error

// Step defines one executable unit in a saga. Compensation is nil for
// irreversible steps.
type Step struct {
	Name         string
	Action       ActionFunc
	Compensation CompensationFunc
}

// StepResult records the outcome of one step and, when compensation ran,
// the outcome of its compensation attempt.
type StepResult struct {
	Name                  string
	Outcome               StepOutcome
	Err                   error
	CompensationAttempted bool
	CompensationErr       error
}

// Run tracks one saga execution: which steps committed, which step failed,
// and which compensations were attempted. Compensation never changes the
// run's status.
type Run struct {
	Status     Status
	Steps      []StepResult
	FailedStep string
}

// Completed reports whether every step committed.
func (r *Run) Completed() bool {
	return r.Status == StatusCompleted
}

// StepErr returns the error of the step that failed the saga, if any.
func (r *Run) StepErr() error {
	for _, s := range r.Steps {
		if s.Outcome == OutcomeFailed {
			return s.Err
		}
	}
	return nil
}

// Executor drives an ordered list of steps. It is the single place where
// step failure is mapped to compensation: on the first failed step it
// invokes the compensations of strictly prior committed steps in reverse
// order. Steps that never ran or that themselves failed are never
// compensated.
type Executor struct {
	stepTimeout time.Duration
}

// Option configures an Executor
type Option func(*Executor)

// WithStepTimeout bounds every step and compensation call. A timed out
// call is treated as a failed step.
func WithStepTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.stepTimeout = d
	}
}

// NewExecutor creates a new saga executor
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the saga. The returned error reports an invalid saga
// definition only; business failure is carried by the Run status.
func (e *Executor) Execute(ctx context.Context, steps []Step) (*Run, error) {
	if len(steps) == 0 {
		return nil, errors.New("empty saga")
	}

	seen := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		if step.Action == nil {
			return nil, errors.Errorf("step %s has no action", step.Name)
		}
		if _, ok := seen[step.Name]; ok {
			return nil, errors.Errorf("duplicate step name %s", step.Name)
		}
		seen[step.Name] = struct{}{}
	}

	run := &Run{Status: StatusStarted, Steps: make([]StepResult, len(steps))}
	for i, step := range steps {
		run.Steps[i] = StepResult{Name: step.Name, Outcome: OutcomePending}
	}

	failedAt := -1
	for i, step := range steps {
		err := e.call(ctx, step.Action)
		if err != nil {
			run.Steps[i].Outcome = OutcomeFailed
			run.Steps[i].Err = err
			run.FailedStep = step.Name
			failedAt = i
			e.recordStep(ctx, step.Name, OutcomeFailed)
			break
		}
		run.Steps[i].Outcome = OutcomeCommitted
		e.recordStep(ctx, step.Name, OutcomeCommitted)
	}

	if failedAt == -1 {
		run.Status = StatusCompleted
		return run, nil
	}

	e.compensate(ctx, steps, run, failedAt)
	run.Status = StatusFailed
	return run, nil
}

// compensate visits committed steps before the failed index in reverse
// order. Compensation errors are recorded, never retried, and never
// escalated.
func (e *Executor) compensate(ctx context.Context, steps []Step, run *Run, failedAt int) {
	for i := failedAt - 1; i >= 0; i-- {
		if run.Steps[i].Outcome != OutcomeCommitted || steps[i].Compensation == nil {
			continue
		}
		run.Steps[i].CompensationAttempted = true
		if err := e.call(ctx, steps[i].Compensation); err != nil {
			run.Steps[i].CompensationErr = err
			e.recordCompensation(ctx, steps[i].Name, false)
			continue
		}
		e.recordCompensation(ctx, steps[i].Name, true)
	}
}

// call invokes fn under the configured timeout and converts a panic into
// an error, so no fault can bypass the compensation decision.
func (e *Executor) call(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if e.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.stepTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("step panic: %v", r)
		}
	}()

	return fn(ctx)
}

func (e *Executor) recordStep(ctx context.Context, step string, outcome StepOutcome) {
	telemetry.RecordCounter(ctx, "saga_steps_total", "Total saga step executions", 1,
		attribute.String("step", step),
		attribute.String("outcome", string(outcome)),
	)
}

func (e *Executor) recordCompensation(ctx context.Context, step string, ok bool) {
	telemetry.RecordCounter(ctx, "saga_compensations_total", "Total saga compensation attempts", 1,
		attribute.String("step", step),
		attribute.Bool("success", ok),
	)
}

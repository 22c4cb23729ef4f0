package saga

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// recorder collects the order of forward and compensation calls.
type recorder struct {
	calls []string
}

func (r *recorder) action(name string, err error) ActionFunc {
	return func(ctx context.Context) error {
		r.calls = append(r.calls, name)
		return err
	}
}

func (r *recorder) compensation(name string, err error) CompensationFunc {
	return func(ctx context.Context) error {
		r.calls = append(r.calls, name)
		return err
	}
}

func TestExecutor_Execute(t *testing.T) {
	stepErr := errors.New("downstream rejected")
	compErr := errors.New("compensation unavailable")

	tests := []struct {
		name          string
		firstErr      error
		secondErr     error
		thirdErr      error
		firstCompErr  error
		secondCompErr error
		expectedCalls []string
		expectedState Status
		failedStep    string
	}{
		{
			name:          "all steps commit in order",
			expectedCalls: []string{"first", "second", "third"},
			expectedState: StatusCompleted,
		},
		{
			name:          "first step failure compensates nothing",
			firstErr:      stepErr,
			expectedCalls: []string{"first"},
			expectedState: StatusFailed,
			failedStep:    "first",
		},
		{
			name:          "mid saga failure compensates only the committed step",
			secondErr:     stepErr,
			expectedCalls: []string{"first", "second", "undo-first"},
			expectedState: StatusFailed,
			failedStep:    "second",
		},
		{
			name:          "late failure compensates in reverse order",
			thirdErr:      stepErr,
			expectedCalls: []string{"first", "second", "third", "undo-second", "undo-first"},
			expectedState: StatusFailed,
			failedStep:    "third",
		},
		{
			name:          "compensation failure does not mask saga failure",
			secondErr:     stepErr,
			firstCompErr:  compErr,
			expectedCalls: []string{"first", "second", "undo-first"},
			expectedState: StatusFailed,
			failedStep:    "second",
		},
		{
			name:          "all compensations failing still yields failed",
			thirdErr:      stepErr,
			firstCompErr:  compErr,
			secondCompErr: compErr,
			expectedCalls: []string{"first", "second", "third", "undo-second", "undo-first"},
			expectedState: StatusFailed,
			failedStep:    "third",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			steps := []Step{
				{
					Name:         "first",
					Action:       rec.action("first", tt.firstErr),
					Compensation: rec.compensation("undo-first", tt.firstCompErr),
				},
				{
					Name:         "second",
					Action:       rec.action("second", tt.secondErr),
					Compensation: rec.compensation("undo-second", tt.secondCompErr),
				},
				{
					// Irreversible last step, like shipment scheduling.
					Name:   "third",
					Action: rec.action("third", tt.thirdErr),
				},
			}

			run, err := NewExecutor().Execute(context.Background(), steps)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCalls, rec.calls)
			assert.Equal(t, tt.expectedState, run.Status)
			assert.Equal(t, tt.failedStep, run.FailedStep)

			if tt.expectedState == StatusFailed {
				assert.Error(t, run.StepErr())
				assert.False(t, run.Completed())
			} else {
				assert.NoError(t, run.StepErr())
				assert.True(t, run.Completed())
			}
		})
	}
}

func TestExecutor_Execute_RecordsOutcomes(t *testing.T) {
	rec := &recorder{}
	stepErr := errors.New("out of stock")

	steps := []Step{
		{Name: "reserve", Action: rec.action("reserve", nil), Compensation: rec.compensation("release", nil)},
		{Name: "charge", Action: rec.action("charge", stepErr), Compensation: rec.compensation("refund", nil)},
		{Name: "ship", Action: rec.action("ship", nil)},
	}

	run, err := NewExecutor().Execute(context.Background(), steps)
	assert.NoError(t, err)

	// Every step before the failed one shows committed with a recorded
	// compensation attempt; the failed step is never compensated; steps
	// after it stay pending.
	assert.Equal(t, OutcomeCommitted, run.Steps[0].Outcome)
	assert.True(t, run.Steps[0].CompensationAttempted)
	assert.NoError(t, run.Steps[0].CompensationErr)

	assert.Equal(t, OutcomeFailed, run.Steps[1].Outcome)
	assert.False(t, run.Steps[1].CompensationAttempted)
	assert.Equal(t, stepErr, errors.Cause(run.Steps[1].Err))

	assert.Equal(t, OutcomePending, run.Steps[2].Outcome)
	assert.False(t, run.Steps[2].CompensationAttempted)
}

func TestExecutor_Execute_CompensationFailureRecorded(t *testing.T) {
	rec := &recorder{}
	compErr := errors.New("release unavailable")

	steps := []Step{
		{Name: "reserve", Action: rec.action("reserve", nil), Compensation: rec.compensation("release", compErr)},
		{Name: "charge", Action: rec.action("charge", errors.New("insufficient funds")), Compensation: rec.compensation("refund", nil)},
	}

	run, err := NewExecutor().Execute(context.Background(), steps)
	assert.NoError(t, err)

	assert.Equal(t, StatusFailed, run.Status)
	assert.True(t, run.Steps[0].CompensationAttempted)
	assert.Equal(t, compErr, errors.Cause(run.Steps[0].CompensationErr))
}

func TestExecutor_Execute_StepTimeout(t *testing.T) {
	rec := &recorder{}

	steps := []Step{
		{Name: "reserve", Action: rec.action("reserve", nil), Compensation: rec.compensation("release", nil)},
		{
			Name: "charge",
			Action: func(ctx context.Context) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(5 * time.Second):
					return nil
				}
			},
		},
	}

	run, err := NewExecutor(WithStepTimeout(10*time.Millisecond)).Execute(context.Background(), steps)
	assert.NoError(t, err)

	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, "charge", run.FailedStep)
	assert.Equal(t, []string{"reserve", "release"}, rec.calls)
}

func TestExecutor_Execute_PanicNormalizedToFailure(t *testing.T) {
	rec := &recorder{}

	steps := []Step{
		{Name: "reserve", Action: rec.action("reserve", nil), Compensation: rec.compensation("release", nil)},
		{
			Name: "charge",
			Action: func(ctx context.Context) error {
				panic("remote client blew up")
			},
		},
	}

	run, err := NewExecutor().Execute(context.Background(), steps)
	assert.NoError(t, err)

	assert.Equal(t, StatusFailed, run.Status)
	assert.Contains(t, run.StepErr().Error(), "step panic")
	assert.Equal(t, []string{"reserve", "release"}, rec.calls)
}

func TestExecutor_Execute_InvalidDefinitions(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	_, err := NewExecutor().Execute(context.Background(), nil)
	assert.EqualError(t, err, "empty saga")

	_, err = NewExecutor().Execute(context.Background(), []Step{{Name: "reserve"}})
	assert.EqualError(t, err, "step reserve has no action")

	_, err = NewExecutor().Execute(context.Background(), []Step{
		{Name: "reserve", Action: noop},
		{Name: "reserve", Action: noop},
	})
	assert.EqualError(t, err, "duplicate step name reserve")
}

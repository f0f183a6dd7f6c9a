package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, ds *Dataset) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, ds *Dataset) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, ds)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.keepGoing {
			t.Error("expected keepGoing to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "step-1"}, &mockStep{name: "step-2"})
		p.AddStep(&mockStep{name: "step-3"})

		if diff := cmp.Diff([]string{"step-1", "step-2", "step-3"}, p.StepNames()); diff != "" {
			t.Errorf("step names mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order and records them", func(t *testing.T) {
		t.Parallel()

		order := make([]string, 0)
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(_ context.Context, _ *Dataset) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New()
		p.AddSteps(record("first"), record("second"), record("third"))

		ds := NewDataset(nil, nil)
		if err := p.Execute(context.Background(), ds); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"first", "second", "third"}
		if diff := cmp.Diff(want, order); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, ds.Summary.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("step failed")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *Dataset) error { return stepErr }}
		after := &mockStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)

		ds := NewDataset(nil, nil)
		if err := p.Execute(context.Background(), ds); !errors.Is(err, stepErr) {
			t.Errorf("expected step error, got %v", err)
		}
		if after.callCount != 0 {
			t.Errorf("expected later step to be skipped, ran %d times", after.callCount)
		}
		if len(ds.Summary.PerformedSteps) != 0 {
			t.Errorf("expected no performed steps, got %v", ds.Summary.PerformedSteps)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("step failed")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *Dataset) error { return stepErr }}
		after := &mockStep{name: "after"}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		ds := NewDataset(nil, nil)
		if err := p.Execute(context.Background(), ds); !errors.Is(err, stepErr) {
			t.Errorf("expected step error, got %v", err)
		}
		if after.callCount != 1 {
			t.Errorf("expected later step to run once, ran %d times", after.callCount)
		}
		if diff := cmp.Diff([]string{"after"}, ds.Summary.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("respects cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		if err := p.Execute(ctx, NewDataset(nil, nil)); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step not to run")
		}
	})
}

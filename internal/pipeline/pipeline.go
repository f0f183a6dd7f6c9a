package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Step is one stage of dataset preparation.
type Step interface {
	// Do transforms ds in place. Steps replace the column slices they
	// change instead of writing through them, so earlier snapshots of the
	// dataset stay valid.
	Do(ctx context.Context, ds *Dataset) error
	// Name identifies the step in logs and in the run summary.
	Name() string
}

// Pipeline runs steps over a Dataset in the order they were added.
type Pipeline struct {
	steps     []Step
	logger    *slog.Logger
	keepGoing bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for step progress. slog.Default is used
// otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithContinueOnError makes Execute run the remaining steps after a
// failure. All step errors are joined into the returned error.
func WithContinueOnError(keepGoing bool) Option {
	return func(p *Pipeline) { p.keepGoing = keepGoing }
}

// New returns an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a single step.
func (p *Pipeline) AddStep(step Step) {
	p.AddSteps(step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against ds. The name of each step that succeeds
// is recorded in ds.Summary.PerformedSteps. A cancelled context stops the
// run before the next step starts.
func (p *Pipeline) Execute(ctx context.Context, ds *Dataset) error {
	var errs []error
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("preparation cancelled", "next_step", step.Name(), "reason", err)
			return err
		}

		log := p.logger.With("step", step.Name(), "index", i+1, "of", len(p.steps))
		log.Info("running step", "rows", ds.Len())

		start := time.Now()
		if err := step.Do(ctx, ds); err != nil {
			log.Error("step failed", "error", err)
			err = fmt.Errorf("step %s: %w", step.Name(), err)
			if !p.keepGoing {
				return err
			}
			errs = append(errs, err)
			continue
		}
		log.Debug("step done", "elapsed", time.Since(start))

		ds.Summary.PerformedSteps = append(ds.Summary.PerformedSteps, step.Name())
	}
	return errors.Join(errs...)
}

// StepCount reports how many steps are queued.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames lists the queued steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/nao1215/titanicprep/internal/features"
	"github.com/nao1215/titanicprep/internal/model"
)

// ErrInvalidPclass is returned when a passenger class is not 1, 2 or 3.
var ErrInvalidPclass = errors.New("invalid passenger class")

// PclassLevels are the ordered passenger class levels.
var PclassLevels = []string{"1", "2", "3"}

// Step names.
const (
	StepCoerceTypes       = "coerce_types"
	StepEngineerFeatures  = "engineer_features"
	StepFillMissing       = "fill_missing"
	StepTransformFeatures = "transform_features"
)

// Fill and transform remarks recorded in the run summary.
const (
	NoteFareClassMean = "Mean of Corresponding Pclass"
	NoteEmbarkedMode  = "Mode of Embarked"
	NoteFareLog       = "log"
)

// DefaultSteps returns the preparation steps in their required order.
func DefaultSteps(cfg *config.Config, logger *slog.Logger) []Step {
	return []Step{
		NewCoerceTypesStep(),
		NewEngineerFeaturesStep(
			features.WithMinorThreshold(cfg.MinorThreshold),
			features.WithTitleAliases(cfg.TitleAliases),
		),
		NewFillMissingStep(WithFillLogger(logger)),
		NewTransformFeaturesStep(),
	}
}

// CoerceTypesStep turns Pclass, Sex and Embarked into categorical columns.
// Pclass has the ordered levels 1 < 2 < 3; Sex and Embarked use their
// sorted observed values.
type CoerceTypesStep struct{}

// NewCoerceTypesStep creates a type coercion step.
func NewCoerceTypesStep() *CoerceTypesStep {
	return &CoerceTypesStep{}
}

// Name returns the step name.
func (s *CoerceTypesStep) Name() string {
	return StepCoerceTypes
}

// Do executes the type coercion step.
func (s *CoerceTypesStep) Do(_ context.Context, ds *Dataset) error {
	pclass := make([]string, ds.Len())
	sex := make([]string, ds.Len())
	embarked := make([]string, ds.Len())
	for i, p := range ds.Passengers {
		pclass[i] = strconv.Itoa(p.Pclass)
		if !slices.Contains(PclassLevels, pclass[i]) {
			return fmt.Errorf("%w: passenger %d has class %d", ErrInvalidPclass, p.PassengerID, p.Pclass)
		}
		sex[i] = p.Sex
		if p.Embarked != nil {
			embarked[i] = *p.Embarked
		}
	}

	c, err := model.NewCategorical(model.ColPclass, pclass, PclassLevels, true)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPclass, err)
	}
	ds.Pclass = c
	ds.Sex = model.InferCategorical(model.ColSex, sex)
	ds.Embarked = model.InferCategorical(model.ColEmbarked, embarked)
	return nil
}

// EngineerFeaturesStep derives CabinKnown, Title, FamilySize and IsMinor.
type EngineerFeaturesStep struct {
	opts []features.Option
}

// NewEngineerFeaturesStep creates a feature engineering step.
func NewEngineerFeaturesStep(opts ...features.Option) *EngineerFeaturesStep {
	return &EngineerFeaturesStep{opts: opts}
}

// Name returns the step name.
func (s *EngineerFeaturesStep) Name() string {
	return StepEngineerFeatures
}

// Do executes the feature engineering step.
func (s *EngineerFeaturesStep) Do(_ context.Context, ds *Dataset) error {
	set, summary := features.Engineer(ds.Passengers, s.opts...)
	ds.Features = set
	ds.Summary.Features = &summary
	return nil
}

// FillMissingStep fills missing fares with the mean fare of the same class
// and missing ports with the most common port.
type FillMissingStep struct {
	logger *slog.Logger
}

// FillMissingStepOption configures a FillMissingStep.
type FillMissingStepOption func(*FillMissingStep)

// WithFillLogger sets a custom logger for the fill step.
func WithFillLogger(logger *slog.Logger) FillMissingStepOption {
	return func(s *FillMissingStep) {
		s.logger = logger
	}
}

// NewFillMissingStep creates a missing-value fill step.
func NewFillMissingStep(opts ...FillMissingStepOption) *FillMissingStep {
	s := &FillMissingStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *FillMissingStep) Name() string {
	return StepFillMissing
}

// Do executes the fill step.
func (s *FillMissingStep) Do(_ context.Context, ds *Dataset) error {
	passengers := ds.clonePassengers()

	means, overall, hasFare := classMeanFares(passengers)
	fares := 0
	if hasFare {
		for i := range passengers {
			if passengers[i].Fare != nil {
				continue
			}
			fill, ok := means[passengers[i].Pclass]
			if !ok {
				fill = overall
			}
			passengers[i].Fare = &fill
			fares++
		}
		ds.Summary.AddNote(model.ColFare, NoteFareClassMean, fares)
	} else if len(passengers) > 0 {
		s.logger.Warn("no fare recorded; missing fares left unfilled")
	}

	mode, hasMode := modeEmbarked(passengers)
	ports := 0
	if hasMode {
		for i := range passengers {
			if passengers[i].Embarked != nil {
				continue
			}
			port := mode
			passengers[i].Embarked = &port
			ports++
		}
		ds.Summary.AddNote(model.ColEmbarked, NoteEmbarkedMode, ports)
	} else if len(passengers) > 0 {
		s.logger.Warn("no port recorded; missing ports left unfilled")
	}

	ds.Passengers = passengers
	if ds.Embarked != nil {
		values := make([]string, len(passengers))
		for i, p := range passengers {
			if p.Embarked != nil {
				values[i] = *p.Embarked
			}
		}
		embarked, err := model.NewCategorical(ds.Embarked.Name, values, ds.Embarked.Levels, ds.Embarked.Ordered)
		if err != nil {
			return err
		}
		ds.Embarked = embarked
	}

	s.logger.Debug("missing values filled", "fare", fares, "embarked", ports)
	return nil
}

// classMeanFares returns the mean recorded fare per class and over all
// records. The last result is false when no fare is recorded at all.
func classMeanFares(passengers []model.Passenger) (map[int]float64, float64, bool) {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	var total float64
	var n int
	for _, p := range passengers {
		if p.Fare == nil {
			continue
		}
		sums[p.Pclass] += *p.Fare
		counts[p.Pclass]++
		total += *p.Fare
		n++
	}

	means := make(map[int]float64, len(sums))
	for class, sum := range sums {
		means[class] = sum / float64(counts[class])
	}
	if n == 0 {
		return means, 0, false
	}
	return means, total / float64(n), true
}

// modeEmbarked returns the most common recorded port, the smallest on ties.
func modeEmbarked(passengers []model.Passenger) (string, bool) {
	counts := make(map[string]int)
	for _, p := range passengers {
		if p.Embarked != nil {
			counts[*p.Embarked]++
		}
	}

	best, bestCount := "", 0
	for port, count := range counts {
		if count > bestCount || (count == bestCount && port < best) {
			best, bestCount = port, count
		}
	}
	return best, bestCount > 0
}

// TransformFeaturesStep replaces every fare by its natural logarithm.
// Fares that are not positive, or missing, become 0.
type TransformFeaturesStep struct{}

// NewTransformFeaturesStep creates a fare transform step.
func NewTransformFeaturesStep() *TransformFeaturesStep {
	return &TransformFeaturesStep{}
}

// Name returns the step name.
func (s *TransformFeaturesStep) Name() string {
	return StepTransformFeatures
}

// Do executes the transform step.
func (s *TransformFeaturesStep) Do(_ context.Context, ds *Dataset) error {
	passengers := ds.clonePassengers()
	for i := range passengers {
		v := LogFare(passengers[i].Fare)
		passengers[i].Fare = &v
	}
	ds.Passengers = passengers
	ds.Summary.AddNote(model.ColFare, NoteFareLog, len(passengers))
	return nil
}

// LogFare returns ln(fare) for a positive fare and 0 otherwise.
func LogFare(fare *float64) float64 {
	if fare == nil || *fare <= 0 {
		return 0
	}
	return math.Log(*fare)
}

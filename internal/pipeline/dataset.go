package pipeline

import (
	"strconv"

	"github.com/nao1215/titanicprep/internal/features"
	"github.com/nao1215/titanicprep/internal/model"
)

// Dataset is the state passed between pipeline steps.
type Dataset struct {
	// Passengers are the records, train rows first when combined.
	Passengers []model.Passenger

	// Pclass, Sex and Embarked are set by the coerce_types step.
	Pclass   *model.Categorical
	Sex      *model.Categorical
	Embarked *model.Categorical

	// Features is set by the engineer_features step.
	Features *features.Set

	// Summary collects what the steps did.
	Summary *model.RunSummary
}

// NewDataset creates a dataset over passengers. A nil summary is replaced
// by an empty one.
func NewDataset(passengers []model.Passenger, summary *model.RunSummary) *Dataset {
	if summary == nil {
		summary = model.NewRunSummary("")
	}
	return &Dataset{
		Passengers: passengers,
		Summary:    summary,
	}
}

// Combine stacks train and test into one dataset so that both share the same
// category levels. Survived is dropped from the combined records; use Labels
// to keep it.
func Combine(train, test []model.Passenger, summary *model.RunSummary) *Dataset {
	combined := make([]model.Passenger, 0, len(train)+len(test))
	for _, p := range train {
		p.Survived = nil
		combined = append(combined, p)
	}
	combined = append(combined, test...)

	ds := NewDataset(combined, summary)
	ds.Summary.TrainRows = len(train)
	ds.Summary.TestRows = len(test)
	return ds
}

// Labels returns the PassengerId and Survived columns of the train records.
// A missing label is an empty cell.
func Labels(train []model.Passenger) *model.Table {
	t := model.NewTable(model.ColPassengerID, model.ColSurvived)
	for _, p := range train {
		survived := ""
		if p.Survived != nil {
			survived = strconv.Itoa(*p.Survived)
		}
		t.Rows = append(t.Rows, []string{strconv.Itoa(p.PassengerID), survived})
	}
	return t
}

// Len returns the number of records.
func (ds *Dataset) Len() int {
	return len(ds.Passengers)
}

// Split cuts the dataset after the first n records. Both halves keep the
// full category levels; they share the summary.
func (ds *Dataset) Split(n int) (*Dataset, *Dataset) {
	n = min(max(n, 0), ds.Len())
	head := &Dataset{Passengers: ds.Passengers[:n:n], Summary: ds.Summary}
	tail := &Dataset{Passengers: ds.Passengers[n:], Summary: ds.Summary}

	slice := func(c *model.Categorical) (*model.Categorical, *model.Categorical) {
		if c == nil {
			return nil, nil
		}
		return c.Slice(0, n), c.Slice(n, c.Len())
	}
	head.Pclass, tail.Pclass = slice(ds.Pclass)
	head.Sex, tail.Sex = slice(ds.Sex)
	head.Embarked, tail.Embarked = slice(ds.Embarked)

	if ds.Features != nil {
		head.Features, tail.Features = &features.Set{}, &features.Set{}
		head.Features.CabinKnown, tail.Features.CabinKnown = slice(ds.Features.CabinKnown)
		head.Features.Title, tail.Features.Title = slice(ds.Features.Title)
		head.Features.FamilySize, tail.Features.FamilySize = slice(ds.Features.FamilySize)
		head.Features.IsMinor, tail.Features.IsMinor = slice(ds.Features.IsMinor)
	}
	return head, tail
}

// PassengerIDs returns the identifier of every record.
func (ds *Dataset) PassengerIDs() []int {
	ids := make([]int, len(ds.Passengers))
	for i, p := range ds.Passengers {
		ids[i] = p.PassengerID
	}
	return ids
}

// Fares returns the fare of every record; a missing fare is 0.
func (ds *Dataset) Fares() []float64 {
	fares := make([]float64, len(ds.Passengers))
	for i, p := range ds.Passengers {
		if p.Fare != nil {
			fares[i] = *p.Fare
		}
	}
	return fares
}

// clonePassengers copies the records so a step can change them without
// touching the previous snapshot. Pointer fields stay shared; steps replace
// them rather than writing through them.
func (ds *Dataset) clonePassengers() []model.Passenger {
	out := make([]model.Passenger, len(ds.Passengers))
	copy(out, ds.Passengers)
	return out
}

package encode

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/nao1215/titanicprep/internal/model"
	"github.com/nao1215/titanicprep/internal/pipeline"
)

func ptr[T any](v T) *T {
	return &v
}

func preparedDataset(t *testing.T) *pipeline.Dataset {
	t.Helper()

	passengers := []model.Passenger{
		{PassengerID: 1, Pclass: 3, Name: "Braund, Mr. Owen Harris", Sex: "male", Age: ptr(22.0), SibSp: 1, Fare: ptr(7.25), Embarked: ptr("S")},
		{PassengerID: 2, Pclass: 1, Name: "Cumings, Mrs. John Bradley", Sex: "female", Age: ptr(38.0), SibSp: 1, Fare: ptr(71.28), Cabin: ptr("C85"), Embarked: ptr("C")},
		{PassengerID: 3, Pclass: 3, Name: "Heikkinen, Miss. Laina", Sex: "female", Age: ptr(8.0), Fare: ptr(7.92), Embarked: ptr("S")},
		{PassengerID: 4, Pclass: 2, Name: "Palsson, Master. Gosta", Sex: "male", Age: ptr(2.0), SibSp: 3, Parch: 1, Fare: ptr(21.07), Embarked: ptr("Q")},
		{PassengerID: 5, Pclass: 3, Name: "Moran, Mr. James", Sex: "male", Fare: ptr(8.46)},
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ds := pipeline.NewDataset(passengers, model.NewRunSummary("prepare"))
	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(pipeline.DefaultSteps(config.NewConfig(), logger)...)
	if err := p.Execute(context.Background(), ds); err != nil {
		t.Fatalf("failed to prepare dataset: %v", err)
	}
	return ds
}

// TestTree tests the ordinal layout.
func TestTree(t *testing.T) {
	t.Parallel()

	df, err := Tree(preparedDataset(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"PassengerId", "Pclass", "IsMale", "Fare", "Embarked", "CabinKnown", "Title", "FamilySize", "IsMinor"}
	if diff := cmp.Diff(want, df.Names()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if df.Nrow() != 5 {
		t.Errorf("expected 5 rows, got %d", df.Nrow())
	}
	if diff := cmp.Diff([]float64{2, 0, 2, 1, 2}, df.Col("Pclass").Float()); diff != "" {
		t.Errorf("Pclass codes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 0, 0, 1, 1}, df.Col("IsMale").Float()); diff != "" {
		t.Errorf("IsMale mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 1, 0, 2, 0}, df.Col("FamilySize").Float()); diff != "" {
		t.Errorf("FamilySize codes mismatch (-want +got):\n%s", diff)
	}
}

// TestScaleVariant tests the one-hot layout.
func TestScaleVariant(t *testing.T) {
	t.Parallel()

	t.Run("expands unordered columns only", func(t *testing.T) {
		t.Parallel()

		df, err := ScaleVariant(preparedDataset(t), Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{
			"PassengerId", "Pclass", "IsMale", "Fare",
			"Embarked_C", "Embarked_Q", "Embarked_S",
			"CabinKnown",
			"Title_Master", "Title_Miss", "Title_Mr", "Title_Mrs",
			"FamilySize", "IsMinor",
		}
		if diff := cmp.Diff(want, df.Names()); diff != "" {
			t.Errorf("columns mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("expands ordered columns when asked", func(t *testing.T) {
		t.Parallel()

		df, err := ScaleVariant(preparedDataset(t), Options{OneHotOrdered: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		names := strings.Join(df.Names(), ",")
		for _, col := range []string{"Pclass_1", "Pclass_2", "Pclass_3", "FamilySize_alone", "FamilySize_normal", "FamilySize_large"} {
			if !strings.Contains(names, col) {
				t.Errorf("expected column %s in %s", col, names)
			}
		}
	})

	t.Run("indicator sums reconstruct category counts", func(t *testing.T) {
		t.Parallel()

		ds := preparedDataset(t)
		df, err := ScaleVariant(ds, Options{OneHotOrdered: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, c := range []*model.Categorical{ds.Pclass, ds.Embarked, ds.Features.Title, ds.Features.FamilySize} {
			for level, count := range c.Counts() {
				sum := 0.0
				for _, v := range df.Col(c.Name + "_" + level).Float() {
					sum += v
				}
				if int(sum) != count {
					t.Errorf("%s_%s: indicator sum %v, want %d", c.Name, level, sum, count)
				}
			}
		}
	})

	t.Run("rejects unprepared dataset", func(t *testing.T) {
		t.Parallel()

		_, err := ScaleVariant(pipeline.NewDataset(nil, nil), Options{})
		if !errors.Is(err, ErrNotPrepared) {
			t.Errorf("expected ErrNotPrepared, got %v", err)
		}
	})
}

// TestOneHot tests indicator expansion of a column with a missing value.
func TestOneHot(t *testing.T) {
	t.Parallel()

	c := model.InferCategorical("Embarked", []string{"S", "", "C", "S"})
	cols := OneHot(c)
	if len(cols) != 2 {
		t.Fatalf("expected 2 indicators, got %d", len(cols))
	}
	if diff := cmp.Diff([]float64{0, 0, 1, 0}, cols[0].Float()); diff != "" {
		t.Errorf("Embarked_C mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 0, 0, 1}, cols[1].Float()); diff != "" {
		t.Errorf("Embarked_S mismatch (-want +got):\n%s", diff)
	}
}

// TestWriteCSV tests frame output.
func TestWriteCSV(t *testing.T) {
	t.Parallel()

	df, err := Tree(preparedDataset(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "tree_train.csv")
	if err := WriteCSV(path, df); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	table, err := model.ReadTable(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if table.Header[0] != model.ColPassengerID || table.Len() != 5 {
		t.Errorf("unexpected output header %v with %d rows", table.Header, table.Len())
	}
}

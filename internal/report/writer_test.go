package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/titanicprep/internal/model"
)

// createTestSummary creates a summary with sample data for testing.
func createTestSummary() *model.RunSummary {
	s := model.NewRunSummary("prepare")
	s.StartedAt = time.Date(2026, 4, 15, 2, 20, 0, 0, time.UTC)
	s.Duration = 1500 * time.Millisecond
	s.TrainRows = 891
	s.TestRows = 418
	s.PerformedSteps = []string{"coerce_types", "engineer_features", "fill_missing", "transform_features"}
	s.Features = &model.FeatureSummary{CabinKnown: true, Title: true, FamilySize: true, IsMinor: true, MinorThreshold: 14}
	s.AddNote("Fare", "Mean of Corresponding Pclass", 1)
	s.AddNote("Embarked", "Mode of Embarked", 2)
	s.MissingBefore = []model.ColumnCount{{Column: "Fare", Count: 1}, {Column: "Embarked", Count: 2}, {Column: "Cabin", Count: 1014}}
	s.MissingAfter = []model.ColumnCount{{Column: "Fare"}, {Column: "Embarked"}, {Column: "Cabin", Count: 1014}, {Column: "Title"}}
	s.Imputations = []model.ImputationSummary{{
		Dataset: "train", Rows: 891, Filled: 2, Ties: 1, LowScore: 1,
		Matches: []model.Match{
			{Dataset: "train", PassengerID: "6", Name: "Moran, Mr. James", MatchedName: "MORAN, Mr James", Score: 97, Age: "30"},
			{Dataset: "train", PassengerID: "20", Name: "Masselmani, Mrs. Fatima", MatchedName: "MASSELMANI, Mrs Fatima", Score: 55, Age: "22", Tie: true},
		},
	}}
	s.Outputs = []string{"out/tree_train.csv", "out/sv_train.csv"}
	return s
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes every section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"TITANICPREP REPORT",
			"Command:    prepare",
			"Train rows: 891",
			"[+] fill_missing",
			"\tcabinKnown:\t\ttrue",
			"\tisMinor (age < 14):\ttrue",
			"Mean of Corresponding Pclass (1 rows)",
			"MISSING VALUES",
			"train: 2 of 891 rows filled, 1 ties, 1 below score 60",
			"[+] out/tree_train.csv",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists doubtful matches only by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "Masselmani") {
			t.Error("expected tied match to be listed")
		}
		if strings.Contains(output, "Moran") {
			t.Error("expected confident match to be omitted")
		}
	})

	t.Run("lists every match in verbose mode", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Moran") {
			t.Error("expected every match to be listed")
		}
	})

	t.Run("omits empty sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(model.NewRunSummary("scrape")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "PIPELINE STEPS") {
			t.Error("expected no steps section")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewMarkdownWriter(&buf).Write(createTestSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == 0 {
		t.Error("expected non-zero length")
	}

	output := buf.String()
	for _, want := range []string{
		"# titanicprep Report",
		"## Pipeline Steps",
		"## Features",
		"## Missing Values",
		"```mermaid",
		"## Age Imputation",
		"### train",
		"Masselmani",
		"## Outputs",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected markdown to contain %q", want)
		}
	}
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("round-trips the summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		summary := createTestSummary()
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Version != "v1.2.3" {
			t.Errorf("expected version v1.2.3, got %q", got.Version)
		}
		if diff := cmp.Diff(summary, got.Summary); diff != "" {
			t.Errorf("summary mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"summary\"") {
			t.Errorf("expected indented output, got %q", buf.String()[:40])
		}
	})
}

type failingWriter struct{}

func (failingWriter) Write(*model.RunSummary) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests fan-out writing.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
		n, err := m.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		m := NewMultiWriter(failingWriter{}, NewSimpleWriter(&buf))
		if _, err := m.Write(createTestSummary()); err == nil {
			t.Error("expected error")
		}
		if buf.Len() != 0 {
			t.Error("expected later writer to be skipped")
		}
	})
}

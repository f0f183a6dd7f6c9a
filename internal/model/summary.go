package model

import (
	"fmt"
	"strconv"
	"time"
)

// FeatureSummary records which derived features were computed and with
// which parameters. It is returned by feature engineering instead of being
// kept as hidden state.
type FeatureSummary struct {
	CabinKnown     bool    `json:"cabin_known"`
	Title          bool    `json:"title"`
	FamilySize     bool    `json:"family_size"`
	IsMinor        bool    `json:"is_minor"`
	MinorThreshold float64 `json:"minor_threshold"`
}

// String renders the summary as an aligned, tab-separated block.
func (s FeatureSummary) String() string {
	return fmt.Sprintf("cabinKnown:\t\t%t\ntitle:\t\t\t%t\nfamilySize:\t\t%t\nisMinor (age < %s):\t%t",
		s.CabinKnown, s.Title, s.FamilySize,
		strconv.FormatFloat(s.MinorThreshold, 'f', -1, 64), s.IsMinor)
}

// Note is a single human-readable remark about a column, such as how its
// missing values were filled or how it was transformed.
type Note struct {
	// Column is the affected column.
	Column string `json:"column"`

	// Action describes what was done, e.g. "Mean of Corresponding Pclass".
	Action string `json:"action"`

	// Rows is the number of rows changed, when that is meaningful.
	Rows int `json:"rows,omitempty"`
}

// ColumnCount pairs a column with a count; used for missing-value summaries.
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// Match is the audit entry of one imputed age.
type Match struct {
	// Dataset is the file label the passenger came from ("train", "test").
	Dataset string `json:"dataset"`

	// PassengerID is the passenger identifier cell as read.
	PassengerID string `json:"passenger_id"`

	// Name is the passenger name that was looked up.
	Name string `json:"name"`

	// MatchedName is the reference name that scored highest.
	MatchedName string `json:"matched_name"`

	// Score is the similarity score in [0, 100].
	Score int `json:"score"`

	// RawAge is the reference age text before suffix handling.
	RawAge string `json:"raw_age"`

	// Age is the value written into the passenger row.
	Age string `json:"age"`

	// Tie reports whether another reference name had the same score.
	Tie bool `json:"tie"`
}

// ImputationSummary summarises the age imputation of one dataset.
type ImputationSummary struct {
	Dataset  string  `json:"dataset"`
	Rows     int     `json:"rows"`
	Filled   int     `json:"filled"`
	Ties     int     `json:"ties"`
	LowScore int     `json:"low_score"`
	Matches  []Match `json:"matches,omitempty"`
}

// RunSummary describes one command run for report output.
type RunSummary struct {
	// Command is the sub-command that produced the summary.
	Command string `json:"command"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`

	// TrainRows and TestRows are the input sizes.
	TrainRows int `json:"train_rows"`
	TestRows  int `json:"test_rows"`

	// PerformedSteps lists pipeline steps in execution order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Features is the feature engineering summary.
	Features *FeatureSummary `json:"features,omitempty"`

	// Notes lists fill and transform remarks in the order they happened.
	Notes []Note `json:"notes,omitempty"`

	// MissingBefore and MissingAfter are per-column missing-value counts.
	MissingBefore []ColumnCount `json:"missing_before,omitempty"`
	MissingAfter  []ColumnCount `json:"missing_after,omitempty"`

	// Imputations holds one summary per imputed dataset.
	Imputations []ImputationSummary `json:"imputations,omitempty"`

	// Outputs lists the files written.
	Outputs []string `json:"outputs,omitempty"`
}

// NewRunSummary creates a summary for the named command.
func NewRunSummary(command string) *RunSummary {
	return &RunSummary{
		Command:   command,
		StartedAt: time.Now(),
	}
}

// AddNote appends a column remark.
func (s *RunSummary) AddNote(column, action string, rows int) {
	s.Notes = append(s.Notes, Note{Column: column, Action: action, Rows: rows})
}

// TotalMissing sums a missing-value summary.
func TotalMissing(counts []ColumnCount) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}

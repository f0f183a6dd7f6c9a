package report

import (
	"fmt"
	"io"

	"github.com/nao1215/titanicprep/internal/model"
)

// Writer renders a run summary somewhere.
type Writer interface {
	// Write renders summary and reports the bytes written.
	Write(summary *model.RunSummary) (int, error)
}

// MultiWriter renders one summary through several Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter returns a MultiWriter over writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write hands summary to each writer and sums the byte counts. The first
// failing writer ends the fan-out.
func (m *MultiWriter) Write(summary *model.RunSummary) (int, error) {
	written := 0
	for i, w := range m.writers {
		n, err := w.Write(summary)
		written += n
		if err != nil {
			return written, fmt.Errorf("report writer %d: %w", i, err)
		}
	}
	return written, nil
}

// baseWriter holds the destination shared by every format.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// missingRow is one line of the before/after missing-value table.
type missingRow struct {
	column string
	before int
	after  int
	// hasAfter is false when the column did not exist after the run.
	hasAfter bool
}

// missingRows merges the before and after counts by column, in the order
// columns appear before, then columns that only exist after.
func missingRows(summary *model.RunSummary) []missingRow {
	rows := make([]missingRow, 0, len(summary.MissingAfter))
	pos := make(map[string]int)
	for _, c := range summary.MissingBefore {
		pos[c.Column] = len(rows)
		rows = append(rows, missingRow{column: c.Column, before: c.Count})
	}
	for _, c := range summary.MissingAfter {
		i, ok := pos[c.Column]
		if !ok {
			i = len(rows)
			rows = append(rows, missingRow{column: c.Column})
		}
		rows[i].after = c.Count
		rows[i].hasAfter = true
	}
	return rows
}

// doubtfulMatches returns the tied and low-score matches of an imputation.
func doubtfulMatches(imp model.ImputationSummary, minScore int) []model.Match {
	out := make([]model.Match, 0)
	for _, m := range imp.Matches {
		if m.Tie || m.Score < minScore {
			out = append(out, m)
		}
	}
	return out
}

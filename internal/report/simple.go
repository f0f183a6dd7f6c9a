package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/nao1215/titanicprep/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose lists every imputed match instead of the doubtful ones only.
	verbose bool

	// minScore is the score under which a match is doubtful.
	minScore int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithMinScore sets the score under which matches are listed as doubtful.
func WithMinScore(score int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.minScore = score
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		minScore:   config.DefaultMinScoreWarning,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeSteps(&sb, summary)
	w.writeFeatures(&sb, summary)
	w.writeNotes(&sb, summary)
	w.writeMissing(&sb, summary)
	w.writeImputations(&sb, summary)
	w.writeOutputs(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        TITANICPREP REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Command:    %s\n", summary.Command))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", summary.Duration))
	if summary.TrainRows > 0 || summary.TestRows > 0 {
		sb.WriteString(fmt.Sprintf("Train rows: %d\n", summary.TrainRows))
		sb.WriteString(fmt.Sprintf("Test rows:  %d\n", summary.TestRows))
	}
	sb.WriteString("\n")
}

// writeSteps writes the performed pipeline steps.
func (w *SimpleWriter) writeSteps(sb *strings.Builder, summary *model.RunSummary) {
	if len(summary.PerformedSteps) == 0 {
		return
	}
	section(sb, "PIPELINE STEPS")
	for _, step := range summary.PerformedSteps {
		sb.WriteString(fmt.Sprintf("  [+] %s\n", step))
	}
	sb.WriteString("\n")
}

// writeFeatures writes the feature engineering summary, one tab-indented
// line per derivation.
func (w *SimpleWriter) writeFeatures(sb *strings.Builder, summary *model.RunSummary) {
	if summary.Features == nil {
		return
	}
	section(sb, "FEATURES")
	for _, line := range strings.Split(summary.Features.String(), "\n") {
		sb.WriteString("\t" + line + "\n")
	}
	sb.WriteString("\n")
}

// writeNotes writes fill and transform remarks.
func (w *SimpleWriter) writeNotes(sb *strings.Builder, summary *model.RunSummary) {
	if len(summary.Notes) == 0 {
		return
	}
	section(sb, "FILLS AND TRANSFORMS")
	for _, n := range summary.Notes {
		sb.WriteString(fmt.Sprintf("  %-12s %s (%d rows)\n", n.Column+":", n.Action, n.Rows))
	}
	sb.WriteString("\n")
}

// writeMissing writes the before/after missing-value counts.
func (w *SimpleWriter) writeMissing(sb *strings.Builder, summary *model.RunSummary) {
	rows := missingRows(summary)
	if len(rows) == 0 {
		return
	}
	section(sb, "MISSING VALUES")
	sb.WriteString(fmt.Sprintf("  %-12s %8s %8s\n", "Column", "Before", "After"))
	for _, r := range rows {
		after := "-"
		if r.hasAfter {
			after = fmt.Sprintf("%d", r.after)
		}
		sb.WriteString(fmt.Sprintf("  %-12s %8d %8s\n", r.column, r.before, after))
	}
	sb.WriteString("\n")
}

// writeImputations writes the age imputation results.
func (w *SimpleWriter) writeImputations(sb *strings.Builder, summary *model.RunSummary) {
	if len(summary.Imputations) == 0 {
		return
	}
	section(sb, "AGE IMPUTATION")
	for _, imp := range summary.Imputations {
		sb.WriteString(fmt.Sprintf("  %s: %d of %d rows filled, %d ties, %d below score %d\n",
			imp.Dataset, imp.Filled, imp.Rows, imp.Ties, imp.LowScore, w.minScore))

		matches := imp.Matches
		if !w.verbose {
			matches = doubtfulMatches(imp, w.minScore)
		}
		for _, m := range matches {
			flag := ""
			if m.Tie {
				flag = " (tie)"
			}
			sb.WriteString(fmt.Sprintf("    * %s %q -> %q score=%d age=%s%s\n",
				m.PassengerID, m.Name, m.MatchedName, m.Score, m.Age, flag))
		}
	}
	sb.WriteString("\n")
}

// writeOutputs writes the list of produced files.
func (w *SimpleWriter) writeOutputs(sb *strings.Builder, summary *model.RunSummary) {
	if len(summary.Outputs) == 0 {
		return
	}
	section(sb, "OUTPUTS")
	for _, out := range summary.Outputs {
		sb.WriteString(fmt.Sprintf("  [+] %s\n", out))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by titanicprep\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

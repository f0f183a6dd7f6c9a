package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/nao1215/titanicprep/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter

	// minScore is the score under which a match is doubtful.
	minScore int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownMinScore sets the score under which matches are listed as doubtful.
func WithMarkdownMinScore(score int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.minScore = score
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		minScore:   config.DefaultMinScoreWarning,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSteps(md, summary)
	w.writeFeatures(md, summary)
	w.writeNotes(md, summary)
	w.writeMissing(md, summary)
	w.writeImputations(md, summary)
	w.writeOutputs(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("titanicprep Report")
	md.PlainText("")

	rows := [][]string{
		{"Command", "`" + summary.Command + "`"},
		{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", summary.Duration.String()},
	}
	if summary.TrainRows > 0 || summary.TestRows > 0 {
		rows = append(rows,
			[]string{"Train rows", strconv.Itoa(summary.TrainRows)},
			[]string{"Test rows", strconv.Itoa(summary.TestRows)},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSteps writes the performed pipeline steps.
func (w *MarkdownWriter) writeSteps(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.PerformedSteps) == 0 {
		return
	}
	md.H2("Pipeline Steps")
	md.PlainText("")
	md.BulletList(summary.PerformedSteps...)
	md.PlainText("")
}

// writeFeatures writes the feature engineering summary.
func (w *MarkdownWriter) writeFeatures(md *markdown.Markdown, summary *model.RunSummary) {
	if summary.Features == nil {
		return
	}
	md.H2("Features")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightText, summary.Features.String())
	md.PlainText("")
}

// writeNotes writes fill and transform remarks.
func (w *MarkdownWriter) writeNotes(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.Notes) == 0 {
		return
	}
	md.H2("Fills and Transforms")
	md.PlainText("")

	rows := make([][]string, len(summary.Notes))
	for i, n := range summary.Notes {
		rows[i] = []string{n.Column, n.Action, strconv.Itoa(n.Rows)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Column", "Action", "Rows"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeMissing writes the missing-value table and a chart of what was
// missing before the run.
func (w *MarkdownWriter) writeMissing(md *markdown.Markdown, summary *model.RunSummary) {
	rows := missingRows(summary)
	if len(rows) == 0 {
		return
	}
	md.H2("Missing Values")
	md.PlainText("")

	table := make([][]string, len(rows))
	for i, r := range rows {
		after := "-"
		if r.hasAfter {
			after = strconv.Itoa(r.after)
		}
		table[i] = []string{r.column, strconv.Itoa(r.before), after}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Column", "Before", "After"},
		Rows:   table,
	})
	md.PlainText("")

	if model.TotalMissing(summary.MissingBefore) > 0 {
		w.writePieChart(md, summary.MissingBefore)
	}
}

// writePieChart writes a mermaid pie chart of the missing values per column.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts []model.ColumnCount) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Missing Values Before Preparation"),
		piechart.WithShowData(true),
	)
	for _, c := range counts {
		if c.Count > 0 {
			chart.LabelAndIntValue(c.Column, uint64(c.Count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeImputations writes the age imputation results.
func (w *MarkdownWriter) writeImputations(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.Imputations) == 0 {
		return
	}
	md.H2("Age Imputation")
	md.PlainText("")

	rows := make([][]string, len(summary.Imputations))
	ties, low := 0, 0
	for i, imp := range summary.Imputations {
		rows[i] = []string{
			imp.Dataset,
			strconv.Itoa(imp.Rows),
			strconv.Itoa(imp.Filled),
			strconv.Itoa(imp.Ties),
			strconv.Itoa(imp.LowScore),
		}
		ties += imp.Ties
		low += imp.LowScore
	}
	md.Table(markdown.TableSet{
		Header: []string{"Dataset", "Rows", "Filled", "Ties", "Low score"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case low > 0:
		md.Warningf("%d match(es) scored below %d; check the imputed ages below.", low, w.minScore)
	case ties > 0:
		md.Importantf("%d match(es) were tied and resolved by name order.", ties)
	default:
		md.Tip("Every imputed age comes from an unambiguous match.")
	}
	md.PlainText("")

	for _, imp := range summary.Imputations {
		doubtful := doubtfulMatches(imp, w.minScore)
		if len(doubtful) == 0 {
			continue
		}
		md.PlainText("### " + imp.Dataset)
		md.PlainText("")
		rows := make([][]string, len(doubtful))
		for i, m := range doubtful {
			rows[i] = []string{
				m.PassengerID,
				m.Name,
				m.MatchedName,
				strconv.Itoa(m.Score),
				m.Age,
				strconv.FormatBool(m.Tie),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"PassengerId", "Name", "Matched", "Score", "Age", "Tie"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeOutputs writes the list of produced files.
func (w *MarkdownWriter) writeOutputs(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.Outputs) == 0 {
		return
	}
	md.H2("Outputs")
	md.PlainText("")
	md.BulletList(summary.Outputs...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [titanicprep](https://github.com/nao1215/titanicprep)*")
}

package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/titanicprep/internal/model"
)

// JSONReport is the document emitted by JSONWriter.
type JSONReport struct {
	// Version is the titanicprep build that produced the run.
	Version string `json:"version,omitempty"`
	// Summary is the run itself.
	Summary *model.RunSummary `json:"summary"`
}

// JSONWriter emits one JSONReport per run, terminated by a newline.
type JSONWriter struct {
	baseWriter
	version string
	pretty  bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents nested objects by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) { w.pretty = true }
}

// WithVersion stamps the given build version into every report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) { w.version = version }
}

// NewJSONWriter returns a JSONWriter targeting output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write encodes the summary. HTML characters in passenger names are kept
// as-is rather than escaped.
func (w *JSONWriter) Write(summary *model.RunSummary) (int, error) {
	cw := &countingWriter{w: w.output}
	enc := json.NewEncoder(cw)
	enc.SetEscapeHTML(false)
	if w.pretty {
		enc.SetIndent("", "  ")
	}
	err := enc.Encode(JSONReport{Version: w.version, Summary: summary})
	return cw.n, err
}

// countingWriter tracks bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

package report

import (
	"encoding/json"
	"io"

	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/policy"
	"github.com/forest6511/passforge/pkg/strength"
)

// JSONWriter outputs structured JSON for scripts and tool integration.
type JSONWriter struct {
	baseWriter

	indentPrefix string
	indentString string
	indent       bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// GeneratedPassword is the JSON shape of one generation result.
type GeneratedPassword struct {
	Password    string               `json:"password"`
	Mode        policy.Mode          `json:"mode"`
	Length      int                  `json:"length"`
	EntropyBits float64              `json:"entropy_bits"`
	Score       int                  `json:"score"`
	Label       strength.Label       `json:"label"`
	Deductions  []strength.Deduction `json:"deductions"`
}

// NewGeneratedPassword flattens a result for JSON output.
func NewGeneratedPassword(r *generator.Result) GeneratedPassword {
	deductions := r.Report.Deductions
	if deductions == nil {
		deductions = []strength.Deduction{}
	}
	return GeneratedPassword{
		Password:    r.Password.Value,
		Mode:        r.Password.Mode,
		Length:      len(r.Password.Value),
		EntropyBits: r.Report.EntropyBits,
		Score:       r.Report.Score,
		Label:       r.Report.Label,
		Deductions:  deductions,
	}
}

// WriteResults implements Writer. The output is always a JSON array.
func (w *JSONWriter) WriteResults(results []*generator.Result) (int, error) {
	out := make([]GeneratedPassword, len(results))
	for i, r := range results {
		out[i] = NewGeneratedPassword(r)
	}
	return w.writeJSON(out)
}

// WriteScore implements Writer.
func (w *JSONWriter) WriteScore(report strength.Report) (int, error) {
	if report.Deductions == nil {
		report.Deductions = []strength.Deduction{}
	}
	return w.writeJSON(report)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

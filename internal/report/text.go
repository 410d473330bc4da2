package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/strength"
)

// TextWriter prints plain text for terminals and pipes. Without explain
// it prints only the passwords, one per line.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...Option) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(&w.baseWriter)
	}
	return w
}

// WriteResults implements Writer.
func (w *TextWriter) WriteResults(results []*generator.Result) (int, error) {
	var sb strings.Builder

	for i, r := range results {
		if !w.explain {
			sb.WriteString(r.Password.Value)
			sb.WriteByte('\n')
			continue
		}

		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s\n", r.Password.Value)
		fmt.Fprintf(&sb, "  Mode:     %s\n", r.Password.Mode)
		w.writeReport(&sb, r.Report, "  ")
	}

	return io.WriteString(w.output, sb.String())
}

// WriteScore implements Writer. The deduction list is always shown
// because it is the point of scoring.
func (w *TextWriter) WriteScore(report strength.Report) (int, error) {
	var sb strings.Builder
	w.writeReport(&sb, report, "")
	if len(report.Deductions) == 0 {
		sb.WriteString("No weaknesses found.\n")
	}
	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeReport(sb *strings.Builder, report strength.Report, indent string) {
	fmt.Fprintf(sb, "%sStrength: %s\n", indent, report.Label)
	fmt.Fprintf(sb, "%sScore:    %s\n", indent, formatScore(report.Score))
	fmt.Fprintf(sb, "%sEntropy:  %s\n", indent, formatEntropy(report.EntropyBits))

	if len(report.Deductions) == 0 {
		return
	}
	fmt.Fprintf(sb, "%sDeductions:\n", indent)
	for _, d := range report.Deductions {
		fmt.Fprintf(sb, "%s  - %s\n", indent, formatDeduction(d))
	}
}

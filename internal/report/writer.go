// Package report renders generated passwords and strength reports.
//
// Writers share one interface so the CLI and tests can swap the output
// format with a flag:
//   - TextWriter: terminal output, one password per line
//   - JSONWriter: structured output for scripts
//   - MarkdownWriter: tables for notes and tickets
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/strength"
)

// Format names accepted by NewWriter.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Writer outputs generation results and strength reports.
type Writer interface {
	// WriteResults outputs generated passwords with their reports.
	WriteResults(results []*generator.Result) (int, error)

	// WriteScore outputs the report for a password the caller supplied.
	// The password itself is never written.
	WriteScore(report strength.Report) (int, error)
}

// Formats returns the accepted format names.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatMarkdown}
}

// NewWriter returns the writer for format. explain adds the deduction
// breakdown to text and markdown output; JSON always carries it.
func NewWriter(format string, output io.Writer, explain bool) (Writer, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewTextWriter(output, WithExplain(explain)), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output, WithExplain(explain)), nil
	}
	return nil, fmt.Errorf("unknown output format %q: must be one of %s", format, strings.Join(Formats(), ", "))
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output  io.Writer
	explain bool
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Option configures the text and markdown writers.
type Option func(*baseWriter)

// WithExplain includes every fired deduction in the output.
func WithExplain(explain bool) Option {
	return func(w *baseWriter) {
		w.explain = explain
	}
}

func formatEntropy(bits float64) string {
	return fmt.Sprintf("%.2f bits", bits)
}

func formatScore(score int) string {
	return fmt.Sprintf("%d/100", score)
}

func formatDeduction(d strength.Deduction) string {
	return fmt.Sprintf("%s (-%d): %s", d.Rule, d.Points, d.Reason)
}

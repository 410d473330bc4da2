package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/strength"
)

// MarkdownWriter outputs GitHub-flavored markdown tables.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...Option) *MarkdownWriter {
	w := &MarkdownWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(&w.baseWriter)
	}
	return w
}

// WriteResults implements Writer.
func (w *MarkdownWriter) WriteResults(results []*generator.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Generated Passwords")
	md.PlainText("")

	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			codeSpan(r.Password.Value),
			r.Password.Mode.String(),
			formatEntropy(r.Report.EntropyBits),
			formatScore(r.Report.Score),
			r.Report.Label.String(),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Password", "Mode", "Entropy", "Score", "Strength"},
		Rows:   rows,
	})
	md.PlainText("")

	if w.explain {
		for i, r := range results {
			md.H2("Password " + strconv.Itoa(i+1))
			md.PlainText("")
			w.writeDeductions(md, r.Report)
		}
	}

	return len(md.String()), md.Build()
}

// WriteScore implements Writer.
func (w *MarkdownWriter) WriteScore(report strength.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Password Strength")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Strength", report.Label.String()},
			{"Score", formatScore(report.Score)},
			{"Entropy", formatEntropy(report.EntropyBits)},
		},
	})
	md.PlainText("")

	md.H2("Deductions")
	md.PlainText("")
	w.writeDeductions(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeDeductions(md *markdown.Markdown, report strength.Report) {
	if len(report.Deductions) == 0 {
		md.PlainText("No weaknesses found.")
		md.PlainText("")
		return
	}

	items := make([]string, len(report.Deductions))
	for i, d := range report.Deductions {
		items[i] = formatDeduction(d)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// codeSpan wraps s in a code span that survives backticks and table pipes
// in generated symbols.
func codeSpan(s string) string {
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

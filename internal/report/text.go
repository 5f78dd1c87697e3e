package report

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/noisec/internal/diagnostics"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
)

// TextPrinter writes diagnostics one per line, coloring the severity when
// the output is a terminal.
type TextPrinter struct {
	Out   io.Writer
	Color bool
}

// NewTextPrinter returns a printer for f. Color is enabled for terminals
// unless NO_COLOR is set.
func NewTextPrinter(f *os.File) *TextPrinter {
	return &TextPrinter{Out: f, Color: colorEnabled(f)}
}

func colorEnabled(f *os.File) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Print writes every diagnostic and a summary line.
func (p *TextPrinter) Print(doc *Document) {
	if doc.Fatal != "" {
		fmt.Fprintf(p.Out, "%s: %s\n", p.paint(ansiRed, "fatal"), doc.Fatal)
		return
	}
	for _, e := range doc.Errors {
		p.printEntry(e)
	}
	for _, e := range doc.Warnings {
		p.printEntry(e)
	}
	fmt.Fprintln(p.Out, p.summary(doc))
}

func (p *TextPrinter) printEntry(e Entry) {
	loc := "<unknown>"
	if e.Line > 0 {
		loc = fmt.Sprintf("%d:%d", e.Line, e.Column)
	}
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	color := ansiRed
	if e.Severity == diagnostics.SeverityWarning.String() {
		color = ansiYellow
	}
	label := p.paint(color, fmt.Sprintf("%s[%s]", e.Severity, e.Code))
	fmt.Fprintf(p.Out, "%s: %s: %s\n", p.paint(ansiBold, loc), label, e.Message)
}

func (p *TextPrinter) summary(doc *Document) string {
	s := fmt.Sprintf("%s: %d %s, %d %s", doc.Package,
		len(doc.Errors), plural(len(doc.Errors), "error"),
		len(doc.Warnings), plural(len(doc.Warnings), "warning"))
	if doc.Failed {
		return p.paint(ansiRed, s)
	}
	return s
}

func (p *TextPrinter) paint(code, s string) string {
	if !p.Color {
		return s
	}
	return code + s + ansiReset
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats Errors against one source text, the way the
// teacher's own ErrorReporter formats CompilerErrors: a header line
// naming the code and message, a --> location line, the offending
// source line with a caret underneath, and any notes.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter builds a Reporter for one named source document.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders err as a multi-line colorized string. When err has no
// source position it falls back to a plain "component: message" line.
func (r *Reporter) Format(err *Error) string {
	if !err.Position.HasPosition() {
		return r.formatPlain(err)
	}
	return r.formatPositioned(err)
}

func (r *Reporter) formatPlain(err *Error) string {
	bold := color.New(color.FgRed, color.Bold).SprintFunc()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s[%s]: %s\n", bold("error"), err.Code, err.Message))
	for _, note := range err.Notes {
		b.WriteString(fmt.Sprintf("  %s %s\n", color.New(color.FgBlue).Sprint("note:"), note))
	}
	return b.String()
}

func (r *Reporter) formatPositioned(err *Error) string {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	levelColor := color.New(color.FgRed, color.Bold).SprintFunc()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor("error"), err.Code, err.Message))

	width := lineNumberWidth(err.Position.Line)
	indent := strings.Repeat(" ", width)
	b.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, err.Position.Line, err.Position.Column))
	b.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if err.Position.Line > 0 && err.Position.Line <= len(r.lines) {
		line := r.lines[err.Position.Line-1]
		b.WriteString(fmt.Sprintf("%s %s %s\n", bold(fmt.Sprintf("%*d", width, err.Position.Line)), dim("│"), line))
		b.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), marker(err.Position.Column)))
	}

	for _, note := range err.Notes {
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), color.New(color.FgBlue).Sprint("note:"), note))
	}
	return b.String()
}

func marker(column int) string {
	spaces := strings.Repeat(" ", max0(column-1))
	return spaces + color.New(color.FgRed, color.Bold).Sprint("^")
}

func lineNumberWidth(line int) int {
	w := len(fmt.Sprintf("%d", line))
	if w < 3 {
		return 3
	}
	return w
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

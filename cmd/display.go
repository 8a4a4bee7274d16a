package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kievzenit/cyc/internal/compiler"
	"github.com/kievzenit/cyc/internal/compiler_errors"
)

// diagnosticDisplay renders diagnostics with the offending source line and a
// caret under the reported column.
type diagnosticDisplay struct {
	w       io.Writer
	tabSize int

	locationStyle lipgloss.Style
	errorStyle    lipgloss.Style
	sourceStyle   lipgloss.Style
	caretStyle    lipgloss.Style
}

func newDiagnosticDisplay(w io.Writer, tabSize int, color bool) *diagnosticDisplay {
	d := &diagnosticDisplay{
		w:       w,
		tabSize: tabSize,

		locationStyle: lipgloss.NewStyle(),
		errorStyle:    lipgloss.NewStyle(),
		sourceStyle:   lipgloss.NewStyle(),
		caretStyle:    lipgloss.NewStyle(),
	}

	if color {
		d.locationStyle = d.locationStyle.Bold(true)
		d.errorStyle = d.errorStyle.Foreground(lipgloss.Color("#F87171")).Bold(true)
		d.sourceStyle = d.sourceStyle.Foreground(lipgloss.Color("#64748B"))
		d.caretStyle = d.caretStyle.Foreground(lipgloss.Color("#10B981")).Bold(true)
	}

	return d
}

func (d *diagnosticDisplay) Show(diag compiler_errors.Diagnostic) {
	location := diag.FileName
	if location != "" && diag.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, diag.Line)
		if diag.SourceLine != "" {
			location = fmt.Sprintf("%s:%d", location, diag.Column+1)
		}
	}

	header := d.errorStyle.Render(fmt.Sprintf("%s error:", diag.Phase)) + " " + diag.Message
	if location != "" {
		header = d.locationStyle.Render(location+":") + " " + header
	}
	fmt.Fprintln(d.w, header)

	if diag.SourceLine == "" {
		return
	}

	fmt.Fprintln(d.w, "  "+d.sourceStyle.Render(expandTabs(diag.SourceLine, d.tabSize)))
	padding := strings.Repeat(" ", visualColumn(diag.SourceLine, diag.Column, d.tabSize))
	fmt.Fprintln(d.w, "  "+padding+d.caretStyle.Render("^"))
}

// ShowError displays a fatal compilation error. Joined errors are shown one
// by one.
func (d *diagnosticDisplay) ShowError(err error, result *compiler.Result) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			d.ShowError(e, result)
		}
		return
	}

	var te *compiler_errors.TypeError
	if !errors.As(err, &te) {
		d.Show(compiler_errors.Diagnostic{Phase: compiler_errors.PhaseType, Message: err.Error()})
		return
	}

	diag := compiler_errors.Diagnostic{
		Phase:    compiler_errors.PhaseType,
		FileName: te.FileName,
		Line:     te.Line,
		Message:  typeErrorMessage(te),
	}
	if result != nil {
		if src, ok := result.LineSources()[te.FileName]; ok && te.Line > 0 {
			diag.SourceLine = src.LineText(te.Line)
			diag.Column = firstNonBlank(diag.SourceLine)
		}
	}
	d.Show(diag)
}

func typeErrorMessage(te *compiler_errors.TypeError) string {
	msg := fmt.Sprintf("[%s] %s", te.Code, te.Message)
	if te.Name != "" {
		msg = fmt.Sprintf("[%s] %s: %s", te.Code, te.Name, te.Message)
	}
	if te.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, te.Err)
	}
	return msg
}

func firstNonBlank(line string) int {
	for i, r := range []rune(line) {
		if r != ' ' && r != '\t' {
			return i
		}
	}
	return 0
}

func expandTabs(line string, tabSize int) string {
	var sb strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := tabSize - col%tabSize
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}

// visualColumn converts a rune column into a screen column with tabs
// expanded.
func visualColumn(line string, column int, tabSize int) int {
	col := 0
	for i, r := range []rune(line) {
		if i >= column {
			break
		}
		if r == '\t' {
			col += tabSize - col%tabSize
			continue
		}
		col++
	}
	return col
}

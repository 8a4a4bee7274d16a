package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kievzenit/cyc/internal/compiler_errors"
)

func writeSource(t *testing.T, dir string, name string, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunWritesIR(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "main.cy", "int main()\n\treturn 0\n")
	out := filepath.Join(dir, "main.ll")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", filepath.Join(dir, "none.toml"), "-o", out, src}, &stdout, &stderr)
	require.Equal(t, 2, code, "an explicit missing config is an error")

	code = run(context.Background(), []string{"-o", out, "-no-color", src}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	ir, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(ir), "define i32 @main() {")
	assert.Contains(t, string(ir), "ret i32 0")
}

func TestRunDumps(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "shapes.cy", "class Point\n\tint x\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-tokens", "-ast", "-types", "-no-color", src}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "== tokens: "+src)
	assert.Contains(t, out, "CLASS")
	assert.Contains(t, out, "(class Point (var int x))")
	assert.Contains(t, out, "shapes.Point")
}

func TestRunReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "main.cy", "void f()\n\tint x = \n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-no-color", src}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), src+":2:")
	assert.Contains(t, stderr.String(), "syntax error: expected expression")
}

func TestRunReportsTypeErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "main.cy", "class A\n\tMissing m\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-no-color", src}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "[UNRESOLVED_TYPE] Missing: unknown type")
	assert.Contains(t, stderr.String(), "      Missing m")
}

func TestRunWithoutInputs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "x.toml")}, &stdout, &stderr)
	assert.Equal(t, 2, code)
}

func TestDisplayAlignsCaretWithTabs(t *testing.T) {
	var buf bytes.Buffer
	display := newDiagnosticDisplay(&buf, 4, false)

	display.Show(compiler_errors.Diagnostic{
		Phase:      compiler_errors.PhaseSyntax,
		FileName:   "main.cy",
		Line:       3,
		Column:     3,
		SourceLine: "\tx $ 1",
		Message:    "unexpected character: '$'",
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "main.cy:3:4: syntax error: unexpected character: '$'", lines[0])
	assert.Equal(t, "      x $ 1", lines[1])
	assert.Equal(t, "        ^", lines[2])
}

func TestDisplayWithoutPosition(t *testing.T) {
	var buf bytes.Buffer
	newDiagnosticDisplay(&buf, 4, false).Show(compiler_errors.Diagnostic{
		Phase:   compiler_errors.PhaseType,
		Message: "layout failed",
	})

	assert.Equal(t, "type error: layout failed\n", buf.String())
}

func TestExpandTabs(t *testing.T) {
	assert.Equal(t, "        x", expandTabs("\t\tx", 4))
	assert.Equal(t, "ab  c", expandTabs("ab\tc", 4))
	assert.Equal(t, 4, visualColumn("ab\tc", 3, 4))
}

package dump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/lexer"
	"github.com/kievzenit/cyc/internal/parser"
	"github.com/kievzenit/cyc/internal/semantic_analyzer"
	"github.com/kievzenit/cyc/internal/types"
)

func rows(out string) []string {
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, strings.Join(strings.Fields(line), " "))
	}
	return rows
}

func TestTokens(t *testing.T) {
	src := lexer.NewSourceFile("main.cy", "int x = 3\n")
	tokens := lexer.NewLexer(src, compiler_errors.NewErrorHandler()).Tokenize()

	var buf bytes.Buffer
	require.NoError(t, Tokens(&buf, tokens, false))

	got := rows(buf.String())
	assert.Equal(t, "LEXEME KIND LITERAL INDENT LINE OFFSET", got[0])
	assert.Equal(t, []string{
		`"int" INT 0 1 0`,
		`"x" IDENTIFIER 0 1 4`,
		`"=" EQUAL 0 1 6`,
		`"3" INT_LITERAL 3 0 1 8`,
		`"\n" NEWLINE 0 1 9`,
	}, got[1:6])
	assert.True(t, strings.HasPrefix(got[6], `"" EOF`))

	buf.Reset()
	require.NoError(t, Tokens(&buf, tokens, true))
	assert.Contains(t, buf.String(), "IGNORED")
}

func parse(t *testing.T, src string) *ast.TranslationUnit {
	t.Helper()

	eh := compiler_errors.NewErrorHandler()
	unit := parser.ParseSource(lexer.NewSourceFile("shapes.cy", src), eh)
	require.False(t, eh.HasErrors(), "%v", eh.Errors())
	return unit
}

func TestAST(t *testing.T) {
	unit := parse(t, "int x = 1 + 2\nvoid f()\n\treturn\n")

	var buf bytes.Buffer
	require.NoError(t, AST(&buf, unit))
	assert.Equal(t, "(var int x (+ 1 2))\n(func void f (block (return)))\n", buf.String())
}

func TestTypeTable(t *testing.T) {
	unit := parse(t, "class Point\n\tint x\n\tint8 y\n")
	table, err := semantic_analyzer.BuildTypeTable([]*ast.TranslationUnit{unit}, types.DefaultLayoutPolicy())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, TypeTable(&buf, table))

	got := rows(buf.String())
	assert.Equal(t, "FORMAT NAME BITS BYTES ALIGN OFFSET", got[0])
	assert.Contains(t, got, "int int 32 4 4")
	assert.Contains(t, got, "bool bool 1 1 1")
	assert.Contains(t, got, "void void 0 0 1")

	tail := got[len(got)-3:]
	assert.Equal(t, []string{
		"object shapes.Point 40 5 4",
		"int int x 32 4 4 0",
		"int int8 y 8 1 1 4",
	}, tail)
	assert.True(t, strings.HasPrefix(strings.Split(buf.String(), "\n")[len(got)-2], "  "))
}

func TestRaw(t *testing.T) {
	unit := parse(t, "int x = 1\n")

	var buf bytes.Buffer
	require.NoError(t, Raw(&buf, unit))

	out := buf.String()
	assert.Contains(t, out, "TranslationUnit")
	assert.Contains(t, out, "VarDeclStmt")
	assert.Contains(t, out, `"shapes.cy"`)
	assert.NotContains(t, out, "StartToken")
}

package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/lexer"
)

func parse(t *testing.T, text string) (*ast.TranslationUnit, compiler_errors.ErrorHandler) {
	t.Helper()

	eh := compiler_errors.NewErrorHandler()
	unit := ParseSource(lexer.NewSourceFile("main.cy", text), eh)
	require.NotNil(t, unit)
	return unit, eh
}

func parseOK(t *testing.T, text string) *ast.TranslationUnit {
	t.Helper()

	unit, eh := parse(t, text)
	for _, err := range eh.Errors() {
		t.Errorf("unexpected error: %s", err.GetMessage())
	}
	return unit
}

func printed(unit *ast.TranslationUnit) []string {
	return strings.Split(strings.TrimSuffix(ast.PrintUnit(unit), "\n"), "\n")
}

func TestParseVariableDeclarations(t *testing.T) {
	unit := parseOK(t, "int x = 3\nfloat y = 1.5\n")

	assert.Equal(t, "main", unit.Module)
	require.Len(t, unit.Stmts, 2)

	x, ok := unit.Stmts[0].(*ast.VarDeclStmt)
	require.True(t, ok)
	assert.Equal(t, "x", x.Name)
	assert.Equal(t, "int", x.Type.TypeName())
	assert.Equal(t, int32(3), x.Value.(*ast.LiteralExpr).Value)

	y, ok := unit.Stmts[1].(*ast.VarDeclStmt)
	require.True(t, ok)
	assert.Equal(t, "float", y.Type.TypeName())
	assert.Equal(t, 2, y.FirstToken().Line)

	assert.Equal(t, []string{"(var int x 3)", "(var float y 1.5)"}, printed(unit))
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"precedence", "a + b * c - d\n", "(expr (- (+ a (* b c)) d))"},
		{"grouping", "(a + b) * c\n", "(expr (* (group (+ a b)) c))"},
		{"logical", "a or b and c == d\n", "(expr (or a (and b (== c d))))"},
		{"comparison", "a < b != c >= d\n", "(expr (!= (< a b) (>= c d)))"},
		{"unary", "!-x\n", "(expr (! (- x)))"},
		{"prefix", "++i\n", "(expr (++ i))"},
		{"assign right associative", "a = b = 1\n", "(expr (= a (= b 1)))"},
		{"set", "p.pos.x = 2\n", "(expr (= (. (. p pos) x) 2))"},
		{"call", "f(1, g(x), \"s\")\n", "(expr (call f 1 (call g x) \"s\"))"},
		{"method call", "p.len()\n", "(expr (call (. p len)))"},
		{"literals", "f(true, false, null, 2.5)\n", "(expr (call f true false null 2.5))"},
		{"modulo", "a % b / c\n", "(expr (/ (% a b) c))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := parseOK(t, tt.src)
			assert.Equal(t, []string{tt.want}, printed(unit))
		})
	}
}

func TestParseFunction(t *testing.T) {
	unit := parseOK(t, "int add(int a, int b)\n\tint c = a + b\n\treturn c\nvoid main()\n\tadd(1, 2)\n")

	require.Len(t, unit.Stmts, 2)
	add := unit.Stmts[0].(*ast.FuncDeclStmt)
	assert.Equal(t, "add", add.Name)
	assert.Equal(t, "int", add.ReturnType.TypeName())
	require.Len(t, add.Params, 2)
	assert.Equal(t, "b", add.Params[1].Name)
	require.Len(t, add.Body.Stmts, 2)

	assert.Equal(t, []string{
		"(func int add (param int a) (param int b) (block (var int c (+ a b)) (return c)))",
		"(func void main (block (expr (call add 1 2))))",
	}, printed(unit))
}

func TestParseClass(t *testing.T) {
	src := "class Shape\n" +
		"\tint32 a\n" +
		"\tint32 b\n" +
		"\tclass Inner\n" +
		"\t\tint8 c\n" +
		"\tInner inner\n" +
		"\tint area()\n" +
		"\t\treturn a * b\n" +
		"Shape s\n"

	unit := parseOK(t, src)
	require.Len(t, unit.Stmts, 2)

	shape := unit.Stmts[0].(*ast.ClassDeclStmt)
	assert.Equal(t, "Shape", shape.Name)
	require.Len(t, shape.Members, 3)
	require.Len(t, shape.Classes, 1)
	require.Len(t, shape.Methods, 1)
	assert.Equal(t, "Inner", shape.Members[2].Type.TypeName())
	assert.False(t, shape.Members[2].Type.IsPrimitive())
	assert.Equal(t, "c", shape.Classes[0].Members[0].Name)

	assert.Equal(t,
		"(class Shape (var int32 a) (var int32 b) (var Inner inner) (func int area (block (return (* a b)))) (class Inner (var int8 c)))",
		printed(unit)[0])
	assert.Equal(t, "(var Shape s)", printed(unit)[1])
}

func TestParseControlFlow(t *testing.T) {
	src := "void f(int n)\n" +
		"\tif n < 0\n" +
		"\t\treturn\n" +
		"\telse if n == 0\n" +
		"\t\tn = 1\n" +
		"\telse\n" +
		"\t\tn = 2\n" +
		"\twhile n > 0\n" +
		"\t\tn = n - 1\n" +
		"\tfor int i = 0; i < 3; ++i\n" +
		"\t\tg(i)\n" +
		"\tfor ;;\n" +
		"\t\treturn\n"

	unit := parseOK(t, src)
	require.Len(t, unit.Stmts, 1)

	body := unit.Stmts[0].(*ast.FuncDeclStmt).Body
	require.Len(t, body.Stmts, 4)

	ifStmt := body.Stmts[0].(*ast.IfStmt)
	elseIf, ok := ifStmt.Else.(*ast.IfStmt)
	require.True(t, ok)
	_, ok = elseIf.Else.(*ast.BlockStmt)
	assert.True(t, ok)

	assert.Equal(t,
		"(if (< n 0) (block (return)) (if (== n 0) (block (expr (= n 1))) (block (expr (= n 2)))))",
		ast.Print(ifStmt))
	assert.Equal(t, "(while (> n 0) (block (expr (= n (- n 1)))))", ast.Print(body.Stmts[1]))
	assert.Equal(t, "(for (var int i 0) (< i 3) (++ i) (block (expr (call g i))))", ast.Print(body.Stmts[2]))
	assert.Equal(t, "(for nil nil nil (block (return)))", ast.Print(body.Stmts[3]))
}

func TestParseNestedBlocksEndAtDedent(t *testing.T) {
	src := "void f()\n" +
		"\tif a\n" +
		"\t\tb()\n" +
		"\tc()\n" +
		"d()\n"

	unit := parseOK(t, src)
	require.Len(t, unit.Stmts, 2)
	assert.Equal(t, "(func void f (block (if a (block (expr (call b)))) (expr (call c))))", printed(unit)[0])
	assert.Equal(t, "(expr (call d))", printed(unit)[1])
}

func TestParseLineContinuation(t *testing.T) {
	unit := parseOK(t, "int x = 1 + \\\n\t\t2\nint y\n")

	assert.Equal(t, []string{"(var int x (+ 1 2))", "(var int y)"}, printed(unit))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
		line    int
	}{
		{"invalid assignment target", "1 + 2 = 3\n", "invalid assignment target", 1},
		{"missing paren", "f(1\n", "expected ')' after arguments", 1},
		{"missing expression", "int x = \n", "expected expression", 1},
		{"member initializer", "class A\n\tint x = 1\n", "class members cannot have initializers", 2},
		{"bad member", "class A\n\treturn 1\n", "expected member, method or nested class declaration", 2},
		{"empty block", "void f()\nint x\n", "expected an indented block", 2},
		{"missing member name", "a.\n", "expected member name after '.'", 1},
		{"unexpected indent", "int z = 1\n\t\tint w = 2\n", "unexpected indent", 2},
		{"unexpected indent in block", "void f()\n\tint z = 1\n\t\tint w = 2\n", "unexpected indent", 3},
		{"unexpected indent in class", "class A\n\tint a\n\t\tint b\n", "unexpected indent", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, eh := parse(t, tt.src)

			errs := eh.Errors()
			require.Len(t, errs, 1)
			pe, ok := errs[0].(*lexer.ParseError)
			require.True(t, ok)
			assert.Equal(t, tt.message, pe.Message)
			assert.Equal(t, tt.line, pe.GetLine())
			assert.Equal(t, compiler_errors.PhaseSyntax, pe.GetPhase())
		})
	}
}

func TestParseRecoversAtStatementBoundary(t *testing.T) {
	src := "int x = )\n" +
		"int f(\n" +
		"\tthis line belongs to the broken function\n" +
		"int y = 2\n" +
		"void g()\n" +
		"\t1 = 2\n" +
		"\tint z\n"

	unit, eh := parse(t, src)

	require.Len(t, eh.Errors(), 3)
	assert.Equal(t, 1, eh.Errors()[0].(*lexer.ParseError).GetLine())
	assert.Equal(t, 2, eh.Errors()[1].(*lexer.ParseError).GetLine())
	assert.Equal(t, 6, eh.Errors()[2].(*lexer.ParseError).GetLine())

	assert.Equal(t, []string{"(var int y 2)", "(func void g (block (var int z)))"}, printed(unit))
}

func TestParseSkipsOverIndentedLines(t *testing.T) {
	src := "int z = 1\n" +
		"\t\tint w = 2\n" +
		"\t\t\tint deeper = 3\n" +
		"void f()\n" +
		"\treturn\n"

	unit, eh := parse(t, src)

	require.Len(t, eh.Errors(), 1)
	assert.Equal(t, 2, eh.Errors()[0].(*lexer.ParseError).GetLine())
	assert.Equal(t, []string{"(var int z 1)", "(func void f (block (return)))"}, printed(unit))
}

func TestParseEmptyFile(t *testing.T) {
	unit := parseOK(t, "\n\n// nothing here\n")
	assert.Empty(t, unit.Stmts)
}

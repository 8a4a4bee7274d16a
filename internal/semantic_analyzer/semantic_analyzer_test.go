package semantic_analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/types"
)

func analyze(t *testing.T, src string) []string {
	t.Helper()

	units := parseUnits(t, map[string]string{"main.cy": src}, "main.cy")
	table, err := BuildTypeTable(units, types.DefaultLayoutPolicy())
	require.NoError(t, err)

	eh := compiler_errors.NewErrorHandler()
	NewSemanticAnalyzer(eh, table).Analyze(units)

	messages := make([]string, 0)
	for _, e := range eh.Errors() {
		se, ok := e.(*compiler_errors.SourceError)
		require.True(t, ok)
		assert.Equal(t, compiler_errors.PhaseSemantic, se.Phase)
		messages = append(messages, se.Message)
	}
	return messages
}

func TestAnalyzeValidProgram(t *testing.T) {
	src := "class Point\n" +
		"\tint x\n" +
		"\tint y\n" +
		"\tint sum()\n" +
		"\t\treturn x + y\n" +
		"\tint scaled(int k)\n" +
		"\t\treturn sum() * k\n" +
		"Point origin\n" +
		"int twice(int v)\n" +
		"\treturn helper(v) * 2\n" +
		"int helper(int v)\n" +
		"\treturn v\n" +
		"void main()\n" +
		"\tPoint p\n" +
		"\tp.x = 1\n" +
		"\tp.y = origin.y\n" +
		"\tint n = p.scaled(twice(p.x))\n" +
		"\tif n > 0\n" +
		"\t\tint n = 2\n" +
		"\tfor int i = 0; i < n; i = i + 1\n" +
		"\t\tn = n - i\n" +
		"\twhile n > 0 and !(n == 1)\n" +
		"\t\tn = n - 1\n" +
		"\treturn\n"

	assert.Empty(t, analyze(t, src))
}

func TestAnalyzeReportsNameErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "undefined variable",
			src:  "void f()\n\tx = 1\n\tint y = z\n",
			want: []string{"undefined variable 'x'", "undefined variable 'z'"},
		},
		{
			name: "use before declaration",
			src:  "void f()\n\tint y = y\n",
			want: []string{"undefined variable 'y'"},
		},
		{
			name: "redeclaration in block",
			src:  "void f(int a)\n\tint b\n\tint b\n",
			want: []string{"'b' is already declared in this block"},
		},
		{
			name: "duplicate parameter",
			src:  "void f(int a, int a)\n\treturn\n",
			want: []string{"duplicate parameter 'a'"},
		},
		{
			name: "duplicate global",
			src:  "int g\nfloat g\n",
			want: []string{"'g' is already declared"},
		},
		{
			name: "duplicate function",
			src:  "void f()\n\treturn\nvoid f()\n\treturn\n",
			want: []string{"function 'f' is already declared"},
		},
		{
			name: "function after global",
			src:  "int f = 1\nint f()\n\treturn 1\n",
			want: []string{"'f' is already declared"},
		},
		{
			name: "global after function",
			src:  "int f()\n\treturn 1\nfloat f\n",
			want: []string{"'f' is already declared"},
		},
		{
			name: "shadowed initializer reads outer",
			src:  "int g()\n\tint x = 1\n\tif x\n\t\tint x = x + 1\n\t\treturn x\n\treturn x\n",
			want: []string{},
		},
		{
			name: "block scope ends",
			src:  "void f()\n\tif true\n\t\tint inner\n\tinner = 1\n",
			want: []string{"undefined variable 'inner'"},
		},
		{
			name: "for variable scoped to loop",
			src:  "void f()\n\tfor int i = 0; i < 3; i = i + 1\n\t\ti = i\n\ti = 0\n",
			want: []string{"undefined variable 'i'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyze(t, tt.src))
		})
	}
}

func TestAnalyzeReportsCallErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "unknown function",
			src:  "void f()\n\tmissing(1)\n",
			want: []string{"unknown function 'missing'"},
		},
		{
			name: "arity",
			src:  "int add(int a, int b)\n\treturn a + b\nvoid f()\n\tadd(1)\n",
			want: []string{"'add' expects 2 arguments, got 1"},
		},
		{
			name: "unknown method",
			src:  "class A\n\tint v\nvoid f()\n\tA a\n\ta.run()\n",
			want: []string{"type 'main.A' has no method 'run'"},
		},
		{
			name: "not callable",
			src:  "void f()\n\t1()\n",
			want: []string{"expression is not callable"},
		},
		{
			name: "nested function",
			src:  "void f()\n\tvoid g()\n\t\treturn\n",
			want: []string{"function 'g' cannot be declared inside another function"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyze(t, tt.src))
		})
	}
}

func TestAnalyzeReportsMemberErrors(t *testing.T) {
	src := "class A\n" +
		"\tint v\n" +
		"void f()\n" +
		"\tA a\n" +
		"\tint n\n" +
		"\ta.w = 1\n" +
		"\tn = a.v.x\n"

	assert.Equal(t, []string{
		"type 'main.A' has no member 'w'",
		"type 'int' has no members",
	}, analyze(t, src))
}

func TestAnalyzeReportsReturnErrors(t *testing.T) {
	src := "return 1\n" +
		"void f()\n" +
		"\treturn 1\n" +
		"int g()\n" +
		"\treturn\n"

	assert.Equal(t, []string{
		"return outside of a function",
		"void function 'f' cannot return a value",
		"function 'g' must return a value",
	}, analyze(t, src))
}

package semantic_analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/lexer"
	"github.com/kievzenit/cyc/internal/parser"
	"github.com/kievzenit/cyc/internal/types"
)

func parseUnits(t *testing.T, files map[string]string, order ...string) []*ast.TranslationUnit {
	t.Helper()

	units := make([]*ast.TranslationUnit, 0, len(order))
	for _, name := range order {
		eh := compiler_errors.NewErrorHandler()
		unit := parser.ParseSource(lexer.NewSourceFile(name, files[name]), eh)
		require.False(t, eh.HasErrors(), "parse errors in %s: %v", name, eh.Errors())
		units = append(units, unit)
	}
	return units
}

func build(t *testing.T, src string, policy types.LayoutPolicy) (*types.Table, error) {
	t.Helper()
	return BuildTypeTable(parseUnits(t, map[string]string{"shapes.cy": src}, "shapes.cy"), policy)
}

func object(t *testing.T, table *types.Table, fqn string) *types.ObjectType {
	t.Helper()

	def, ok := table.Lookup(fqn)
	require.True(t, ok, "missing %s", fqn)
	obj, ok := def.(*types.ObjectType)
	require.True(t, ok)
	return obj
}

func offsets(obj *types.ObjectType) []int {
	out := make([]int, 0, len(obj.Children))
	for _, child := range obj.Children {
		out = append(out, child.Offset)
	}
	return out
}

func assertLayoutInvariants(t *testing.T, table *types.Table) {
	t.Helper()

	for _, obj := range table.Objects() {
		end := 0
		for _, child := range obj.Children {
			assert.GreaterOrEqual(t, child.Offset, end, "%s.%s overlaps", obj.FQN, child.Name)
			end = child.Offset + child.Type.ByteSize()
		}
		assert.GreaterOrEqual(t, obj.ByteSize(), end, "%s is smaller than its members", obj.FQN)
	}
}

const nestedSource = "class Outer\n" +
	"\tint32 a\n" +
	"\tint32 b\n" +
	"\tclass Inner\n" +
	"\t\tint8 c\n" +
	"\tInner inner\n"

func TestLayoutNestedObject(t *testing.T) {
	table, err := build(t, nestedSource, types.DefaultLayoutPolicy())
	require.NoError(t, err)
	assert.True(t, table.IsSealed())

	outer := object(t, table, "shapes.Outer")
	inner := object(t, table, "shapes.Outer.Inner")

	assert.Equal(t, []int{0}, offsets(inner))
	assert.Equal(t, 1, inner.ByteSize())
	assert.Equal(t, 1, inner.Alignment())

	assert.Equal(t, []int{0, 4, 8}, offsets(outer))
	assert.Same(t, inner, outer.Children[2].Type)
	assert.Equal(t, 9, outer.ByteSize())
	assert.Equal(t, 72, outer.BitSize())
	assert.Equal(t, 4, outer.Alignment())

	assertLayoutInvariants(t, table)
}

func TestLayoutAlignmentFloor(t *testing.T) {
	policy := types.DefaultLayoutPolicy()
	policy.MinAlign = 4

	table, err := build(t, nestedSource, policy)
	require.NoError(t, err)

	inner := object(t, table, "shapes.Outer.Inner")
	assert.Equal(t, 4, inner.ByteSize())

	outer := object(t, table, "shapes.Outer")
	assert.Equal(t, []int{0, 4, 8}, offsets(outer))
	assert.Equal(t, 12, outer.ByteSize())

	assertLayoutInvariants(t, table)
}

func TestLayoutPadding(t *testing.T) {
	src := "class P\n" +
		"\tint8 a\n" +
		"\tint64 b\n" +
		"\tint16 c\n" +
		"class Q\n" +
		"\tbool flag\n" +
		"\tP p\n" +
		"\tascii name\n"

	tests := []struct {
		name    string
		policy  func(p *types.LayoutPolicy)
		pOffs   []int
		pSize   int
		qOffs   []int
		qSize   int
		qAlign  int
	}{
		{
			name:   "defaults",
			policy: func(p *types.LayoutPolicy) {},
			pOffs:  []int{0, 8, 16},
			pSize:  18,
			qOffs:  []int{0, 8, 32},
			qSize:  40,
			qAlign: 8,
		},
		{
			name:   "max align 4",
			policy: func(p *types.LayoutPolicy) { p.MaxAlign = 4 },
			pOffs:  []int{0, 4, 12},
			pSize:  14,
			qOffs:  []int{0, 4, 20},
			qSize:  28,
			qAlign: 4,
		},
		{
			name:   "nested floor",
			policy: func(p *types.LayoutPolicy) { p.NestedAlign = types.NestedFloor },
			pOffs:  []int{0, 8, 16},
			pSize:  18,
			qOffs:  []int{0, 1, 24},
			qSize:  32,
			qAlign: 1,
		},
		{
			name:   "32-bit pointers",
			policy: func(p *types.LayoutPolicy) { p.PointerSize = 4 },
			pOffs:  []int{0, 8, 16},
			pSize:  18,
			qOffs:  []int{0, 8, 28},
			qSize:  32,
			qAlign: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := types.DefaultLayoutPolicy()
			tt.policy(&policy)

			table, err := build(t, src, policy)
			require.NoError(t, err)

			p := object(t, table, "shapes.P")
			assert.Equal(t, tt.pOffs, offsets(p))
			assert.Equal(t, tt.pSize, p.ByteSize())

			q := object(t, table, "shapes.Q")
			assert.Equal(t, tt.qOffs, offsets(q))
			assert.Equal(t, tt.qSize, q.ByteSize())
			assert.Equal(t, tt.qAlign, q.Alignment())

			assertLayoutInvariants(t, table)
		})
	}
}

func TestLayoutEmptyClass(t *testing.T) {
	table, err := build(t, "class Empty\nint x\n", types.DefaultLayoutPolicy())
	require.NoError(t, err)

	empty := object(t, table, "shapes.Empty")
	assert.Equal(t, 0, empty.ByteSize())
	assert.Equal(t, 1, empty.Alignment())
}

func TestBuildRejectsRecursiveTypes(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		cycle string
	}{
		{"self", "class A\n\tint x\n\tA next\n", "shapes.A -> shapes.A"},
		{"mutual", "class A\n\tB b\nclass B\n\tA a\n", "shapes.A -> shapes.B -> shapes.A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := build(t, tt.src, types.DefaultLayoutPolicy())

			assert.Nil(t, table)
			require.Error(t, err)
			assert.True(t, compiler_errors.IsCode(err, compiler_errors.CodeRecursiveType))
			assert.Contains(t, err.Error(), tt.cycle)
		})
	}
}

func TestBuildRejectsUnresolvedTypes(t *testing.T) {
	src := "class A\n" +
		"\tMissing m\n" +
		"void f(Gone g)\n" +
		"\tNowhere n\n"

	table, err := build(t, src, types.DefaultLayoutPolicy())
	assert.Nil(t, table)
	require.Error(t, err)
	assert.True(t, compiler_errors.IsCode(err, compiler_errors.CodeUnresolvedType))

	var te *compiler_errors.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Missing", te.Name)
	assert.Equal(t, "shapes.cy", te.FileName)
	assert.Equal(t, 2, te.Line)
}

func TestBuildReportsEveryUnresolvedReference(t *testing.T) {
	src := "void f(Gone g)\n" +
		"\tNowhere n\n"

	_, err := build(t, src, types.DefaultLayoutPolicy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gone")
	assert.Contains(t, err.Error(), "Nowhere")
}

func TestBuildRejectsVoidValues(t *testing.T) {
	_, err := build(t, "class A\n\tvoid v\n", types.DefaultLayoutPolicy())
	assert.True(t, compiler_errors.IsCode(err, compiler_errors.CodeInvalidMember))

	_, err = build(t, "void f(void v)\n\treturn\n", types.DefaultLayoutPolicy())
	assert.True(t, compiler_errors.IsCode(err, compiler_errors.CodeUnsupported))

	_, err = build(t, "void f()\n\treturn\n", types.DefaultLayoutPolicy())
	assert.NoError(t, err)
}

func TestBuildRejectsDuplicates(t *testing.T) {
	_, err := build(t, "class A\n\tint x\nclass A\n\tint y\n", types.DefaultLayoutPolicy())
	assert.True(t, compiler_errors.IsCode(err, compiler_errors.CodeDuplicateType))

	_, err = build(t, "class A\n\tint x\n\tfloat x\n", types.DefaultLayoutPolicy())
	assert.True(t, compiler_errors.IsCode(err, compiler_errors.CodeInvalidMember))
}

func TestBuildRejectsInvalidPolicy(t *testing.T) {
	policy := types.DefaultLayoutPolicy()
	policy.MinAlign = 3

	_, err := build(t, "int x\n", policy)
	assert.Error(t, err)
}

func TestBuildBindsEveryTypeReference(t *testing.T) {
	src := "class Point\n" +
		"\tint x\n" +
		"\tint y\n" +
		"Point origin\n" +
		"float len(Point p)\n" +
		"\tfloat32 half = 0.5\n" +
		"\treturn 1.0\n"

	units := parseUnits(t, map[string]string{"geo.cy": src}, "geo.cy")
	table, err := BuildTypeTable(units, types.DefaultLayoutPolicy())
	require.NoError(t, err)

	point := object(t, table, "geo.Point")

	origin := units[0].Stmts[1].(*ast.VarDeclStmt)
	assert.Same(t, point, origin.Type.Def)

	fn := units[0].Stmts[2].(*ast.FuncDeclStmt)
	assert.Equal(t, "float", fn.ReturnType.Def.Name())
	assert.Same(t, point, fn.Params[0].Type.Def)

	half := fn.Body.Stmts[0].(*ast.VarDeclStmt)
	assert.Equal(t, 32, half.Type.Def.BitSize())
}

func TestBuildResolvesAcrossModules(t *testing.T) {
	files := map[string]string{
		"geo.cy":   "class Point\n\tint x\n\tint y\n",
		"main.cy":  "class Line\n\tPoint a\n\tPoint b\n",
		"other.cy": "class Point\n\tint8 z\n",
		"local.cy": "class Point\n\tint8 z\nclass Box\n\tPoint corner\n",
	}

	table, err := BuildTypeTable(parseUnits(t, files, "geo.cy", "main.cy"), types.DefaultLayoutPolicy())
	require.NoError(t, err)
	line := object(t, table, "main.Line")
	assert.Same(t, object(t, table, "geo.Point"), line.Children[0].Type)
	assert.Equal(t, 16, line.ByteSize())

	_, err = BuildTypeTable(parseUnits(t, files, "geo.cy", "main.cy", "other.cy"), types.DefaultLayoutPolicy())
	require.Error(t, err)
	assert.True(t, compiler_errors.IsCode(err, compiler_errors.CodeUnresolvedType))
	assert.Contains(t, err.Error(), "ambiguous")

	table, err = BuildTypeTable(parseUnits(t, files, "geo.cy", "local.cy"), types.DefaultLayoutPolicy())
	require.NoError(t, err)
	box := object(t, table, "local.Box")
	assert.Same(t, object(t, table, "local.Point"), box.Children[0].Type)
}

func TestBuildScopesClassesInFunctions(t *testing.T) {
	src := "void f()\n" +
		"\tclass Local\n" +
		"\t\tint v\n" +
		"\tLocal l\n"

	table, err := build(t, src, types.DefaultLayoutPolicy())
	require.NoError(t, err)
	assert.Equal(t, 4, object(t, table, "shapes.f.Local").ByteSize())
}

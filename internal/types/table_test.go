package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kievzenit/cyc/internal/compiler_errors"
)

func TestPrimitiveTable(t *testing.T) {
	table := NewPrimitiveTable(8)

	tests := []struct {
		name   string
		format Format
		bits   int
		bytes  int
	}{
		{"bool", FormatBool, 1, 1},
		{"int8", FormatInt, 8, 1},
		{"int", FormatInt, 32, 4},
		{"int128", FormatInt, 128, 16},
		{"float", FormatFloat, 64, 8},
		{"float16", FormatFloat, 16, 2},
		{"ascii", FormatASCII, 64, 8},
		{"void", FormatVoid, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := table.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.format, def.Format())
			assert.Equal(t, tt.bits, def.BitSize())
			assert.Equal(t, tt.bytes, def.ByteSize())
		})
	}

	utf8, _ := NewPrimitiveTable(4).Lookup("utf8")
	assert.Equal(t, 4, utf8.ByteSize())
}

func TestTableRegister(t *testing.T) {
	table := NewPrimitiveTable(8)
	point := NewObjectType("shapes.Point", "shapes", "shapes")

	require.NoError(t, table.Register(point))

	err := table.Register(NewObjectType("shapes.Point", "shapes", "shapes"))
	assert.True(t, compiler_errors.IsCode(err, compiler_errors.CodeDuplicateType))

	table.Seal()
	err = table.Register(NewObjectType("shapes.Line", "shapes", "shapes"))
	assert.True(t, compiler_errors.IsCode(err, compiler_errors.CodeTableSealed))

	def, ok := table.Lookup("shapes.Point")
	require.True(t, ok)
	assert.Same(t, point, def)

	names := table.Names()
	assert.Equal(t, "void", names[0])
	assert.Equal(t, "shapes.Point", names[len(names)-1])
	assert.Equal(t, []*ObjectType{point}, table.Objects())
}

func TestImplicitCasts(t *testing.T) {
	table := NewPrimitiveTable(8)
	lookup := func(name string) Definition {
		def, ok := table.Lookup(name)
		require.True(t, ok)
		return def
	}

	assert.True(t, lookup("int8").CanBeImplicitlyCastedTo(lookup("int64")))
	assert.True(t, lookup("int").CanBeImplicitlyCastedTo(lookup("int32")))
	assert.False(t, lookup("int64").CanBeImplicitlyCastedTo(lookup("int8")))
	assert.False(t, lookup("int").CanBeImplicitlyCastedTo(lookup("float")))
	assert.True(t, lookup("float32").CanBeImplicitlyCastedTo(lookup("float64")))

	point := NewObjectType("m.Point", "m", "m")
	assert.True(t, point.CanBeImplicitlyCastedTo(point))
	assert.False(t, point.CanBeImplicitlyCastedTo(NewObjectType("m.Other", "m", "m")))
}

func TestObjectMembers(t *testing.T) {
	point := NewObjectType("m.Point", "m", "m")
	point.AddChild(&ObjectChild{Name: "x", TypeName: "int"})
	point.AddChild(&ObjectChild{Name: "y", TypeName: "int"})

	child, ok := point.GetMember("y")
	require.True(t, ok)
	assert.Equal(t, "y", child.Name)
	assert.Equal(t, 1, point.MemberIndex("y"))
	assert.Equal(t, -1, point.MemberIndex("z"))

	assert.False(t, point.IsLaidOut())
	point.SetLayout(8, 4)
	assert.True(t, point.IsLaidOut())
	assert.Equal(t, 64, point.BitSize())
}

package semantic_analyzer

import (
	"fmt"
	"strings"

	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/types"
)

// TypeResolver looks up type names written in source against a type table.
type TypeResolver struct {
	table *types.Table
}

func NewTypeResolver(table *types.Table) *TypeResolver {
	return &TypeResolver{table: table}
}

// Resolve finds the definition for name as written inside scope, a dotted path
// such as "module.Outer.Inner". Builtins win, then the scope and each of its
// ancestors are tried innermost first, and finally a unique match in any
// module.
func (tr *TypeResolver) Resolve(name string, scope string) (types.Definition, error) {
	if def, ok := tr.GetBuiltInType(name); ok {
		return def, nil
	}

	for path := scope; path != ""; path = parentScope(path) {
		if def, ok := tr.table.Lookup(path + "." + name); ok {
			return def, nil
		}
	}

	matches := make([]string, 0)
	for _, obj := range tr.table.Objects() {
		if obj.FQN == obj.Module+"."+name {
			matches = append(matches, obj.FQN)
		}
	}

	switch len(matches) {
	case 1:
		def, _ := tr.table.Lookup(matches[0])
		return def, nil
	case 0:
		return nil, compiler_errors.NewTypeError(compiler_errors.CodeUnresolvedType, name, "unknown type")
	}

	return nil, compiler_errors.NewTypeError(
		compiler_errors.CodeUnresolvedType,
		name,
		"ambiguous type, candidates: %s",
		strings.Join(matches, ", "),
	)
}

func parentScope(scope string) string {
	i := strings.LastIndexByte(scope, '.')
	if i < 0 {
		return ""
	}
	return scope[:i]
}

func (tr *TypeResolver) GetBuiltInType(name string) (*types.PrimitiveType, bool) {
	def, ok := tr.table.Lookup(name)
	if !ok {
		return nil, false
	}
	primitive, ok := def.(*types.PrimitiveType)
	return primitive, ok
}

func (tr *TypeResolver) IsBuiltInType(name string) bool {
	_, ok := tr.GetBuiltInType(name)
	return ok
}

func (tr *TypeResolver) GetUserType(fqn string) (*types.ObjectType, bool) {
	def, ok := tr.table.Lookup(fqn)
	if !ok {
		return nil, false
	}
	obj, ok := def.(*types.ObjectType)
	return obj, ok
}

func (tr *TypeResolver) builtin(name string) types.Definition {
	def, ok := tr.GetBuiltInType(name)
	if !ok {
		panic("missing builtin type: " + name)
	}
	return def
}

func (tr *TypeResolver) VoidType() types.Definition {
	return tr.builtin("void")
}

func (tr *TypeResolver) BoolType() types.Definition {
	return tr.builtin("bool")
}

func (tr *TypeResolver) ASCIIType() types.Definition {
	return tr.builtin("ascii")
}

func (tr *TypeResolver) IntType(bits int) types.Definition {
	switch bits {
	case 8:
		return tr.builtin("int8")
	case 16:
		return tr.builtin("int16")
	case 32:
		return tr.builtin("int")
	case 64:
		return tr.builtin("int64")
	case 128:
		return tr.builtin("int128")
	default:
		panic("invalid int type bits: " + fmt.Sprint(bits))
	}
}

func (tr *TypeResolver) FloatType(bits int) types.Definition {
	switch bits {
	case 16:
		return tr.builtin("float16")
	case 32:
		return tr.builtin("float32")
	case 64:
		return tr.builtin("float")
	case 128:
		return tr.builtin("float128")
	default:
		panic("invalid float type bits: " + fmt.Sprint(bits))
	}
}

// LiteralType is the type of a literal value as produced by the lexer.
func (tr *TypeResolver) LiteralType(value any) types.Definition {
	switch value.(type) {
	case int32:
		return tr.IntType(32)
	case float64:
		return tr.FloatType(64)
	case string:
		return tr.ASCIIType()
	case bool:
		return tr.BoolType()
	}
	return nil
}

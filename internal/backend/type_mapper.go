package backend

import (
	"fmt"
	"regexp"
	"strings"

	"tinygo.org/x/go-llvm"

	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/types"
)

// StructType is the backend form of an object type. Bodies are packed and
// carry explicit padding so that member offsets match the computed layout;
// FieldIndex maps each member to its element index in the body.
type StructType struct {
	Name       string
	Ref        string
	Body       string
	FieldIndex []int
}

// TypeMapper converts type definitions to backend type strings. All strings
// are computed up front, so a mapper is read-only and may be shared between
// goroutines.
type TypeMapper struct {
	typesMap map[string]string
	structs  map[string]*StructType
	errs     map[string]error
	order    []string
}

var floatKindBits = map[llvm.TypeKind]int{
	llvm.FloatTypeKind:  32,
	llvm.DoubleTypeKind: 64,
	llvm.FP128TypeKind:  128,
}

func NewTypeMapper(table *types.Table) *TypeMapper {
	m := &TypeMapper{
		typesMap: make(map[string]string),
		structs:  make(map[string]*StructType),
		errs:     make(map[string]error),
		order:    make([]string, 0),
	}

	context := llvm.NewContext()
	defer context.Dispose()

	b := &typeBuilder{
		context:  context,
		mapper:   m,
		llvmType: make(map[string]llvm.Type),
	}

	objects := make([]*types.ObjectType, 0)
	for _, def := range table.Definitions() {
		switch t := def.(type) {
		case *types.PrimitiveType:
			b.declarePrimitive(t)
		case *types.ObjectType:
			b.llvmType[t.FQN] = context.StructCreateNamed(t.FQN)
			objects = append(objects, t)
		}
	}

	for _, obj := range objects {
		b.defineStruct(obj)
	}

	return m
}

// BackendType returns the textual backend type for def.
func (m *TypeMapper) BackendType(def types.Definition) (string, error) {
	if err, ok := m.errs[def.Name()]; ok {
		return "", err
	}

	str, ok := m.typesMap[def.Name()]
	if !ok {
		return "", compiler_errors.NewTypeError(
			compiler_errors.CodeUnsupportedBackendType,
			def.Name(),
			"type has no backend mapping",
		)
	}
	return str, nil
}

func (m *TypeMapper) Struct(obj *types.ObjectType) (*StructType, error) {
	if err, ok := m.errs[obj.FQN]; ok {
		return nil, err
	}

	st, ok := m.structs[obj.FQN]
	if !ok {
		return nil, compiler_errors.NewTypeError(
			compiler_errors.CodeUnsupportedBackendType,
			obj.FQN,
			"object type has no backend mapping",
		)
	}
	return st, nil
}

// Structs returns every mapped object type in table order.
func (m *TypeMapper) Structs() []*StructType {
	out := make([]*StructType, 0, len(m.order))
	for _, name := range m.order {
		if st, ok := m.structs[name]; ok {
			out = append(out, st)
		}
	}
	return out
}

type typeBuilder struct {
	context  llvm.Context
	mapper   *TypeMapper
	llvmType map[string]llvm.Type
}

func (b *typeBuilder) fail(name string, err error) {
	b.mapper.errs[name] = err
}

func (b *typeBuilder) declarePrimitive(p *types.PrimitiveType) {
	t, err := b.primitiveType(p)
	if err != nil {
		b.fail(p.Name(), err)
		return
	}

	if err := checkBitSize(p, t); err != nil {
		b.fail(p.Name(), err)
		return
	}

	b.llvmType[p.Name()] = t
	b.mapper.typesMap[p.Name()] = Render(t)
}

func (b *typeBuilder) primitiveType(p *types.PrimitiveType) (llvm.Type, error) {
	switch p.Format() {
	case types.FormatVoid:
		return b.context.VoidType(), nil

	case types.FormatBool:
		return b.context.Int1Type(), nil

	case types.FormatInt:
		if p.BitSize() < 1 {
			return llvm.Type{}, bitSizeMismatch(p.Name(), p.BitSize(), 0)
		}
		return b.context.IntType(p.BitSize()), nil

	case types.FormatFloat:
		switch p.BitSize() {
		case 16:
			return llvm.Type{}, compiler_errors.NewTypeError(
				compiler_errors.CodeUnsupportedBackendType,
				p.Name(),
				"half precision floats are not supported by the backend",
			)
		case 32:
			return b.context.FloatType(), nil
		case 64:
			return b.context.DoubleType(), nil
		case 128:
			return b.context.FP128Type(), nil
		}
		return llvm.Type{}, bitSizeMismatch(p.Name(), p.BitSize(), 0)

	case types.FormatASCII, types.FormatUTF8:
		return llvm.PointerType(b.context.Int8Type(), 0), nil
	}

	return llvm.Type{}, compiler_errors.NewTypeError(
		compiler_errors.CodeUnsupportedBackendType,
		p.Name(),
		"no backend type for format %s", p.Format(),
	)
}

func checkBitSize(p *types.PrimitiveType, t llvm.Type) error {
	var bits int
	switch t.TypeKind() {
	case llvm.IntegerTypeKind:
		bits = t.IntTypeWidth()
	case llvm.FloatTypeKind, llvm.DoubleTypeKind, llvm.FP128TypeKind:
		bits = floatKindBits[t.TypeKind()]
	default:
		return nil
	}

	if bits != p.BitSize() {
		return bitSizeMismatch(p.Name(), p.BitSize(), bits)
	}
	return nil
}

func bitSizeMismatch(name string, want int, got int) error {
	return compiler_errors.NewTypeError(
		compiler_errors.CodeBitSizeMismatch,
		name,
		"type has %d bits but the backend type has %d", want, got,
	)
}

// defineStruct sets the body of a named struct. Nested object types are
// defined first; layout has already rejected cycles.
func (b *typeBuilder) defineStruct(obj *types.ObjectType) error {
	if err, ok := b.mapper.errs[obj.FQN]; ok {
		return err
	}
	if _, ok := b.mapper.structs[obj.FQN]; ok {
		return nil
	}

	st := b.llvmType[obj.FQN]
	elements := make([]llvm.Type, 0, len(obj.Children))
	fieldIndex := make([]int, 0, len(obj.Children))
	pos := 0

	for _, child := range obj.Children {
		if nested, ok := child.Type.(*types.ObjectType); ok {
			if err := b.defineStruct(nested); err != nil {
				wrapped := compiler_errors.WrapTypeError(err, compiler_errors.CodeUnsupportedBackendType, obj.FQN,
					fmt.Sprintf("member '%s' has no backend type", child.Name))
				b.fail(obj.FQN, wrapped)
				return wrapped
			}
		}

		childType, ok := b.llvmType[child.Type.Name()]
		if !ok {
			err := compiler_errors.NewTypeError(compiler_errors.CodeUnsupportedBackendType, obj.FQN,
				"member '%s' has no backend type", child.Name)
			if cause, ok := b.mapper.errs[child.Type.Name()]; ok {
				err.Err = cause
			}
			b.fail(obj.FQN, err)
			return err
		}

		if child.Offset > pos {
			elements = append(elements, llvm.ArrayType(b.context.Int8Type(), child.Offset-pos))
		}
		fieldIndex = append(fieldIndex, len(elements))
		elements = append(elements, childType)
		pos = child.Offset + child.Type.ByteSize()
	}

	if obj.ByteSize() > pos {
		elements = append(elements, llvm.ArrayType(b.context.Int8Type(), obj.ByteSize()-pos))
	}

	st.StructSetBody(elements, true)

	ref := Render(st)
	b.mapper.typesMap[obj.FQN] = ref
	b.mapper.structs[obj.FQN] = &StructType{
		Name:       obj.FQN,
		Ref:        ref,
		Body:       RenderBody(st),
		FieldIndex: fieldIndex,
	}
	b.mapper.order = append(b.mapper.order, obj.FQN)
	return nil
}

// Render returns the textual form of a backend type as used in instructions.
func Render(t llvm.Type) string {
	switch t.TypeKind() {
	case llvm.VoidTypeKind:
		return "void"
	case llvm.IntegerTypeKind:
		return fmt.Sprintf("i%d", t.IntTypeWidth())
	case llvm.FloatTypeKind:
		return "float"
	case llvm.DoubleTypeKind:
		return "double"
	case llvm.FP128TypeKind:
		return "fp128"
	case llvm.PointerTypeKind:
		return "ptr"
	case llvm.ArrayTypeKind:
		return fmt.Sprintf("[%d x %s]", t.ArrayLength(), Render(t.ElementType()))
	case llvm.StructTypeKind:
		if t.StructName() != "" {
			return Identifier('%', t.StructName())
		}
		return RenderBody(t)
	}

	panic(fmt.Sprintf("Render(): received unsupported type kind: %d", t.TypeKind()))
}

// RenderBody returns the element list of a struct type.
func RenderBody(t llvm.Type) string {
	elements := t.StructElementTypes()
	parts := make([]string, 0, len(elements))
	for _, element := range elements {
		parts = append(parts, Render(element))
	}

	if t.IsStructPacked() {
		if len(parts) == 0 {
			return "<{}>"
		}
		return "<{ " + strings.Join(parts, ", ") + " }>"
	}

	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

var plainIdentifier = regexp.MustCompile(`^[-a-zA-Z$._][-a-zA-Z$._0-9]*$`)

// Identifier renders a global (@) or local (%) name, quoting it when it holds
// characters the IR syntax does not allow bare.
func Identifier(prefix byte, name string) string {
	if plainIdentifier.MatchString(name) {
		return string(prefix) + name
	}
	return fmt.Sprintf(`%c"%s"`, prefix, strings.ReplaceAll(name, `"`, `\22`))
}

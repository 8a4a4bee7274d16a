package types

import "fmt"

type Format int

const (
	FormatVoid Format = iota
	FormatBool
	FormatInt
	FormatFloat
	FormatASCII
	FormatUTF8
	FormatObject
)

func (f Format) String() string {
	switch f {
	case FormatVoid:
		return "void"
	case FormatBool:
		return "bool"
	case FormatInt:
		return "int"
	case FormatFloat:
		return "float"
	case FormatASCII:
		return "ascii"
	case FormatUTF8:
		return "utf8"
	case FormatObject:
		return "object"
	default:
		panic(fmt.Sprintf("Format.String(): received illegal format: %d", f))
	}
}

// Definition describes a type by its fully-qualified name. Sizes of object
// types are only meaningful once layout has run.
type Definition interface {
	Name() string
	Format() Format
	BitSize() int
	ByteSize() int
	Alignment() int

	CanBeImplicitlyCastedTo(t Definition) bool
}

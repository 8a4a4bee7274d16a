package types

type PrimitiveType struct {
	name   string
	format Format
	bits   int
	bytes  int
}

func NewPrimitiveType(name string, format Format, bits int, bytes int) *PrimitiveType {
	return &PrimitiveType{
		name:   name,
		format: format,
		bits:   bits,
		bytes:  bytes,
	}
}

func (p *PrimitiveType) Name() string   { return p.name }
func (p *PrimitiveType) Format() Format { return p.format }
func (p *PrimitiveType) BitSize() int   { return p.bits }
func (p *PrimitiveType) ByteSize() int  { return p.bytes }

// Alignment is the natural alignment, equal to the byte size.
func (p *PrimitiveType) Alignment() int {
	if p.bytes == 0 {
		return 1
	}
	return p.bytes
}

func (p *PrimitiveType) IsNumeric() bool {
	return p.format == FormatInt || p.format == FormatFloat
}

// CanBeImplicitlyCastedTo allows widening within the same format.
func (p *PrimitiveType) CanBeImplicitlyCastedTo(t Definition) bool {
	other, ok := t.(*PrimitiveType)
	if !ok {
		return false
	}
	if p == other {
		return true
	}

	if p.format != other.format {
		return false
	}

	switch p.format {
	case FormatInt, FormatFloat:
		return p.bits <= other.bits
	case FormatBool, FormatASCII, FormatUTF8:
		return true
	}

	return false
}

// Primitives returns the builtin types in declaration order. Text types are
// pointers and take pointerSize bytes.
func Primitives(pointerSize int) []*PrimitiveType {
	return []*PrimitiveType{
		NewPrimitiveType("void", FormatVoid, 0, 0),
		NewPrimitiveType("bool", FormatBool, 1, 1),
		NewPrimitiveType("int8", FormatInt, 8, 1),
		NewPrimitiveType("int16", FormatInt, 16, 2),
		NewPrimitiveType("int", FormatInt, 32, 4),
		NewPrimitiveType("int32", FormatInt, 32, 4),
		NewPrimitiveType("int64", FormatInt, 64, 8),
		NewPrimitiveType("int128", FormatInt, 128, 16),
		NewPrimitiveType("float16", FormatFloat, 16, 2),
		NewPrimitiveType("float32", FormatFloat, 32, 4),
		NewPrimitiveType("float", FormatFloat, 64, 8),
		NewPrimitiveType("float64", FormatFloat, 64, 8),
		NewPrimitiveType("float128", FormatFloat, 128, 16),
		NewPrimitiveType("ascii", FormatASCII, pointerSize*8, pointerSize),
		NewPrimitiveType("utf8", FormatUTF8, pointerSize*8, pointerSize),
	}
}

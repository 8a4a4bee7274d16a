package types

type ObjectChild struct {
	Name     string
	TypeName string
	Type     Definition
	Offset   int

	Line int
}

// ObjectType is a user class. Scope is the dotted path the class was declared
// in, used to resolve the type names of its children.
type ObjectType struct {
	FQN    string
	Module string
	Scope  string

	Children []*ObjectChild

	FileName string
	Line     int

	size    int
	align   int
	laidOut bool
}

func NewObjectType(fqn string, module string, scope string) *ObjectType {
	return &ObjectType{
		FQN:      fqn,
		Module:   module,
		Scope:    scope,
		Children: make([]*ObjectChild, 0),
	}
}

func (o *ObjectType) Name() string   { return o.FQN }
func (o *ObjectType) Format() Format { return FormatObject }
func (o *ObjectType) BitSize() int   { return o.size * 8 }
func (o *ObjectType) ByteSize() int  { return o.size }
func (o *ObjectType) Alignment() int { return o.align }

func (o *ObjectType) SetLayout(size int, align int) {
	o.size = size
	o.align = align
	o.laidOut = true
}

func (o *ObjectType) IsLaidOut() bool {
	return o.laidOut
}

func (o *ObjectType) AddChild(child *ObjectChild) {
	o.Children = append(o.Children, child)
}

func (o *ObjectType) GetMember(name string) (*ObjectChild, bool) {
	i := o.MemberIndex(name)
	if i < 0 {
		return nil, false
	}
	return o.Children[i], true
}

func (o *ObjectType) MemberIndex(name string) int {
	for i, child := range o.Children {
		if child.Name == name {
			return i
		}
	}
	return -1
}

func (o *ObjectType) CanBeImplicitlyCastedTo(t Definition) bool {
	other, ok := t.(*ObjectType)
	return ok && other == o
}

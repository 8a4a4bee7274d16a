package ir

import "github.com/kievzenit/cyc/internal/types"

// Instance is a named value in emitted code: a register, a stack slot bound to
// a source variable, or a literal constant.
type Instance struct {
	// Name is the textual operand, such as "%3" or "42".
	Name string
	// Type is the backend type string of the value.
	Type string
	Def  types.Definition
	// Source is the fully-qualified source name the instance is bound to, if
	// any.
	Source  string
	Literal bool
}

// Operand renders the instance as a typed operand, "i32 %3".
func (i *Instance) Operand() string {
	return i.Type + " " + i.Name
}

func (i *Instance) String() string {
	return i.Name
}

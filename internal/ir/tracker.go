package ir

import (
	"errors"
	"fmt"

	"github.com/kievzenit/cyc/internal/types"
)

var ErrNoScope = errors.New("no open scope")

// TypeMapper converts definitions to backend type strings.
type TypeMapper interface {
	BackendType(def types.Definition) (string, error)
}

type scope struct {
	next      *int
	instances map[string]*Instance
}

// Tracker hands out synthetic value names and binds source names to
// instances. A function scope restarts numbering; block scopes nested in it
// continue the same sequence so names stay unique within a function.
type Tracker struct {
	mapper TypeMapper
	scopes []*scope
}

func NewTracker(mapper TypeMapper) *Tracker {
	return &Tracker{
		mapper: mapper,
		scopes: make([]*scope, 0),
	}
}

// NewScope opens a scope with its own numbering, starting over at %1.
func (t *Tracker) NewScope() {
	t.scopes = append(t.scopes, &scope{
		next:      new(int),
		instances: make(map[string]*Instance),
	})
}

// NewBlockScope opens a scope that shares numbering with the enclosing one.
func (t *Tracker) NewBlockScope() {
	next := new(int)
	if current := t.current(); current != nil {
		next = current.next
	}

	t.scopes = append(t.scopes, &scope{
		next:      next,
		instances: make(map[string]*Instance),
	})
}

func (t *Tracker) EndScope() error {
	if len(t.scopes) == 0 {
		return fmt.Errorf("end scope: %w", ErrNoScope)
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
	return nil
}

func (t *Tracker) Depth() int {
	return len(t.scopes)
}

func (t *Tracker) current() *scope {
	if len(t.scopes) == 0 {
		return nil
	}
	return t.scopes[len(t.scopes)-1]
}

func (t *Tracker) nextName() (string, error) {
	current := t.current()
	if current == nil {
		return "", ErrNoScope
	}

	*current.next++
	return fmt.Sprintf("%%%d", *current.next), nil
}

// NewTempInstance returns an unbound instance with the next free name.
func (t *Tracker) NewTempInstance(def types.Definition) (*Instance, error) {
	typ, err := t.mapper.BackendType(def)
	if err != nil {
		return nil, err
	}

	name, err := t.nextName()
	if err != nil {
		return nil, err
	}

	return &Instance{
		Name: name,
		Type: typ,
		Def:  def,
	}, nil
}

// NewInstance binds source to a new instance in the innermost scope. When
// source is already bound in any visible scope that instance is returned and
// no name is consumed.
func (t *Tracker) NewInstance(def types.Definition, source string) (*Instance, error) {
	if inst, ok := t.GetInstance(source); ok {
		return inst, nil
	}
	return t.bind(def, source)
}

// Bind attaches source to inst in the innermost scope, shadowing any binding
// of source in enclosing scopes. inst keeps its name.
func (t *Tracker) Bind(inst *Instance, source string) error {
	current := t.current()
	if current == nil {
		return ErrNoScope
	}

	inst.Source = source
	current.instances[source] = inst
	return nil
}

func (t *Tracker) bind(def types.Definition, source string) (*Instance, error) {
	inst, err := t.NewTempInstance(def)
	if err != nil {
		return nil, err
	}

	return inst, t.Bind(inst, source)
}

// GetInstance finds the instance bound to source, innermost scope first.
func (t *Tracker) GetInstance(source string) (*Instance, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if inst, ok := t.scopes[i].instances[source]; ok {
			return inst, true
		}
	}
	return nil, false
}

// NewLiteral wraps constant text. Literals never consume a name.
func (t *Tracker) NewLiteral(def types.Definition, text string) (*Instance, error) {
	typ, err := t.mapper.BackendType(def)
	if err != nil {
		return nil, err
	}

	return &Instance{
		Name:    text,
		Type:    typ,
		Def:     def,
		Literal: true,
	}, nil
}

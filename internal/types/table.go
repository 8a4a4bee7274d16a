package types

import (
	"sync"

	"github.com/kievzenit/cyc/internal/compiler_errors"
)

// Table maps fully-qualified type names to definitions. Once sealed it is
// read-only and safe for concurrent readers.
type Table struct {
	mu sync.RWMutex

	defs   map[string]Definition
	order  []string
	sealed bool
}

func NewTable() *Table {
	return &Table{
		defs:  make(map[string]Definition),
		order: make([]string, 0),
	}
}

// NewPrimitiveTable returns an unsealed table holding every builtin type.
func NewPrimitiveTable(pointerSize int) *Table {
	t := NewTable()
	for _, p := range Primitives(pointerSize) {
		t.defs[p.Name()] = p
		t.order = append(t.order, p.Name())
	}
	return t
}

func (t *Table) Register(def Definition) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sealed {
		return compiler_errors.NewTypeError(compiler_errors.CodeTableSealed, def.Name(), "type table is sealed")
	}
	if _, ok := t.defs[def.Name()]; ok {
		return compiler_errors.NewTypeError(compiler_errors.CodeDuplicateType, def.Name(), "type is already defined")
	}

	t.defs[def.Name()] = def
	t.order = append(t.order, def.Name())
	return nil
}

func (t *Table) Lookup(name string) (Definition, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	def, ok := t.defs[name]
	return def, ok
}

// Names returns every registered name in registration order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, len(t.order))
	copy(names, t.order)
	return names
}

func (t *Table) Definitions() []Definition {
	t.mu.RLock()
	defer t.mu.RUnlock()

	defs := make([]Definition, 0, len(t.order))
	for _, name := range t.order {
		defs = append(defs, t.defs[name])
	}
	return defs
}

func (t *Table) Objects() []*ObjectType {
	objects := make([]*ObjectType, 0)
	for _, def := range t.Definitions() {
		if obj, ok := def.(*ObjectType); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.order)
}

func (t *Table) Seal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sealed = true
}

func (t *Table) IsSealed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.sealed
}

package semantic_analyzer

import (
	"strings"

	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/types"
)

type layoutState int

const (
	unvisited layoutState = iota
	visiting
	done
)

// layoutEngine computes sizes, alignments and member offsets. Nested objects
// are laid out before their parents; meeting an object that is still being laid
// out means it contains itself by value.
type layoutEngine struct {
	policy types.LayoutPolicy

	state map[*types.ObjectType]layoutState
	path  []string
}

func newLayoutEngine(policy types.LayoutPolicy) *layoutEngine {
	return &layoutEngine{
		policy: policy,
		state:  make(map[*types.ObjectType]layoutState),
		path:   make([]string, 0),
	}
}

func (l *layoutEngine) layoutAll(objects []*types.ObjectType) error {
	for _, obj := range objects {
		if err := l.layoutObject(obj); err != nil {
			return err
		}
	}
	return nil
}

func (l *layoutEngine) layoutObject(obj *types.ObjectType) error {
	switch l.state[obj] {
	case done:
		return nil
	case visiting:
		cycle := append(l.cycleFrom(obj.FQN), obj.FQN)
		return compiler_errors.NewTypeError(
			compiler_errors.CodeRecursiveType,
			obj.FQN,
			"type contains itself by value: %s", strings.Join(cycle, " -> "),
		).At(obj.FileName, obj.Line)
	}

	l.state[obj] = visiting
	l.path = append(l.path, obj.FQN)

	offset := 0
	objAlign := l.policy.MinAlign
	for _, child := range obj.Children {
		size, align, err := l.childLayout(child)
		if err != nil {
			return err
		}

		offset = types.AlignUp(offset, align)
		child.Offset = offset
		offset += size
		objAlign = max(objAlign, align)
	}

	if l.policy.NestedAlign == types.NestedFloor {
		objAlign = l.policy.MinAlign
	}
	obj.SetLayout(types.AlignUp(offset, l.policy.MinAlign), objAlign)

	l.path = l.path[:len(l.path)-1]
	l.state[obj] = done
	return nil
}

func (l *layoutEngine) childLayout(child *types.ObjectChild) (size int, align int, err error) {
	if nested, ok := child.Type.(*types.ObjectType); ok {
		if err := l.layoutObject(nested); err != nil {
			return 0, 0, err
		}
		return nested.ByteSize(), max(nested.Alignment(), l.policy.MinAlign), nil
	}

	size = child.Type.ByteSize()
	return size, l.policy.FieldAlignment(size), nil
}

func (l *layoutEngine) cycleFrom(fqn string) []string {
	for i, name := range l.path {
		if name == fqn {
			return append([]string{}, l.path[i:]...)
		}
	}
	return []string{}
}

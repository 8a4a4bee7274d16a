package types

import "fmt"

type NestedAlign string

const (
	// NestedLargestField aligns a nested object to its most aligned child.
	NestedLargestField NestedAlign = "largest-field"
	// NestedFloor aligns a nested object to the minimum alignment only.
	NestedFloor NestedAlign = "floor"
)

// LayoutPolicy controls how object types are laid out in memory.
type LayoutPolicy struct {
	MinAlign    int
	MaxAlign    int
	PointerSize int
	NestedAlign NestedAlign
}

func DefaultLayoutPolicy() LayoutPolicy {
	return LayoutPolicy{
		MinAlign:    1,
		MaxAlign:    16,
		PointerSize: 8,
		NestedAlign: NestedLargestField,
	}
}

func (p LayoutPolicy) Validate() error {
	if !isPowerOfTwo(p.MinAlign) {
		return fmt.Errorf("min_align must be a power of two, got %d", p.MinAlign)
	}
	if !isPowerOfTwo(p.MaxAlign) {
		return fmt.Errorf("max_align must be a power of two, got %d", p.MaxAlign)
	}
	if p.MaxAlign < p.MinAlign {
		return fmt.Errorf("max_align (%d) is below min_align (%d)", p.MaxAlign, p.MinAlign)
	}
	if p.PointerSize != 4 && p.PointerSize != 8 {
		return fmt.Errorf("pointer_size must be 4 or 8, got %d", p.PointerSize)
	}
	switch p.NestedAlign {
	case NestedLargestField, NestedFloor:
	default:
		return fmt.Errorf("nested_align must be %q or %q, got %q", NestedLargestField, NestedFloor, p.NestedAlign)
	}
	return nil
}

// FieldAlignment is the alignment of a primitive field of the given size:
// the size itself, raised to MinAlign and capped at MaxAlign.
func (p LayoutPolicy) FieldAlignment(size int) int {
	return min(max(size, p.MinAlign), p.MaxAlign)
}

// AlignUp rounds offset up to the next multiple of align.
func AlignUp(offset int, align int) int {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) / align * align
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

package types

import "github.com/you-not-fish/probec/internal/rtabi"

// Sizes provides size and alignment calculations for types.
// It uses the rtabi constants to stay consistent with the code generator.
type Sizes struct{}

// DefaultSizes is the default Sizes implementation.
var DefaultSizes = &Sizes{}

// Sizeof returns the size of type T in bytes.
func (s *Sizes) Sizeof(T Type) int64 {
	switch t := T.(type) {
	case *Basic:
		if t.kind == KindBool {
			return rtabi.SizeBool
		}
		return 0
	case *Integer:
		return int64(t.bits / 8)
	case *String:
		return t.len
	case *Pointer:
		return rtabi.SizePtr
	case *Array:
		return t.len * s.Sizeof(t.elem)
	case *Tuple:
		s.computeLayout(&t.layout, t.elems)
		return t.size
	case *Record:
		s.computeLayout(&t.layout, recordTypes(t))
		return t.size
	case *Aggregate:
		return aggregateSize(t.kind)
	}
	return 0
}

// Alignof returns the alignment of type T in bytes.
func (s *Sizes) Alignof(T Type) int64 {
	switch t := T.(type) {
	case *Basic:
		return rtabi.AlignBool
	case *Integer:
		return int64(t.bits / 8)
	case *String:
		return 1
	case *Pointer:
		return rtabi.AlignPtr
	case *Array:
		if t.len == 0 {
			return 1
		}
		return s.Alignof(t.elem)
	case *Tuple:
		s.computeLayout(&t.layout, t.elems)
		return t.align
	case *Record:
		s.computeLayout(&t.layout, recordTypes(t))
		return t.align
	case *Aggregate:
		return rtabi.AlignMax
	}
	return 1
}

// Offsetof returns the offset of element i of a tuple or record.
// It returns -1 for any other type or an out-of-range index.
func (s *Sizes) Offsetof(T Type, i int) int64 {
	var l *layout
	switch t := T.(type) {
	case *Tuple:
		s.computeLayout(&t.layout, t.elems)
		l = &t.layout
	case *Record:
		s.computeLayout(&t.layout, recordTypes(t))
		l = &t.layout
	default:
		return -1
	}
	if i < 0 || i >= len(l.offsets) {
		return -1
	}
	return l.offsets[i]
}

// FieldOffset returns the offset of the named field of a record, or -1.
func (s *Sizes) FieldOffset(r *Record, name string) int64 {
	_, i := r.Lookup(name)
	if i < 0 {
		return -1
	}
	return s.Offsetof(r, i)
}

// computeLayout computes the size, alignment, and element offsets of a
// tuple or record. It is idempotent and safe to call multiple times.
func (s *Sizes) computeLayout(l *layout, elems []Type) {
	if l.offsets != nil {
		return
	}

	var offset int64
	var maxAlign int64 = 1
	offsets := make([]int64, len(elems))

	for i, e := range elems {
		size := s.Sizeof(e)
		a := s.Alignof(e)

		// Align offset to element alignment
		offset = align(offset, a)
		offsets[i] = offset
		offset += size

		if a > maxAlign {
			maxAlign = a
		}
	}

	// Add padding at end for overall alignment
	l.size = align(offset, maxAlign)
	l.align = maxAlign
	l.offsets = offsets
}

func recordTypes(r *Record) []Type {
	ts := make([]Type, len(r.fields))
	for i, f := range r.fields {
		ts[i] = f.Type
	}
	return ts
}

func aggregateSize(k AggKind) int64 {
	switch k {
	case AggCount:
		return rtabi.SizeCountSlot
	case AggSum:
		return rtabi.SizeSumSlot
	case AggMin:
		return rtabi.SizeMinSlot
	case AggMax:
		return rtabi.SizeMaxSlot
	case AggAvg:
		return rtabi.SizeAvgSlot
	case AggStats:
		return rtabi.SizeStatsSlot
	}
	return rtabi.SizeHistSlot
}

// align returns x rounded up to a multiple of a.
func align(x, a int64) int64 {
	return (x + a - 1) &^ (a - 1)
}

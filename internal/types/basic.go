package types

import "fmt"

// Basic represents the payload-free types: none and bool.
type Basic struct {
	typ
	kind Kind
	name string
}

// Kind implements Type.
func (b *Basic) Kind() Kind {
	return b.kind
}

// String implements Type.
func (b *Basic) String() string {
	return b.name
}

// Predeclared payload-free types.
var (
	None = &Basic{kind: KindNone, name: "none"}
	Bool = &Basic{kind: KindBool, name: "bool"}
)

// Integer represents a fixed-width integer type.
type Integer struct {
	typ
	bits   int
	signed bool
}

// Predeclared integer types, shared so most comparisons are pointer equal.
var (
	Uint8  = &Integer{bits: 8}
	Uint16 = &Integer{bits: 16}
	Uint32 = &Integer{bits: 32}
	Uint64 = &Integer{bits: 64}
	Int8   = &Integer{bits: 8, signed: true}
	Int16  = &Integer{bits: 16, signed: true}
	Int32  = &Integer{bits: 32, signed: true}
	Int64  = &Integer{bits: 64, signed: true}
)

// NewInteger returns the integer type of the given width in bits.
// Width must be 8, 16, 32 or 64.
func NewInteger(bits int, signed bool) *Integer {
	switch {
	case bits == 8 && !signed:
		return Uint8
	case bits == 16 && !signed:
		return Uint16
	case bits == 32 && !signed:
		return Uint32
	case bits == 64 && !signed:
		return Uint64
	case bits == 8:
		return Int8
	case bits == 16:
		return Int16
	case bits == 32:
		return Int32
	case bits == 64:
		return Int64
	}
	panic(fmt.Sprintf("types: invalid integer width %d", bits))
}

// Bits returns the width in bits.
func (i *Integer) Bits() int {
	return i.bits
}

// Signed reports whether the integer is signed.
func (i *Integer) Signed() bool {
	return i.signed
}

// Kind implements Type.
func (i *Integer) Kind() Kind {
	return KindInteger
}

// String implements Type.
func (i *Integer) String() string {
	if i.signed {
		return fmt.Sprintf("int%d", i.bits)
	}
	return fmt.Sprintf("uint%d", i.bits)
}

// String represents a fixed-capacity, NUL-terminated string.
type String struct {
	typ
	len int64
}

// NewString creates a string type holding up to n bytes including the
// terminator.
func NewString(n int64) *String {
	return &String{len: n}
}

// Len returns the capacity in bytes.
func (s *String) Len() int64 {
	return s.len
}

// Kind implements Type.
func (s *String) Kind() Kind {
	return KindString
}

// String implements Type.
func (s *String) String() string {
	return fmt.Sprintf("string[%d]", s.len)
}

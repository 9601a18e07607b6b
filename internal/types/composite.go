package types

import (
	"fmt"
	"strings"
)

// Pointer represents a pointer into kernel or user memory.
type Pointer struct {
	typ
	elem Type
}

// NewPointer creates a new pointer type.
func NewPointer(elem Type) *Pointer {
	return &Pointer{elem: elem}
}

// Elem returns the pointee type.
func (p *Pointer) Elem() Type {
	return p.elem
}

// Kind implements Type.
func (p *Pointer) Kind() Kind {
	return KindPointer
}

// String implements Type.
func (p *Pointer) String() string {
	return p.elem.String() + " *"
}

// Array represents a fixed-length array type.
type Array struct {
	typ
	len  int64
	elem Type
}

// NewArray creates a new array type with the given length and element type.
func NewArray(len int64, elem Type) *Array {
	return &Array{len: len, elem: elem}
}

// Len returns the array length.
func (a *Array) Len() int64 {
	return a.len
}

// Elem returns the array element type.
func (a *Array) Elem() Type {
	return a.elem
}

// Kind implements Type.
func (a *Array) Kind() Kind {
	return KindArray
}

// String implements Type.
func (a *Array) String() string {
	return fmt.Sprintf("%s[%d]", a.elem, a.len)
}

// layout caches the computed memory layout of a tuple or record.
type layout struct {
	size    int64
	align   int64
	offsets []int64 // nil until computed
}

// Tuple represents an ordered, anonymous product type.
type Tuple struct {
	typ
	elems []Type
	layout
}

// NewTuple creates a new tuple type.
func NewTuple(elems []Type) *Tuple {
	return &Tuple{elems: elems}
}

// Len returns the number of elements.
func (t *Tuple) Len() int {
	return len(t.elems)
}

// Elem returns the element at index i.
func (t *Tuple) Elem(i int) Type {
	return t.elems[i]
}

// Elems returns all elements.
func (t *Tuple) Elems() []Type {
	return t.elems
}

// Kind implements Type.
func (t *Tuple) Kind() Kind {
	return KindTuple
}

// String implements Type.
func (t *Tuple) String() string {
	var buf strings.Builder
	buf.WriteString("(")
	for i, e := range t.elems {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(e.String())
	}
	buf.WriteString(")")
	return buf.String()
}

// Field is a named element of a record.
type Field struct {
	Name string
	Type Type
}

// Record represents a product type whose elements are addressed by name.
// Records built from C structs carry the struct name; record literals are
// anonymous.
type Record struct {
	typ
	name   string
	fields []*Field
	layout
}

// NewRecord creates a new anonymous record type.
func NewRecord(fields []*Field) *Record {
	return &Record{fields: fields}
}

// NewStruct creates a record type for the named C struct.
func NewStruct(name string, fields []*Field) *Record {
	return &Record{name: name, fields: fields}
}

// Complete sets the fields of a struct created by NewStruct with no fields.
// It allows a struct to contain pointers to itself. Complete must be called
// before the record is used.
func (r *Record) Complete(fields []*Field) {
	if len(r.fields) != 0 {
		panic("types: Complete on a record with fields")
	}
	r.fields = fields
}

// Name returns the struct name, or "" for an anonymous record.
func (r *Record) Name() string {
	return r.name
}

// NumFields returns the number of fields.
func (r *Record) NumFields() int {
	return len(r.fields)
}

// Field returns the field at index i.
func (r *Record) Field(i int) *Field {
	return r.fields[i]
}

// Fields returns all fields in declaration order.
func (r *Record) Fields() []*Field {
	return r.fields
}

// Lookup returns the field with the given name and its index, or nil, -1.
func (r *Record) Lookup(name string) (*Field, int) {
	for i, f := range r.fields {
		if f.Name == name {
			return f, i
		}
	}
	return nil, -1
}

// Kind implements Type.
func (r *Record) Kind() Kind {
	return KindRecord
}

// String implements Type.
func (r *Record) String() string {
	if r.name != "" {
		return "struct " + r.name
	}
	var buf strings.Builder
	buf.WriteString("(")
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(f.Name)
		buf.WriteString("=")
		buf.WriteString(f.Type.String())
	}
	buf.WriteString(")")
	return buf.String()
}

// AggKind identifies a map aggregation function.
type AggKind int

const (
	AggCount AggKind = iota
	AggSum
	AggMin
	AggMax
	AggAvg
	AggStats
	AggHist
	AggLhist
)

var aggNames = [...]string{
	AggCount: "count",
	AggSum:   "sum",
	AggMin:   "min",
	AggMax:   "max",
	AggAvg:   "avg",
	AggStats: "stats",
	AggHist:  "hist",
	AggLhist: "lhist",
}

// String returns the aggregation function name.
func (k AggKind) String() string {
	if k >= 0 && int(k) < len(aggNames) {
		return aggNames[k]
	}
	return "invalid"
}

// LookupAggregate returns the aggregation kind for a function name.
func LookupAggregate(name string) (AggKind, bool) {
	for k, n := range aggNames {
		if n == name {
			return AggKind(k), true
		}
	}
	return 0, false
}

// HasSign reports whether values folded by k can be signed.
func (k AggKind) HasSign() bool {
	switch k {
	case AggCount, AggHist, AggLhist:
		return false
	}
	return true
}

// Aggregate represents a map value maintained by an aggregation function.
type Aggregate struct {
	typ
	kind   AggKind
	signed bool
}

// NewAggregate creates an aggregate type. The sign is ignored for kinds
// without one.
func NewAggregate(kind AggKind, signed bool) *Aggregate {
	return &Aggregate{kind: kind, signed: signed && kind.HasSign()}
}

// AggKind returns the aggregation function.
func (a *Aggregate) AggKind() AggKind {
	return a.kind
}

// Signed reports whether the folded values are signed.
func (a *Aggregate) Signed() bool {
	return a.signed
}

// Kind implements Type.
func (a *Aggregate) Kind() Kind {
	return KindAggregate
}

// String implements Type.
func (a *Aggregate) String() string {
	if a.kind.HasSign() && !a.signed {
		return "u" + a.kind.String() + "_t"
	}
	return a.kind.String() + "_t"
}

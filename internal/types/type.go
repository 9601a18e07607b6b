// Package types implements the sized type model of the probe language.
// This package provides type representations without AST dependencies.
package types

// Type is the interface implemented by all sized types.
type Type interface {
	// Kind returns the variant of the type.
	Kind() Kind

	// String returns a human-readable representation of the type.
	String() string

	// aType is a marker method to restrict implementations to this package.
	aType()
}

// typ is a base struct for all type implementations.
type typ struct{}

func (typ) aType() {}

// Kind identifies the variant of a sized type.
type Kind int

const (
	KindNone Kind = iota // not yet resolved
	KindBool
	KindInteger
	KindString
	KindPointer
	KindArray
	KindTuple
	KindRecord
	KindAggregate
)

var kindNames = [...]string{
	KindNone:      "none",
	KindBool:      "bool",
	KindInteger:   "int",
	KindString:    "string",
	KindPointer:   "pointer",
	KindArray:     "array",
	KindTuple:     "tuple",
	KindRecord:    "record",
	KindAggregate: "aggregate",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

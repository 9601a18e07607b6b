package types

import (
	"github.com/you-not-fish/probec/internal/rtabi"
)

// predeclared maps the type names usable in casts and declarations to their
// types. Struct names are resolved through the type-metadata oracle instead.
var predeclared = map[string]Type{
	"bool":   Bool,
	"uint8":  Uint8,
	"uint16": Uint16,
	"uint32": Uint32,
	"uint64": Uint64,
	"int8":   Int8,
	"int16":  Int16,
	"int32":  Int32,
	"int64":  Int64,
	"u8":     Uint8,
	"u16":    Uint16,
	"u32":    Uint32,
	"u64":    Uint64,
	"s8":     Int8,
	"s16":    Int16,
	"s32":    Int32,
	"s64":    Int64,
	"char":   Int8,
	"string": NewString(rtabi.DefaultStringSize),
}

// Lookup returns the predeclared type with the given name.
func Lookup(name string) (Type, bool) {
	t, ok := predeclared[name]
	return t, ok
}

// IsTypeName reports whether name is a predeclared type name.
func IsTypeName(name string) bool {
	_, ok := predeclared[name]
	return ok
}

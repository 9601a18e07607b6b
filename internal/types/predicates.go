package types

// Identical reports whether x and y are identical types.
// Tuples compare element-wise in order; records compare by struct name and
// by field-name set, independent of declaration order.
func Identical(x, y Type) bool {
	if x == y {
		return true
	}
	if x == nil || y == nil {
		return false
	}
	return identical(x, y)
}

func identical(x, y Type) bool {
	switch x := x.(type) {
	case *Basic:
		if y, ok := y.(*Basic); ok {
			return x.kind == y.kind
		}
	case *Integer:
		if y, ok := y.(*Integer); ok {
			return x.bits == y.bits && x.signed == y.signed
		}
	case *String:
		if y, ok := y.(*String); ok {
			return x.len == y.len
		}
	case *Pointer:
		if y, ok := y.(*Pointer); ok {
			return Identical(x.elem, y.elem)
		}
	case *Array:
		if y, ok := y.(*Array); ok {
			return x.len == y.len && Identical(x.elem, y.elem)
		}
	case *Tuple:
		if y, ok := y.(*Tuple); ok {
			return identicalTuples(x, y)
		}
	case *Record:
		if y, ok := y.(*Record); ok {
			return identicalRecords(x, y)
		}
	case *Aggregate:
		if y, ok := y.(*Aggregate); ok {
			return x.kind == y.kind && x.signed == y.signed
		}
	}
	return false
}

func identicalTuples(x, y *Tuple) bool {
	if len(x.elems) != len(y.elems) {
		return false
	}
	for i := range x.elems {
		if !Identical(x.elems[i], y.elems[i]) {
			return false
		}
	}
	return true
}

func identicalRecords(x, y *Record) bool {
	if x.name != y.name {
		return false
	}
	if x.name != "" {
		// C structs are unique by name and may refer to themselves.
		return true
	}
	if len(x.fields) != len(y.fields) {
		return false
	}
	for _, f := range x.fields {
		g, _ := y.Lookup(f.Name)
		if g == nil || !Identical(f.Type, g.Type) {
			return false
		}
	}
	return true
}

// SameFieldNames reports whether two records declare the same set of field
// names.
func SameFieldNames(x, y *Record) bool {
	if len(x.fields) != len(y.fields) {
		return false
	}
	for _, f := range x.fields {
		if g, _ := y.Lookup(f.Name); g == nil {
			return false
		}
	}
	return true
}

// IsNone reports whether T is unresolved.
func IsNone(T Type) bool {
	return T == nil || T.Kind() == KindNone
}

// IsResolved reports whether T and every type nested in it is resolved.
func IsResolved(T Type) bool {
	switch t := T.(type) {
	case nil:
		return false
	case *Basic:
		return t.kind != KindNone
	case *Pointer:
		return IsResolved(t.elem)
	case *Array:
		return IsResolved(t.elem)
	case *Tuple:
		for _, e := range t.elems {
			if !IsResolved(e) {
				return false
			}
		}
	case *Record:
		if t.name != "" {
			return true
		}
		for _, f := range t.fields {
			if !IsResolved(f.Type) {
				return false
			}
		}
	}
	return true
}

// IsInteger reports whether T is an integer type.
func IsInteger(T Type) bool {
	_, ok := T.(*Integer)
	return ok
}

// IsSigned reports whether T is a signed integer or a signed aggregate.
func IsSigned(T Type) bool {
	switch t := T.(type) {
	case *Integer:
		return t.signed
	case *Aggregate:
		return t.signed
	}
	return false
}

// IsBoolean reports whether T is bool.
func IsBoolean(T Type) bool {
	return T != nil && T.Kind() == KindBool
}

// IsStringType reports whether T is a string type.
func IsStringType(T Type) bool {
	_, ok := T.(*String)
	return ok
}

// IsPointer reports whether T is a pointer type.
func IsPointer(T Type) bool {
	_, ok := T.(*Pointer)
	return ok
}

// IsAggregate reports whether T is a map aggregate.
func IsAggregate(T Type) bool {
	_, ok := T.(*Aggregate)
	return ok
}

// IsScalar reports whether values of type T fit in a register: integers,
// booleans and pointers.
func IsScalar(T Type) bool {
	switch T.(type) {
	case *Integer, *Pointer:
		return true
	}
	return IsBoolean(T)
}

// BaseName returns the coarse name of T reported by typeinfo's base_type.
// Aggregates report their function name.
func BaseName(T Type) string {
	if T == nil {
		return KindNone.String()
	}
	if a, ok := T.(*Aggregate); ok {
		return a.kind.String()
	}
	return T.Kind().String()
}

// IntegerFor returns the narrowest integer type representing a literal with
// the given magnitude. Non-negative literals are unsigned.
func IntegerFor(magnitude uint64, negative bool) *Integer {
	if !negative {
		switch {
		case magnitude <= 1<<8-1:
			return Uint8
		case magnitude <= 1<<16-1:
			return Uint16
		case magnitude <= 1<<32-1:
			return Uint32
		}
		return Uint64
	}
	switch {
	case magnitude <= 1<<7:
		return Int8
	case magnitude <= 1<<15:
		return Int16
	case magnitude <= 1<<31:
		return Int32
	}
	return Int64
}

// ReadType returns the type a map value of type T has when read back in an
// expression: aggregates read as 64-bit integers.
func ReadType(T Type) Type {
	a, ok := T.(*Aggregate)
	if !ok {
		return T
	}
	if a.signed {
		return Int64
	}
	return Uint64
}

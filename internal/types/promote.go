package types

// Promote returns the smallest type that values of both old and new fit
// into. ok is false when no such type exists. A None operand adopts the
// other; the result is old itself whenever old already covers new.
func Promote(old, new Type) (Type, bool) {
	if IsNone(old) {
		return new, true
	}
	if IsNone(new) {
		return old, true
	}

	switch o := old.(type) {
	case *Basic:
		return old, Identical(old, new)

	case *Integer:
		n, ok := new.(*Integer)
		if !ok {
			return nil, false
		}
		r, ok := CommonInteger(o, n)
		if !ok {
			return nil, false
		}
		if r.bits == o.bits && r.signed == o.signed {
			return old, true
		}
		return r, true

	case *String:
		n, ok := new.(*String)
		if !ok {
			return nil, false
		}
		if n.len > o.len {
			return n, true
		}
		return old, true

	case *Pointer:
		n, ok := new.(*Pointer)
		if !ok || !Identical(o.elem, n.elem) {
			return nil, false
		}
		return old, true

	case *Array:
		n, ok := new.(*Array)
		if !ok || o.len != n.len {
			return nil, false
		}
		elem, ok := Promote(o.elem, n.elem)
		if !ok {
			return nil, false
		}
		if elem == o.elem {
			return old, true
		}
		return NewArray(o.len, elem), true

	case *Tuple:
		n, ok := new.(*Tuple)
		if !ok || len(o.elems) != len(n.elems) {
			return nil, false
		}
		return promoteTuple(o, n)

	case *Record:
		n, ok := new.(*Record)
		if !ok || o.name != n.name {
			return nil, false
		}
		if o.name != "" {
			return old, true
		}
		if !SameFieldNames(o, n) {
			return nil, false
		}
		return promoteRecord(o, n)

	case *Aggregate:
		n, ok := new.(*Aggregate)
		if !ok || o.kind != n.kind {
			return nil, false
		}
		if n.signed && !o.signed {
			return NewAggregate(o.kind, true), true
		}
		return old, true
	}
	return nil, false
}

func promoteTuple(o, n *Tuple) (Type, bool) {
	changed := false
	elems := make([]Type, len(o.elems))
	for i := range o.elems {
		e, ok := Promote(o.elems[i], n.elems[i])
		if !ok {
			return nil, false
		}
		if e != o.elems[i] {
			changed = true
		}
		elems[i] = e
	}
	if !changed {
		return o, true
	}
	return NewTuple(elems), true
}

func promoteRecord(o, n *Record) (Type, bool) {
	changed := false
	fields := make([]*Field, len(o.fields))
	for i, f := range o.fields {
		g, _ := n.Lookup(f.Name)
		t, ok := Promote(f.Type, g.Type)
		if !ok {
			return nil, false
		}
		if t != f.Type {
			changed = true
		}
		fields[i] = &Field{Name: f.Name, Type: t}
	}
	if !changed {
		return o, true
	}
	return &Record{name: o.name, fields: fields}, true
}

// CommonInteger returns the smallest integer type both x and y fit into.
// Equal signedness takes the wider width. A signed type absorbs a narrower
// unsigned one; otherwise the unsigned width is doubled. uint64 and any
// signed type have no common type.
func CommonInteger(x, y *Integer) (*Integer, bool) {
	if x.signed == y.signed {
		if x.bits >= y.bits {
			return x, true
		}
		return y, true
	}
	u, s := x, y
	if x.signed {
		u, s = y, x
	}
	if s.bits > u.bits {
		return s, true
	}
	if u.bits == 64 {
		return nil, false
	}
	return NewInteger(max(2*u.bits, s.bits), true), true
}

// Fits reports whether promoting old by new leaves old unchanged.
func Fits(old, new Type) bool {
	t, ok := Promote(old, new)
	return ok && Identical(t, old)
}

package types2

import (
	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/rtabi"
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types"
)

// exprMode describes where an expression appears.
type exprMode uint8

const (
	valueExpr    exprMode = iota // the value is used
	stmtExpr                     // expression statement; calls may be void
	mapValueExpr                 // right-hand side of a map assignment
)

// typeinfoType is the record produced by typeinfo(x).
var typeinfoType = types.NewRecord([]*types.Field{
	{Name: "base_type", Type: types.NewString(rtabi.DefaultStringSize)},
	{Name: "full_type", Type: types.NewString(rtabi.DefaultStringSize)},
})

// expr resolves an expression whose value is used and records its type.
func (r *resolver) expr(e syntax.Expr) types.Type {
	return r.exprMode(e, valueExpr)
}

// exprMode resolves e and records its type. The result is None while the
// type is not known yet.
func (r *resolver) exprMode(e syntax.Expr, mode exprMode) types.Type {
	return r.record(e, r.exprInternal(e, mode))
}

func (r *resolver) exprInternal(e syntax.Expr, mode exprMode) types.Type {
	switch e := e.(type) {
	case *syntax.IntLit:
		return types.IntegerFor(e.Value, e.Negative)

	case *syntax.StringLit:
		return types.NewString(int64(len(e.Value)) + 1)

	case *syntax.BoolLit:
		return types.Bool

	case *syntax.Builtin:
		return r.builtin(e)

	case *syntax.Variable:
		return r.slot(r.lookupVar(e.Name))

	case *syntax.Map:
		return r.mapExpr(e)

	case *syntax.Call:
		return r.call(e, mode)

	case *syntax.Binary:
		return r.binary(e)

	case *syntax.Unary:
		return r.unary(e)

	case *syntax.Ternary:
		return r.ternary(e)

	case *syntax.FieldAccess:
		return r.fieldAccess(e)

	case *syntax.IndexExpr:
		return r.index(e)

	case *syntax.Cast:
		return r.cast(e)

	case *syntax.TupleLit:
		return r.tupleLit(e)

	case *syntax.RecordLit:
		return r.recordLit(e)

	case *syntax.Sizeof:
		return r.sizeof(e)

	case *syntax.Offsetof:
		return r.offsetof(e)

	case *syntax.Typeinfo:
		t := r.expr(e.X)
		if !types.IsResolved(t) {
			return types.None
		}
		r.lockOperand(e.Pos(), e.X)
		return typeinfoType

	case *syntax.TypeExpr:
		return r.typeExprInternal(e)
	}

	r.errorf(e.Pos(), "unexpected expression %T", e)
	return types.None
}

// mapExpr resolves a map access. Reading an element yields the read type
// of the value; a map without a key denotes the whole map.
func (r *resolver) mapExpr(m *syntax.Map) types.Type {
	value := r.slot(MapValueVar(m.Name))
	if m.Key == nil {
		return value
	}
	r.assign(m.Key.Pos(), MapKeyVar(m.Name), r.expr(m.Key))
	if types.IsNone(value) {
		return types.None
	}
	return types.ReadType(value)
}

// binary resolves X op Y.
func (r *resolver) binary(e *syntax.Binary) types.Type {
	x := r.expr(e.X)
	y := r.expr(e.Y)

	if e.Op.IsLogical() {
		r.condition(e.X, x)
		r.condition(e.Y, y)
		return types.Bool
	}
	if e.Op.IsComparison() {
		if !types.IsNone(x) && !types.IsNone(y) {
			r.comparison(e, x, y)
		}
		return types.Bool
	}
	if types.IsNone(x) || types.IsNone(y) {
		return types.None
	}

	xi, xok := x.(*types.Integer)
	yi, yok := y.(*types.Integer)

	switch {
	case (e.Op == syntax.Shl || e.Op == syntax.Shr) && xok && yok:
		return x

	case xok && yok:
		t, ok := types.CommonInteger(xi, yi)
		if !ok {
			r.warnf(e.Pos(), "%s and %s have no common type; using int64", x, y)
			return types.Int64
		}
		return t

	case (e.Op == syntax.Add || e.Op == syntax.Sub) && types.IsPointer(x) && yok:
		return x

	case e.Op == syntax.Add && xok && types.IsPointer(y):
		return y
	}

	r.invalidOp(e.Pos(), "%s %s %s", x, e.Op, y)
	return types.None
}

// comparison checks that x and y can be compared with e.Op.
func (r *resolver) comparison(e *syntax.Binary, x, y types.Type) {
	switch {
	case types.IsStringType(x) && types.IsStringType(y):
		if e.Op != syntax.Eql && e.Op != syntax.Neq {
			r.invalidOp(e.Pos(), "strings can only be compared with == and !=")
		}

	case types.IsPointer(x) && types.IsPointer(y):
		if !types.Identical(x, y) {
			r.invalidOp(e.Pos(), "comparison of mismatched pointers %s and %s", x, y)
		}

	case types.IsScalar(x) && types.IsScalar(y):
		xi, xok := x.(*types.Integer)
		yi, yok := y.(*types.Integer)
		if xok && yok {
			if _, ok := types.CommonInteger(xi, yi); !ok {
				r.warnf(e.Pos(), "comparison of %s and %s may be lossy", x, y)
			}
		}

	default:
		r.invalidOp(e.Pos(), "cannot compare %s with %s", x, y)
	}
}

// condition checks that an operand of a logical operator is usable as a
// truth value.
func (r *resolver) condition(e syntax.Expr, t types.Type) {
	if !types.IsNone(t) && !types.IsScalar(t) {
		r.invalidOp(e.Pos(), "%s used as a condition", t)
	}
}

// unary resolves a unary operation.
func (r *resolver) unary(e *syntax.Unary) types.Type {
	if e.Op == syntax.Inc || e.Op == syntax.Dec {
		return r.incDec(e)
	}

	x := r.expr(e.X)
	if e.Op == syntax.Not {
		r.condition(e.X, x)
		return types.Bool
	}
	if types.IsNone(x) {
		return types.None
	}

	switch e.Op {
	case syntax.Sub:
		if i, ok := x.(*types.Integer); ok {
			if i.Signed() {
				return i
			}
			return types.NewInteger(min(2*i.Bits(), 64), true)
		}

	case syntax.Tilde:
		if types.IsInteger(x) {
			return x
		}

	case syntax.Mul:
		if p, ok := x.(*types.Pointer); ok {
			return p.Elem()
		}
		r.invalidOp(e.Pos(), "cannot dereference %s", x)
		return types.None

	case syntax.And:
		return types.NewPointer(x)
	}

	r.invalidOp(e.Pos(), "operator %s not defined on %s", e.Op, x)
	return types.None
}

// incDec resolves x++, x--, ++x and --x, which store x ± 1 back into x.
// An unresolved operand starts out as uint64.
func (r *resolver) incDec(e *syntax.Unary) types.Type {
	var v TypeVar
	switch x := e.X.(type) {
	case *syntax.Variable:
		v = r.lookupVar(x.Name)
	case *syntax.Map:
		if x.Key != nil {
			r.assign(x.Key.Pos(), MapKeyVar(x.Name), r.expr(x.Key))
		}
		v = MapValueVar(x.Name)
	default:
		r.expr(e.X)
		r.invalidOp(e.Pos(), "%s requires a variable or map element", e.Op)
		return types.None
	}

	t := r.slot(v)
	switch {
	case types.IsNone(t):
		t = types.Uint64
		r.assign(e.Pos(), v, t)
	case !types.IsInteger(t) && !types.IsPointer(t):
		r.invalidOp(e.Pos(), "operator %s not defined on %s", e.Op, t)
		return types.None
	}
	r.record(e.X, t)
	return t
}

// ternary resolves Cond ? X : Y. The branches must have a common type.
func (r *resolver) ternary(e *syntax.Ternary) types.Type {
	r.condition(e.Cond, r.expr(e.Cond))
	x := r.expr(e.X)
	y := r.expr(e.Y)

	t, ok := types.Promote(x, y)
	if !ok {
		r.diags.AddError(e.Pos()).WithCode(diag.CodeTypeMismatch).
			Printf("ternary branches have incompatible types %s and %s", x, y)
		return types.None
	}
	return t
}

// fieldAccess resolves x.f, x->f and x.N.
func (r *resolver) fieldAccess(e *syntax.FieldAccess) types.Type {
	x := r.expr(e.X)
	if types.IsNone(x) {
		return types.None
	}

	if e.Arrow {
		p, ok := x.(*types.Pointer)
		if !ok {
			r.invalidOp(e.Pos(), "-> requires a pointer to a struct, got %s", x)
			return types.None
		}
		x = p.Elem()
	}

	if e.Index >= 0 {
		tup, ok := x.(*types.Tuple)
		if !ok || e.Arrow {
			r.invalidOp(e.Pos(), "cannot index %s with .%d", x, e.Index)
			return types.None
		}
		if e.Index >= tup.Len() {
			r.invalidOp(e.Pos(), "tuple index %d out of range for %s", e.Index, x)
			return types.None
		}
		return tup.Elem(e.Index)
	}

	rec, ok := x.(*types.Record)
	if !ok {
		if types.IsPointer(x) && !e.Arrow {
			r.invalidOp(e.Pos(), "%s is a pointer; use -> to access %s", x, e.Field)
		} else {
			r.invalidOp(e.Pos(), "%s has no fields", x)
		}
		return types.None
	}
	f, _ := rec.Lookup(e.Field)
	if f == nil {
		r.invalidOp(e.Pos(), "%s has no field %s", x, e.Field)
		return types.None
	}
	return f.Type
}

// index resolves x[i] on arrays and pointers.
func (r *resolver) index(e *syntax.IndexExpr) types.Type {
	x := r.expr(e.X)
	i := r.expr(e.Index)
	if !types.IsNone(i) && !types.IsInteger(i) {
		r.invalidOp(e.Index.Pos(), "index must be an integer, got %s", i)
	}
	switch x := x.(type) {
	case *types.Array:
		return x.Elem()
	case *types.Pointer:
		return x.Elem()
	}
	if !types.IsNone(x) {
		r.invalidOp(e.Pos(), "cannot index %s", x)
	}
	return types.None
}

// cast resolves (T)x. The result has type T even while x is unresolved.
func (r *resolver) cast(e *syntax.Cast) types.Type {
	to := r.typeExpr(e.To)
	x := r.expr(e.X)
	if !types.IsResolved(to) {
		return types.None
	}
	if types.IsResolved(x) && !r.convertible(x, to) {
		r.invalidOp(e.Pos(), "cannot cast %s to %s", x, to)
		return types.None
	}
	return to
}

// convertible reports whether a value of type x can be cast to type to.
func (r *resolver) convertible(x, to types.Type) bool {
	switch {
	case types.IsScalar(x) && types.IsScalar(to):
		return !(types.IsBoolean(to) && types.IsPointer(x))
	case types.Identical(x, to):
		return true
	case types.IsStringType(x) && types.IsStringType(to):
		return true
	}
	if _, ok := to.(*types.Array); ok {
		return r.sizes.Sizeof(x) == r.sizes.Sizeof(to)
	}
	return false
}

// tupleLit resolves (a, b, ...).
func (r *resolver) tupleLit(e *syntax.TupleLit) types.Type {
	elems := make([]types.Type, len(e.Elems))
	resolved := true
	for i, x := range e.Elems {
		elems[i] = r.expr(x)
		if types.IsNone(elems[i]) {
			resolved = false
		}
	}
	if !resolved {
		return types.None
	}
	return types.NewTuple(elems)
}

// recordLit resolves (name = a, ...). Field names must be unique.
func (r *resolver) recordLit(e *syntax.RecordLit) types.Type {
	fields := make([]*types.Field, 0, len(e.Fields))
	seen := make(map[string]bool, len(e.Fields))
	resolved := true
	for _, f := range e.Fields {
		t := r.expr(f.Value)
		if seen[f.Name] {
			r.errorf(f.Pos(), "duplicate field %s in record literal", f.Name)
			continue
		}
		seen[f.Name] = true
		if types.IsNone(t) {
			resolved = false
		}
		fields = append(fields, &types.Field{Name: f.Name, Type: t})
	}
	if !resolved {
		return types.None
	}
	return types.NewRecord(fields)
}

// reflected resolves the operand of sizeof or offsetof. It returns None
// while the operand type is incomplete and locks the operand otherwise.
func (r *resolver) reflected(pos syntax.Pos, x syntax.Expr, of *syntax.TypeExpr) types.Type {
	var t types.Type
	if of != nil {
		t = r.typeExpr(of)
	} else {
		t = r.expr(x)
	}
	if !types.IsResolved(t) {
		return types.None
	}
	if x != nil {
		r.lockOperand(pos, x)
	}
	return t
}

func (r *resolver) sizeof(e *syntax.Sizeof) types.Type {
	if types.IsNone(r.reflected(e.Pos(), e.X, e.Of)) {
		return types.None
	}
	return types.Uint64
}

func (r *resolver) offsetof(e *syntax.Offsetof) types.Type {
	t := r.reflected(e.Pos(), e.X, e.Of)
	if types.IsNone(t) {
		return types.None
	}
	rec, ok := t.(*types.Record)
	if !ok {
		r.invalidOp(e.Pos(), "offsetof requires a struct or record, got %s", t)
		return types.None
	}
	if f, _ := rec.Lookup(e.Field); f == nil {
		r.invalidOp(e.Pos(), "%s has no field %s", t, e.Field)
		return types.None
	}
	return types.Uint64
}

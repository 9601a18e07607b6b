package types2

import (
	"go/constant"
	"go/token"

	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types"
)

// decide evaluates the condition of an if comptime statement. decided is
// false while the condition depends on something not known yet.
func (r *resolver) decide(cond syntax.Expr) (taken, decided bool) {
	return truth(r.constant(cond))
}

// binaryOps maps probe operators to their go/constant equivalents.
var binaryOps = map[syntax.Token]token.Token{
	syntax.OrOr:   token.LOR,
	syntax.AndAnd: token.LAND,
	syntax.Add:    token.ADD,
	syntax.Sub:    token.SUB,
	syntax.Mul:    token.MUL,
	syntax.Div:    token.QUO_ASSIGN, // integer division
	syntax.Rem:    token.REM,
	syntax.And:    token.AND,
	syntax.Or:     token.OR,
	syntax.Xor:    token.XOR,
}

var compareOps = map[syntax.Token]token.Token{
	syntax.Eql: token.EQL,
	syntax.Neq: token.NEQ,
	syntax.Lss: token.LSS,
	syntax.Leq: token.LEQ,
	syntax.Gtr: token.GTR,
	syntax.Geq: token.GEQ,
}

var unknown = constant.MakeUnknown()

// constant evaluates e at compile time. Only literals, reflection on
// resolved types and operators over them are constant; everything else
// is unknown. Expression types must already be recorded.
func (r *resolver) constant(e syntax.Expr) constant.Value {
	switch e := e.(type) {
	case *syntax.IntLit:
		v := constant.MakeUint64(e.Value)
		if e.Negative {
			v = constant.UnaryOp(token.SUB, v, 0)
		}
		return v

	case *syntax.StringLit:
		return constant.MakeString(e.Value)

	case *syntax.BoolLit:
		return constant.MakeBool(e.Value)

	case *syntax.Sizeof:
		if t := r.reflectedType(e.X, e.Of); types.IsResolved(t) {
			return constant.MakeInt64(r.sizes.Sizeof(t))
		}

	case *syntax.Offsetof:
		if rec, ok := r.reflectedType(e.X, e.Of).(*types.Record); ok {
			if _, i := rec.Lookup(e.Field); i >= 0 {
				return constant.MakeInt64(r.sizes.Offsetof(rec, i))
			}
		}

	case *syntax.FieldAccess:
		ti, ok := e.X.(*syntax.Typeinfo)
		if !ok || e.Arrow {
			break
		}
		t := r.rt.TypeOf(ti.X)
		if !types.IsResolved(t) {
			break
		}
		switch e.Field {
		case "base_type":
			return constant.MakeString(types.BaseName(t))
		case "full_type":
			return constant.MakeString(t.String())
		}

	case *syntax.Cast:
		x := r.constant(e.X)
		to := r.rt.TypeOf(e.To)
		if i, ok := to.(*types.Integer); ok && x.Kind() == constant.Int {
			return wrap(x, i)
		}
		if x.Kind() == constant.Bool && types.IsBoolean(to) {
			return x
		}

	case *syntax.Unary:
		return r.constantUnary(e)

	case *syntax.Binary:
		return r.constantBinary(e)

	case *syntax.Ternary:
		c, ok := truth(r.constant(e.Cond))
		if !ok {
			break
		}
		if c {
			return r.constant(e.X)
		}
		return r.constant(e.Y)
	}
	return unknown
}

// truth interprets v as a condition. Integers are true when non-zero.
func truth(v constant.Value) (b, ok bool) {
	switch v.Kind() {
	case constant.Bool:
		return constant.BoolVal(v), true
	case constant.Int:
		return constant.Sign(v) != 0, true
	}
	return false, false
}

// wrap truncates x to the width of t, sign-extending when t is signed.
func wrap(x constant.Value, t *types.Integer) constant.Value {
	bits := uint(t.Bits())
	mod := constant.Shift(constant.MakeInt64(1), token.SHL, bits)
	mask := constant.BinaryOp(mod, token.SUB, constant.MakeInt64(1))
	v := constant.BinaryOp(x, token.AND, mask)
	if t.Signed() {
		half := constant.Shift(constant.MakeInt64(1), token.SHL, bits-1)
		if constant.Compare(v, token.GEQ, half) {
			v = constant.BinaryOp(v, token.SUB, mod)
		}
	}
	return v
}

// reflectedType returns the recorded type of a sizeof or offsetof operand.
func (r *resolver) reflectedType(x syntax.Expr, of *syntax.TypeExpr) types.Type {
	if of != nil {
		return r.rt.TypeOf(of)
	}
	return r.rt.TypeOf(x)
}

func (r *resolver) constantUnary(e *syntax.Unary) constant.Value {
	x := r.constant(e.X)
	switch {
	case e.Op == syntax.Not && x.Kind() == constant.Bool:
		return constant.UnaryOp(token.NOT, x, 0)
	case e.Op == syntax.Sub && x.Kind() == constant.Int:
		return constant.UnaryOp(token.SUB, x, 0)
	case e.Op == syntax.Tilde && x.Kind() == constant.Int:
		return constant.UnaryOp(token.XOR, x, 0)
	}
	return unknown
}

func (r *resolver) constantBinary(e *syntax.Binary) constant.Value {
	x := r.constant(e.X)
	y := r.constant(e.Y)
	if x.Kind() == constant.Unknown || y.Kind() == constant.Unknown || x.Kind() != y.Kind() {
		return unknown
	}

	if op, ok := compareOps[e.Op]; ok {
		if x.Kind() == constant.Bool && op != token.EQL && op != token.NEQ {
			return unknown
		}
		return constant.MakeBool(constant.Compare(x, op, y))
	}

	switch e.Op {
	case syntax.Shl, syntax.Shr:
		s, ok := constant.Uint64Val(y)
		if x.Kind() != constant.Int || !ok || s >= 64 {
			return unknown
		}
		op := token.SHL
		if e.Op == syntax.Shr {
			op = token.SHR
		}
		return constant.Shift(x, op, uint(s))

	case syntax.OrOr, syntax.AndAnd:
		if x.Kind() != constant.Bool {
			return unknown
		}

	case syntax.Div, syntax.Rem:
		if x.Kind() != constant.Int || constant.Sign(y) == 0 {
			return unknown
		}

	default:
		if x.Kind() != constant.Int {
			return unknown
		}
	}

	op, ok := binaryOps[e.Op]
	if !ok {
		return unknown
	}
	return constant.BinaryOp(x, op, y)
}

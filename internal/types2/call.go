package types2

import (
	"github.com/you-not-fish/probec/internal/rtabi"
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types"
)

// builtinTypes holds the builtins whose type does not depend on the oracle.
var builtinTypes = map[string]types.Type{
	"pid":     types.Uint32,
	"tid":     types.Uint32,
	"uid":     types.Uint32,
	"gid":     types.Uint32,
	"cpu":     types.Uint32,
	"nsecs":   types.Uint64,
	"elapsed": types.Uint64,
	"retval":  types.Uint64,
	"comm":    types.NewString(rtabi.CommSize),
	"probe":   types.NewString(rtabi.DefaultStringSize),
	"func":    types.NewString(rtabi.DefaultStringSize),
}

func init() {
	for i := 0; i <= 9; i++ {
		builtinTypes["arg"+string(rune('0'+i))] = types.Uint64
	}
}

// builtin resolves a builtin identifier. curtask points to the kernel's
// task_struct when the oracle knows it, and is a plain address otherwise.
func (r *resolver) builtin(e *syntax.Builtin) types.Type {
	if e.Name == "curtask" {
		if rec, err := r.lookupStruct("task_struct"); err == nil {
			return types.NewPointer(rec)
		}
		return types.Uint64
	}
	if t, ok := builtinTypes[e.Name]; ok {
		return t
	}
	r.errorf(e.Pos(), "unknown builtin %s", e.Name)
	return types.None
}

// arity gives the minimum and maximum argument count of each function.
// A maximum of -1 means variadic.
var arity = map[string][2]int{
	"count":  {0, 0},
	"sum":    {1, 1},
	"min":    {1, 1},
	"max":    {1, 1},
	"avg":    {1, 1},
	"stats":  {1, 1},
	"hist":   {1, 1},
	"lhist":  {4, 4},
	"str":    {1, 2},
	"printf": {1, -1},
	"print":  {1, 1},
	"exit":   {0, 0},
	"delete": {1, 1},
	"clear":  {1, 1},
	"zero":   {1, 1},
}

// call resolves a call. Void calls are only valid as statements and
// aggregates only as the value stored into a map.
func (r *resolver) call(e *syntax.Call, mode exprMode) types.Type {
	args := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = r.expr(a)
	}

	n, ok := arity[e.Func]
	if !ok {
		r.errorf(e.Pos(), "unknown function %s", e.Func)
		return types.None
	}
	if len(e.Args) < n[0] || (n[1] >= 0 && len(e.Args) > n[1]) {
		r.errorf(e.Pos(), "wrong number of arguments to %s(): got %d", e.Func, len(e.Args))
		return types.None
	}

	if kind, ok := types.LookupAggregate(e.Func); ok {
		return r.aggregate(e, kind, args, mode)
	}

	var t types.Type = types.None
	switch e.Func {
	case "str":
		t = r.str(e, args)
	case "printf":
		if _, ok := e.Args[0].(*syntax.StringLit); !ok {
			r.errorf(e.Args[0].Pos(), "printf() requires a format string literal")
		}
	case "delete":
		if m, ok := e.Args[0].(*syntax.Map); !ok || m.Key == nil {
			r.errorf(e.Args[0].Pos(), "delete() requires a map element")
		}
	case "clear", "zero":
		if _, ok := e.Args[0].(*syntax.Map); !ok {
			r.errorf(e.Args[0].Pos(), "%s() requires a map", e.Func)
		}
	}

	if types.IsNone(t) && mode != stmtExpr {
		switch e.Func {
		case "printf", "print", "exit", "delete", "clear", "zero":
			r.errorf(e.Pos(), "%s() does not return a value", e.Func)
		}
	}
	return t
}

// aggregate resolves count(), sum(x), hist(x), ... The signedness of the
// aggregate follows its argument.
func (r *resolver) aggregate(e *syntax.Call, kind types.AggKind, args []types.Type, mode exprMode) types.Type {
	if mode != mapValueExpr {
		r.errorf(e.Pos(), "%s() can only be assigned to a map", e.Func).
			Hint("write @m[key] = %s(...)", e.Func)
	}

	signed := false
	for i, a := range args {
		if types.IsNone(a) {
			if i == 0 && kind.HasSign() {
				return types.None
			}
			continue
		}
		if !types.IsInteger(a) {
			r.invalidOp(e.Args[i].Pos(), "%s() requires integer arguments, got %s", e.Func, a)
			return types.None
		}
		if i == 0 {
			signed = types.IsSigned(a)
		}
	}
	return types.NewAggregate(kind, signed)
}

// str resolves str(x[, n]), a string of n bytes (default 64).
func (r *resolver) str(e *syntax.Call, args []types.Type) types.Type {
	x := args[0]
	if !types.IsNone(x) && !types.IsStringType(x) && !types.IsScalar(x) {
		r.invalidOp(e.Args[0].Pos(), "str() cannot convert %s", x)
	}
	if len(e.Args) == 1 {
		return types.NewString(rtabi.DefaultStringSize)
	}

	lit, ok := e.Args[1].(*syntax.IntLit)
	if !ok || lit.Negative || lit.Value == 0 {
		r.errorf(e.Args[1].Pos(), "str() length must be a positive integer literal")
		return types.NewString(rtabi.DefaultStringSize)
	}
	if lit.Value > rtabi.MaxStringSize {
		r.errorf(e.Args[1].Pos(), "str() length %d exceeds the maximum of %d", lit.Value, rtabi.MaxStringSize)
		return types.NewString(rtabi.MaxStringSize)
	}
	return types.NewString(int64(lit.Value))
}

package types2

import (
	"fmt"

	"github.com/you-not-fish/probec/internal/btf"
	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types"
)

// errNoOracle is reported for struct names when no oracle is configured.
var errNoOracle = fmt.Errorf("no kernel type information loaded: %w", btf.ErrNotFound)

// typeExpr resolves a type written in the source and records it.
func (r *resolver) typeExpr(te *syntax.TypeExpr) types.Type {
	return r.record(te, r.typeExprInternal(te))
}

func (r *resolver) typeExprInternal(te *syntax.TypeExpr) types.Type {
	var t types.Type
	switch {
	case te.Typeof != nil:
		t = r.expr(te.Typeof)
		if !types.IsResolved(t) {
			return types.None
		}
		r.lockOperand(te.Pos(), te.Typeof)

	case te.Struct:
		rec, err := r.lookupStruct(te.Name)
		if err != nil {
			r.diags.AddError(te.Pos()).WithCode(diag.CodeExternalType).
				Printf("unknown struct %s", te.Name).
				Hint("%v", err)
			return types.None
		}
		t = rec

	default:
		var ok bool
		if t, ok = types.Lookup(te.Name); !ok {
			r.errorf(te.Pos(), "unknown type %s", te.Name)
			return types.None
		}
	}

	for i := 0; i < te.Ptr; i++ {
		t = types.NewPointer(t)
	}
	if te.ArrayLen > 0 {
		t = types.NewArray(te.ArrayLen, t)
	}
	return t
}

// lookupStruct asks the oracle for a struct. Each name is looked up once
// per Resolve call.
func (r *resolver) lookupStruct(name string) (*types.Record, error) {
	if res, ok := r.structs[name]; ok {
		return res.rec, res.err
	}
	var res structResult
	if r.conf.Oracle == nil {
		res.err = errNoOracle
	} else {
		res.rec, res.err = r.conf.Oracle.Struct(name)
	}
	r.structs[name] = res
	return res.rec, res.err
}

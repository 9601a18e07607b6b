package types2

import (
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types"
)

// block resolves a block in its own scope.
func (r *resolver) block(b *syntax.Block) {
	r.openScope(b)
	defer r.closeScope()

	for _, s := range b.Stmts {
		r.stmt(s)
	}
}

// stmt resolves a statement.
func (r *resolver) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.ExprStmt:
		r.exprMode(s.X, stmtExpr)

	case *syntax.AssignStmt:
		r.assignStmt(s)

	case *syntax.LetStmt:
		r.letStmt(s)

	case *syntax.Block:
		r.block(s)

	case *syntax.IfStmt:
		r.ifStmt(s)

	case *syntax.WhileStmt:
		r.expr(s.Cond)
		r.loopDepth++
		r.block(s.Body)
		r.loopDepth--

	case *syntax.BranchStmt:
		if s.Tok != syntax.Return && r.loopDepth == 0 {
			r.errorf(s.Pos(), "%s is not in a loop", s.Tok)
		}

	default:
		r.errorf(s.Pos(), "unexpected statement %T", s)
	}
}

// assignStmt resolves LHS = RHS. Aggregate calls are only valid as the
// right-hand side of a map assignment.
func (r *resolver) assignStmt(s *syntax.AssignStmt) {
	switch lhs := s.LHS.(type) {
	case *syntax.Variable:
		t := r.expr(s.RHS)
		v := r.lookupVar(lhs.Name)
		r.assign(s.Pos(), v, t)
		r.record(lhs, r.slot(v))

	case *syntax.Map:
		t := r.exprMode(s.RHS, mapValueExpr)
		if lhs.Key != nil {
			r.assign(lhs.Key.Pos(), MapKeyVar(lhs.Name), r.expr(lhs.Key))
		}
		v := MapValueVar(lhs.Name)
		r.assign(s.Pos(), v, t)
		r.record(lhs, r.slot(v))

	default:
		r.errorf(s.LHS.Pos(), "cannot assign to %T", s.LHS)
	}
}

// letStmt resolves let $x [: T] [= e]. A declared type locks the variable.
func (r *resolver) letStmt(s *syntax.LetStmt) {
	var value types.Type = types.None
	if s.Value != nil {
		value = r.expr(s.Value)
	}

	v := r.declare(s.Var)
	if s.Type != nil {
		if t := r.typeExpr(s.Type); types.IsResolved(t) {
			r.assign(s.Type.Pos(), v, t)
			r.lock(s.Type.Pos(), v, "its declaration")
		}
	}
	if s.Value != nil {
		r.assign(s.Value.Pos(), v, value)
	}
	r.record(s.Var, r.slot(v))
}

// ifStmt resolves an if statement. For if comptime only the branch
// selected by the condition is resolved, and neither while the condition
// cannot be evaluated yet. Decisions are kept across iterations.
func (r *resolver) ifStmt(s *syntax.IfStmt) {
	r.expr(s.Cond)

	if !s.Comptime {
		r.block(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}
		return
	}

	r.comptime = append(r.comptime, s)
	taken, decided := r.rt.Comptime[s]
	if !decided {
		taken, decided = r.decide(s.Cond)
		if !decided {
			return
		}
		r.rt.Comptime[s] = taken
		r.changes++
	}

	if taken {
		r.block(s.Then)
	} else if s.Else != nil {
		r.stmt(s.Else)
	}
}

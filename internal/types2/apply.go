package types2

import (
	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types"
)

// Apply writes the types in rt onto prog. Each decided if comptime is
// folded to its taken branch and each undecided one replaced by an empty
// block. Variables and maps whose type could not be resolved are reported to
// diags.
func Apply(prog *syntax.Program, rt *ResolvedTypes, diags *diag.Diagnostics) {
	a := &applier{rt: rt, diags: diags}
	for _, p := range prog.Probes {
		if p.Body != nil {
			a.block(p.Body)
		}
	}
	syntax.Inspect(prog, func(n syntax.Node) bool {
		if e, ok := n.(syntax.Expr); ok {
			a.expr(e)
		}
		return true
	})
}

type applier struct {
	rt    *ResolvedTypes
	diags *diag.Diagnostics
}

func (a *applier) block(b *syntax.Block) {
	for i, s := range b.Stmts {
		b.Stmts[i] = a.stmt(s)
	}
}

// stmt returns the statement replacing s.
func (a *applier) stmt(s syntax.Stmt) syntax.Stmt {
	switch s := s.(type) {
	case *syntax.Block:
		a.block(s)

	case *syntax.IfStmt:
		if s.Comptime {
			return a.comptime(s)
		}
		a.block(s.Then)
		if s.Else != nil {
			s.Else = a.stmt(s.Else)
		}

	case *syntax.WhileStmt:
		a.block(s.Body)
	}
	return s
}

// comptime drops the branch of s that was not taken. The condition stays
// so a later resolution of the program makes the same decision and locks
// the same slots.
func (a *applier) comptime(s *syntax.IfStmt) syntax.Stmt {
	taken, ok := a.rt.Comptime[s]
	if !ok {
		b := &syntax.Block{}
		b.SetPos(s.Pos())
		return b
	}

	if taken {
		a.block(s.Then)
		s.Else = nil
	} else {
		empty := &syntax.Block{Rbrace: s.Then.Rbrace}
		empty.SetPos(s.Then.Pos())
		s.Then = empty
		if s.Else != nil {
			s.Else = a.stmt(s.Else)
		}
	}
	s.Folded = true
	return s
}

func (a *applier) expr(e syntax.Expr) {
	t := a.rt.TypeOf(e)
	e.SetType(t)

	switch e := e.(type) {
	case *syntax.Variable:
		if !types.IsResolved(t) {
			a.diags.AddError(e.Pos()).WithCode(diag.CodeUnresolvedType).
				Printf("could not resolve the type of this variable")
		}

	case *syntax.Map:
		if _, ok := a.rt.Lookup(MapValueVar(e.Name)); !ok {
			a.diags.AddError(e.Pos()).WithCode(diag.CodeUnresolvedType).
				Printf("undefined map: %s", e.Name)
		}
		if e.Key == nil {
			return
		}
		kt, ok := a.rt.Lookup(MapKeyVar(e.Name))
		if !ok {
			a.diags.AddError(e.Pos()).WithCode(diag.CodeUnresolvedType).
				Printf("could not resolve the key type of map %s", e.Name)
		}
		e.KeyType = kt
	}
}

package syntax

import (
	"fmt"
	"strings"
)

// Verify checks the structural integrity of a program. Passes that rewrite
// the tree are expected to preserve these properties. It returns an error
// describing all violations found, or nil if valid.
func Verify(prog *Program) error {
	if prog == nil {
		return fmt.Errorf("AST verification failed:\n  program is nil")
	}

	var errs []string
	add := func(n Node, format string, args ...interface{}) {
		errs = append(errs, n.Pos().String()+": "+fmt.Sprintf(format, args...))
	}

	seen := make(map[Node]bool)
	Inspect(prog, func(n Node) bool {
		// 1. No node appears twice in the tree
		if seen[n] {
			add(n, "%T shared between parents", n)
			return false
		}
		seen[n] = true

		switch n := n.(type) {
		case *Probe:
			// 2. Every probe has an attach point and a body
			if len(n.AttachPoints) == 0 {
				add(n, "probe has no attach points")
			}
			if n.Body == nil {
				add(n, "probe %s has no body", n.Name())
			}

		case *Block:
			for i, s := range n.Stmts {
				if s == nil {
					add(n, "block statement %d is nil", i)
				}
			}

		case *AssignStmt:
			// 3. Assignments store into a variable or a map
			switch n.LHS.(type) {
			case *Variable, *Map:
			default:
				add(n, "assignment to %T", n.LHS)
			}
			if n.RHS == nil {
				add(n, "assignment without value")
			}

		case *LetStmt:
			if n.Var == nil {
				add(n, "let without variable")
			}

		case *IfStmt:
			if n.Cond == nil || n.Then == nil {
				add(n, "if statement missing condition or body")
			}
			switch n.Else.(type) {
			case nil, *Block, *IfStmt:
			default:
				add(n, "else branch is %T", n.Else)
			}
			if n.Folded && !n.Comptime {
				add(n, "folded if is not comptime")
			}
			if n.Folded && n.Else != nil && n.Then != nil && len(n.Then.Stmts) > 0 {
				add(n, "folded if keeps both branches")
			}

		case *TupleLit:
			// 4. Tuples have at least two elements
			if len(n.Elems) < 2 {
				add(n, "tuple with %d elements", len(n.Elems))
			}

		case *RecordLit:
			// 5. Record field names are unique
			names := make(map[string]bool, len(n.Fields))
			for _, f := range n.Fields {
				if names[f.Name] {
					add(f, "duplicate record field %s", f.Name)
				}
				names[f.Name] = true
			}

		case *Sizeof:
			if (n.X == nil) == (n.Of == nil) {
				add(n, "sizeof needs exactly one operand")
			}

		case *Offsetof:
			if (n.X == nil) == (n.Of == nil) {
				add(n, "offsetof needs exactly one operand")
			}
		}

		// 6. Expressions carry a position
		if e, ok := n.(Expr); ok && !e.Pos().IsValid() {
			errs = append(errs, fmt.Sprintf("%T has no position", e))
		}
		return true
	})

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("AST verification failed:\n  %s", strings.Join(errs, "\n  "))
}

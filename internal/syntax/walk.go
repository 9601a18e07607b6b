package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, pr := range n.Probes {
			Walk(pr, v)
		}

	case *Probe:
		for _, ap := range n.AttachPoints {
			Walk(ap, v)
		}
		if n.Pred != nil {
			Walk(n.Pred, v)
		}
		if n.Body != nil {
			Walk(n.Body, v)
		}

	case *Block:
		for _, s := range n.Stmts {
			Walk(s, v)
		}

	case *IfStmt:
		Walk(n.Cond, v)
		if n.Then != nil {
			Walk(n.Then, v)
		}
		if n.Else != nil {
			Walk(n.Else, v)
		}

	case *WhileStmt:
		Walk(n.Cond, v)
		if n.Body != nil {
			Walk(n.Body, v)
		}

	case *LetStmt:
		Walk(n.Var, v)
		if n.Type != nil {
			Walk(n.Type, v)
		}
		if n.Value != nil {
			Walk(n.Value, v)
		}

	case *AssignStmt:
		Walk(n.LHS, v)
		Walk(n.RHS, v)

	case *ExprStmt:
		Walk(n.X, v)

	case *Map:
		if n.Key != nil {
			Walk(n.Key, v)
		}

	case *Call:
		for _, a := range n.Args {
			Walk(a, v)
		}

	case *Binary:
		Walk(n.X, v)
		Walk(n.Y, v)

	case *Unary:
		Walk(n.X, v)

	case *Ternary:
		Walk(n.Cond, v)
		Walk(n.X, v)
		Walk(n.Y, v)

	case *FieldAccess:
		Walk(n.X, v)

	case *IndexExpr:
		Walk(n.X, v)
		Walk(n.Index, v)

	case *Cast:
		Walk(n.To, v)
		Walk(n.X, v)

	case *TupleLit:
		for _, e := range n.Elems {
			Walk(e, v)
		}

	case *RecordLit:
		for _, f := range n.Fields {
			Walk(f, v)
		}

	case *NamedExpr:
		Walk(n.Value, v)

	case *Sizeof:
		if n.X != nil {
			Walk(n.X, v)
		} else if n.Of != nil {
			Walk(n.Of, v)
		}

	case *Offsetof:
		if n.X != nil {
			Walk(n.X, v)
		} else if n.Of != nil {
			Walk(n.Of, v)
		}

	case *Typeinfo:
		Walk(n.X, v)

	case *TypeExpr:
		if n.Typeof != nil {
			Walk(n.Typeof, v)
		}

		// Leaf nodes: AttachPoint, IntLit, StringLit, BoolLit, Builtin,
		// Variable, BranchStmt
		// No children to visit
	}
}

// Inspect traverses an AST and calls f for each node.
// Convenience wrapper around Walk.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, Visitor(f))
}

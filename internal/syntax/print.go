package syntax

import (
	"fmt"
	"io"
	"strings"

	"github.com/you-not-fish/probec/internal/types"
)

// Fprint writes a textual representation of the AST to w. Expressions whose
// type has been applied are annotated with ":: type".
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

// expr prints a header line for an expression node.
func (p *printer) expr(e Expr, format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if t := e.Type(); !types.IsNone(t) {
		line += " :: " + t.String()
	}
	p.printf("%s\n", line)
}

// child prints a labelled child node one level deeper.
func (p *printer) child(label string, node Node) {
	p.printf("%s:\n", label)
	p.indent++
	p.print(node)
	p.indent--
}

func (p *printer) children(nodes ...Node) {
	p.indent++
	for _, n := range nodes {
		p.print(n)
	}
	p.indent--
}

func (p *printer) print(node Node) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		p.printf("Program %s\n", n.pos)
		p.indent++
		for _, pr := range n.Probes {
			p.print(pr)
		}
		p.indent--

	case *Probe:
		p.printf("Probe %s\n", n.pos)
		p.indent++
		for _, ap := range n.AttachPoints {
			p.print(ap)
		}
		if n.Pred != nil {
			p.child("Pred", n.Pred)
		}
		p.print(n.Body)
		p.indent--

	case *AttachPoint:
		p.printf("AttachPoint %s %s\n", n.pos, n.Raw)

	case *Block:
		p.printf("Block %s\n", n.pos)
		p.indent++
		for _, s := range n.Stmts {
			p.print(s)
		}
		p.indent--

	case *IfStmt:
		switch {
		case n.Folded:
			p.printf("IfStmt %s comptime folded\n", n.pos)
		case n.Comptime:
			p.printf("IfStmt %s comptime\n", n.pos)
		default:
			p.printf("IfStmt %s\n", n.pos)
		}
		p.indent++
		p.child("Cond", n.Cond)
		p.child("Then", n.Then)
		if n.Else != nil {
			p.child("Else", n.Else)
		}
		p.indent--

	case *WhileStmt:
		p.printf("WhileStmt %s\n", n.pos)
		p.indent++
		p.child("Cond", n.Cond)
		p.child("Body", n.Body)
		p.indent--

	case *LetStmt:
		p.printf("LetStmt %s\n", n.pos)
		p.indent++
		p.print(n.Var)
		if n.Type != nil {
			p.child("Type", n.Type)
		}
		if n.Value != nil {
			p.child("Value", n.Value)
		}
		p.indent--

	case *AssignStmt:
		p.printf("AssignStmt %s\n", n.pos)
		p.indent++
		p.child("LHS", n.LHS)
		p.child("RHS", n.RHS)
		p.indent--

	case *ExprStmt:
		p.printf("ExprStmt %s\n", n.pos)
		p.children(n.X)

	case *BranchStmt:
		p.printf("BranchStmt %s %s\n", n.pos, n.Tok)

	case *IntLit:
		if n.Negative {
			p.expr(n, "IntLit %s -%d", n.pos, n.Value)
		} else {
			p.expr(n, "IntLit %s %d", n.pos, n.Value)
		}

	case *StringLit:
		p.expr(n, "StringLit %s %q", n.pos, n.Value)

	case *BoolLit:
		p.expr(n, "BoolLit %s %t", n.pos, n.Value)

	case *Builtin:
		p.expr(n, "Builtin %s %s", n.pos, n.Name)

	case *Variable:
		p.expr(n, "Variable %s %s", n.pos, n.Name)

	case *Map:
		if kt := n.KeyType; kt != nil && !types.IsNone(kt) {
			p.expr(n, "Map %s %s [%s]", n.pos, n.Name, kt)
		} else {
			p.expr(n, "Map %s %s", n.pos, n.Name)
		}
		if n.Key != nil {
			p.indent++
			p.child("Key", n.Key)
			p.indent--
		}

	case *Call:
		p.expr(n, "Call %s %s", n.pos, n.Func)
		p.indent++
		for _, a := range n.Args {
			p.print(a)
		}
		p.indent--

	case *Binary:
		p.expr(n, "Binary %s %s", n.pos, n.Op)
		p.children(n.X, n.Y)

	case *Unary:
		if n.Postfix {
			p.expr(n, "Unary %s postfix %s", n.pos, n.Op)
		} else {
			p.expr(n, "Unary %s %s", n.pos, n.Op)
		}
		p.children(n.X)

	case *Ternary:
		p.expr(n, "Ternary %s", n.pos)
		p.children(n.Cond, n.X, n.Y)

	case *FieldAccess:
		sep := "."
		if n.Arrow {
			sep = "->"
		}
		p.expr(n, "FieldAccess %s %s%s", n.pos, sep, n.Field)
		p.children(n.X)

	case *IndexExpr:
		p.expr(n, "IndexExpr %s", n.pos)
		p.children(n.X, n.Index)

	case *Cast:
		p.expr(n, "Cast %s (%s)", n.pos, n.To)
		p.children(n.X)

	case *TupleLit:
		p.expr(n, "TupleLit %s", n.pos)
		p.indent++
		for _, e := range n.Elems {
			p.print(e)
		}
		p.indent--

	case *RecordLit:
		p.expr(n, "RecordLit %s", n.pos)
		p.indent++
		for _, f := range n.Fields {
			p.child(f.Name, f.Value)
		}
		p.indent--

	case *NamedExpr:
		p.child(n.Name, n.Value)

	case *Sizeof:
		if n.Of != nil {
			p.expr(n, "Sizeof %s (%s)", n.pos, n.Of)
		} else {
			p.expr(n, "Sizeof %s", n.pos)
		}
		if n.X != nil {
			p.children(n.X)
		}

	case *Offsetof:
		if n.Of != nil {
			p.expr(n, "Offsetof %s (%s) %s", n.pos, n.Of, n.Field)
		} else {
			p.expr(n, "Offsetof %s %s", n.pos, n.Field)
		}
		if n.X != nil {
			p.children(n.X)
		}

	case *Typeinfo:
		p.expr(n, "Typeinfo %s", n.pos)
		p.children(n.X)

	case *TypeExpr:
		p.expr(n, "TypeExpr %s %s", n.pos, n)
		if n.Typeof != nil {
			p.children(n.Typeof)
		}

	default:
		p.printf("<%T>\n", node)
	}
}

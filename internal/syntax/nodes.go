package syntax

import (
	"strconv"

	"github.com/you-not-fish/probec/internal/types"
)

// ----------------------------------------------------------------------------
// Interfaces
//
// There are 2 main classes of nodes: Expressions and Statements. All nodes
// implement the Node interface. Expression nodes carry the type assigned to
// them by the type applicator.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of first character belonging to the node
	aNode()   // marker method to restrict implementations to this package
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	Type() types.Type     // resolved type; types.None until applied
	SetType(t types.Type) // record the resolved type
	aExpr()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	aStmt()
}

// ----------------------------------------------------------------------------
// Base node types

// node is the base struct embedded in all AST nodes.
type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

// SetPos sets the node position. Used by passes that synthesize nodes.
func (n *node) SetPos(p Pos) { n.pos = p }

// expr is embedded in all expression nodes.
type expr struct {
	node
	typ types.Type
}

func (e *expr) Type() types.Type {
	if e.typ == nil {
		return types.None
	}
	return e.typ
}

func (e *expr) SetType(t types.Type) { e.typ = t }
func (*expr) aExpr()                 {}

// stmt is embedded in all statement nodes.
type stmt struct{ node }

func (*stmt) aStmt() {}

// ----------------------------------------------------------------------------
// Program structure

// Program represents a complete probe script.
type Program struct {
	node
	Probes []*Probe
}

// Probe represents a set of attach points sharing a predicate and body:
// kprobe:f, kretprobe:f /pred/ { Body }
type Probe struct {
	node
	AttachPoints []*AttachPoint
	Pred         Expr   // predicate (nil if none)
	Body         *Block // probe body
}

// Name returns the raw text of the first attach point.
func (p *Probe) Name() string {
	if len(p.AttachPoints) == 0 {
		return ""
	}
	return p.AttachPoints[0].Raw
}

// AttachPoint represents one provider:target specification.
type AttachPoint struct {
	node
	Provider string // kprobe, tracepoint, begin, ...
	Raw      string // full text as written
}

// ----------------------------------------------------------------------------
// Expressions

// IntLit represents an integer literal. Negative literals are folded by the
// parser; Value holds the magnitude.
type IntLit struct {
	expr
	Value    uint64
	Negative bool
}

// Int64 returns the literal as a signed value. Magnitudes beyond int64 wrap.
func (l *IntLit) Int64() int64 {
	if l.Negative {
		return -int64(l.Value)
	}
	return int64(l.Value)
}

// StringLit represents a string literal.
type StringLit struct {
	expr
	Value string // decoded content
}

// BoolLit represents true or false.
type BoolLit struct {
	expr
	Value bool
}

// Builtin represents a builtin identifier: pid, comm, arg0, ...
type Builtin struct {
	expr
	Name string
}

// Variable represents a scratch variable: $x.
type Variable struct {
	expr
	Name string // including the $
}

// Map represents a map access: @m[Key]. After map sugar every map access has
// a key; multi-key accesses carry a TupleLit key. The expression type is the
// map value type.
type Map struct {
	expr
	Name    string     // including the @
	Key     Expr       // nil before map sugar for scalar maps
	KeyType types.Type // resolved key type
}

// Call represents a call to a builtin function: count(), str($p, 16), ...
type Call struct {
	expr
	Func string
	Args []Expr
}

// Binary represents a binary operation X Op Y.
type Binary struct {
	expr
	Op Token
	X  Expr
	Y  Expr
}

// Unary represents a unary operation. Postfix is set for x++ and x--.
type Unary struct {
	expr
	Op      Token
	X       Expr
	Postfix bool
}

// Ternary represents Cond ? X : Y.
type Ternary struct {
	expr
	Cond Expr
	X    Expr
	Y    Expr
}

// FieldAccess represents X.Field, X->Field and tuple indexing X.N.
type FieldAccess struct {
	expr
	X     Expr
	Field string // field name; the decimal index for tuple access
	Index int    // tuple index, or -1 for a named field
	Arrow bool   // accessed through ->
}

// IndexExpr represents an array or pointer index X[Index].
type IndexExpr struct {
	expr
	X     Expr
	Index Expr
}

// Cast represents (Type)X.
type Cast struct {
	expr
	To *TypeExpr
	X  Expr
}

// TupleLit represents (a, b, ...).
type TupleLit struct {
	expr
	Elems []Expr
}

// RecordLit represents (name = a, other = b, ...).
type RecordLit struct {
	expr
	Fields []*NamedExpr
}

// NamedExpr is one name = value element of a record literal.
type NamedExpr struct {
	node
	Name  string
	Value Expr
}

// Sizeof represents sizeof(X) or sizeof(Type). Exactly one of X and Of is set.
type Sizeof struct {
	expr
	X  Expr
	Of *TypeExpr
}

// Offsetof represents offsetof(X, Field) or offsetof(Type, Field).
type Offsetof struct {
	expr
	X     Expr
	Of    *TypeExpr
	Field string
}

// Typeinfo represents typeinfo(X).
type Typeinfo struct {
	expr
	X Expr
}

// TypeExpr represents a type written in the source: uint32, struct foo *,
// int8[16] or typeof(x). Its own type is the denoted type.
type TypeExpr struct {
	expr
	Name     string // predeclared type name or struct name
	Struct   bool   // Name is a struct name
	Typeof   Expr   // typeof(...) operand (Name is empty)
	Ptr      int    // pointer depth
	ArrayLen int64  // array length, or 0
}

// String returns the type as written.
func (t *TypeExpr) String() string {
	var s string
	switch {
	case t.Typeof != nil:
		s = "typeof(...)"
	case t.Struct:
		s = "struct " + t.Name
	default:
		s = t.Name
	}
	for i := 0; i < t.Ptr; i++ {
		s += " *"
	}
	if t.ArrayLen > 0 {
		s += "[" + strconv.FormatInt(t.ArrayLen, 10) + "]"
	}
	return s
}

// ----------------------------------------------------------------------------
// Statements

// ExprStmt represents an expression used as a statement.
type ExprStmt struct {
	stmt
	X Expr
}

// AssignStmt represents an assignment to a variable or map: LHS = RHS.
type AssignStmt struct {
	stmt
	LHS Expr // *Variable or *Map
	RHS Expr
}

// LetStmt represents let $x [: Type] [= Value].
type LetStmt struct {
	stmt
	Var   *Variable
	Type  *TypeExpr // declared type (nil if inferred)
	Value Expr      // initial value (nil if none)
}

// Block represents { Stmts... }. Blocks open a scope for let declarations.
type Block struct {
	stmt
	Stmts  []Stmt
	Rbrace Pos // position of closing brace
}

// IfStmt represents if Cond Then [else Else]. For if comptime the branch is
// selected during type resolution. Once types are applied the branch not
// taken is removed and Folded is set: an empty Then, or a nil Else.
type IfStmt struct {
	stmt
	Comptime bool
	Folded   bool
	Cond     Expr
	Then     *Block
	Else     Stmt // nil, *IfStmt, or *Block
}

// WhileStmt represents while Cond { Body }.
type WhileStmt struct {
	stmt
	Cond Expr
	Body *Block
}

// BranchStmt represents break, continue or return.
type BranchStmt struct {
	stmt
	Tok Token
}

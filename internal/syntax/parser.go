package syntax

import (
	"io"
	"strconv"
	"strings"

	"github.com/you-not-fish/probec/internal/types"
)

const (
	maxErrors   = 10      // errors before aborting parse
	maxArrayLen = 1 << 16 // largest array length accepted in a type
)

// SyntaxError represents a syntax error.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Parser performs syntax analysis on probe scripts.
type Parser struct {
	scanner *Scanner

	// Current token info (cached from scanner)
	tok Token
	lit string
	pos Pos

	// Error handling
	errh   func(pos Pos, msg string)
	errcnt int
	first  error // first error encountered
	abort  bool  // set to true when error limit reached

	// Context tracking
	nodiv bool // inside a /predicate/: '/' terminates instead of dividing
}

// NewParser creates a new Parser for the given source.
// Lexical errors count as syntax errors.
func NewParser(filename string, src io.Reader, errh func(pos Pos, msg string)) *Parser {
	p := &Parser{errh: errh}
	p.scanner = NewScanner(filename, src, p.syntaxErrorAt)
	p.next() // prime the parser with first token
	return p
}

// Parse is a convenience wrapper that parses src and returns the program
// together with the first syntax error, if any.
func Parse(filename string, src string, errh func(pos Pos, msg string)) (*Program, error) {
	p := NewParser(filename, strings.NewReader(src), errh)
	prog := p.Parse()
	return prog, p.FirstError()
}

// ----------------------------------------------------------------------------
// Token navigation

// next advances to the next token.
func (p *Parser) next() {
	p.scanner.Next()
	p.tok = p.scanner.Token()
	p.lit = p.scanner.Literal()
	p.pos = p.scanner.Pos()
}

// got reports whether the current token is tok.
// If so, it consumes the token and returns true.
func (p *Parser) got(tok Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes the current token if it matches tok.
// Otherwise, reports an error.
func (p *Parser) want(tok Token) {
	if !p.got(tok) {
		p.syntaxError("expected " + tok.String())
		p.advance()
	}
}

// ----------------------------------------------------------------------------
// Error handling

// syntaxError reports a syntax error at the current position.
func (p *Parser) syntaxError(msg string) {
	p.syntaxErrorAt(p.pos, msg)
}

// syntaxErrorAt reports a syntax error at a specific position.
func (p *Parser) syntaxErrorAt(pos Pos, msg string) {
	if p.abort {
		return
	}
	if p.errcnt == 0 {
		p.first = &SyntaxError{Pos: pos, Msg: msg}
	}
	p.errcnt++

	if p.errh != nil {
		p.errh(pos, msg)
	}

	p.errorLimitCheck(pos)
}

// errorLimitCheck aborts parsing if too many errors have occurred.
func (p *Parser) errorLimitCheck(pos Pos) {
	if p.errcnt >= maxErrors {
		p.abort = true
		if p.errh != nil {
			p.errh(pos, "too many errors; aborting parse")
		}
		p.tok = _EOF
	}
}

// syncTokens are the tokens at which error recovery resumes.
var syncTokens = map[Token]bool{
	_Semi:   true, // statement terminator
	_Rbrace: true, // block end
	_Rparen: true,
	_Rbrack: true,
	_If:     true,
	_While:  true,
	_Let:    true,
	_EOF:    true,
}

// advance skips tokens until it finds a synchronization point.
// This is used for error recovery.
func (p *Parser) advance() {
	for p.tok != _EOF && !syncTokens[p.tok] {
		p.next()
	}

	// Consume sync point to avoid repeated errors at the same position
	if p.tok != _EOF && p.tok != _Rbrace {
		p.next()
	}
}

// Errors returns the number of errors encountered during parsing.
func (p *Parser) Errors() int {
	return p.errcnt
}

// FirstError returns the first error encountered, or nil if none.
func (p *Parser) FirstError() error {
	return p.first
}

// ----------------------------------------------------------------------------
// Parsing entry point

// Parse parses a complete probe script and returns the AST.
func (p *Parser) Parse() *Program {
	prog := &Program{}
	prog.pos = p.pos

	for !p.abort && p.tok != _EOF {
		if p.got(_Semi) {
			continue
		}
		before := p.pos
		prog.Probes = append(prog.Probes, p.probe())
		if p.pos == before && p.tok != _EOF {
			// no progress; skip the offending token
			p.next()
		}
	}

	return prog
}

// ----------------------------------------------------------------------------
// Probes

// probe parses: attach_point {, attach_point} [/pred/] { body }
func (p *Parser) probe() *Probe {
	pr := &Probe{}
	pr.pos = p.pos

	pr.AttachPoints = append(pr.AttachPoints, p.attachPoint())
	for p.got(_Comma) {
		pr.AttachPoints = append(pr.AttachPoints, p.attachPoint())
	}

	if p.tok == _Div {
		p.next()
		p.nodiv = true
		pr.Pred = p.expr()
		p.nodiv = false
		p.want(_Div)
	}

	pr.Body = p.block()
	return pr
}

// attachPoint parses provider[:segment]* where a segment is a name, an
// integer or a string literal.
func (p *Parser) attachPoint() *AttachPoint {
	ap := &AttachPoint{}
	ap.pos = p.pos

	if p.tok != _Name {
		p.syntaxError("expected attach point")
		p.advance()
		return ap
	}
	ap.Provider = p.lit
	var raw strings.Builder
	raw.WriteString(p.lit)
	p.next()

	for p.got(_Colon) {
		raw.WriteByte(':')
		switch p.tok {
		case _Name, _Literal:
			raw.WriteString(p.lit)
			p.next()
		default:
			p.syntaxError("expected attach point segment")
			p.advance()
			ap.Raw = raw.String()
			return ap
		}
	}

	ap.Raw = raw.String()
	return ap
}

// ----------------------------------------------------------------------------
// Statements

// block parses { stmts... }
func (p *Parser) block() *Block {
	b := &Block{}
	b.pos = p.pos

	p.want(_Lbrace)

	for p.tok != _Rbrace && p.tok != _EOF {
		if p.got(_Semi) {
			continue
		}
		if s := p.stmt(); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}

	b.Rbrace = p.pos
	p.want(_Rbrace)

	return b
}

// stmt parses a statement.
func (p *Parser) stmt() Stmt {
	switch p.tok {
	case _Lbrace:
		return p.block()

	case _If:
		return p.ifStmt()

	case _While:
		return p.whileStmt()

	case _Let:
		return p.letStmt()

	case _Break, _Continue, _Return:
		s := &BranchStmt{Tok: p.tok}
		s.pos = p.pos
		p.next()
		p.endStmt()
		return s

	default:
		return p.simpleStmt()
	}
}

// endStmt consumes the ';' terminating a simple statement. The terminator may
// be omitted before a closing brace.
func (p *Parser) endStmt() {
	if p.tok == _Rbrace {
		return
	}
	p.want(_Semi)
}

// simpleStmt parses an expression statement or assignment.
func (p *Parser) simpleStmt() Stmt {
	pos := p.pos
	x := p.expr()

	if p.tok == _Assign {
		p.next()
		s := &AssignStmt{LHS: x}
		s.pos = pos
		switch x.(type) {
		case *Variable, *Map:
		default:
			p.syntaxErrorAt(pos, "cannot assign to this expression")
		}
		s.RHS = p.expr()
		p.endStmt()
		return s
	}

	s := &ExprStmt{X: x}
	s.pos = pos
	p.endStmt()
	return s
}

// letStmt parses: let $x [: Type] [= Value]
func (p *Parser) letStmt() Stmt {
	s := &LetStmt{}
	s.pos = p.pos

	p.want(_Let)
	if p.tok != _Var {
		p.syntaxError("expected variable after let")
		p.advance()
		return nil
	}
	s.Var = &Variable{Name: p.lit}
	s.Var.pos = p.pos
	p.next()

	if p.got(_Colon) {
		s.Type = p.typeExpr()
	}
	if p.got(_Assign) {
		s.Value = p.expr()
	}

	p.endStmt()
	return s
}

// ifStmt parses: if [comptime] cond { then } [else { else } | else if ...]
func (p *Parser) ifStmt() Stmt {
	s := &IfStmt{}
	s.pos = p.pos

	p.want(_If)
	s.Comptime = p.got(_Comptime)
	s.Cond = p.expr()
	s.Then = p.block()

	if p.got(_Else) {
		if p.tok == _If {
			s.Else = p.ifStmt() // else if
		} else {
			s.Else = p.block() // else
		}
	}

	return s
}

// whileStmt parses: while cond { body }
func (p *Parser) whileStmt() Stmt {
	s := &WhileStmt{}
	s.pos = p.pos

	p.want(_While)
	s.Cond = p.expr()
	s.Body = p.block()
	return s
}

// ----------------------------------------------------------------------------
// Types

// isTypeStart reports whether the current token begins a type.
func (p *Parser) isTypeStart() bool {
	switch p.tok {
	case _Struct, _Typeof:
		return true
	case _Name:
		return types.IsTypeName(p.lit)
	}
	return false
}

// typeExpr parses: (name | struct name | typeof(expr)) {*} [[N]]
func (p *Parser) typeExpr() *TypeExpr {
	t := &TypeExpr{}
	t.pos = p.pos

	switch p.tok {
	case _Struct:
		p.next()
		t.Struct = true
		if p.tok != _Name {
			p.syntaxError("expected struct name")
			t.Name = "_"
			return t
		}
		t.Name = p.lit
		p.next()

	case _Typeof:
		p.next()
		p.want(_Lparen)
		if p.isTypeStart() {
			inner := p.typeExpr()
			p.want(_Rparen)
			return p.typeSuffix(inner)
		}
		t.Typeof = p.expr()
		p.want(_Rparen)

	case _Name:
		if !types.IsTypeName(p.lit) {
			p.syntaxError("unknown type " + p.lit)
		}
		t.Name = p.lit
		p.next()

	default:
		p.syntaxError("expected type")
		t.Name = "_"
		return t
	}

	return p.typeSuffix(t)
}

// typeSuffix parses pointer stars and an array length after a base type.
func (p *Parser) typeSuffix(t *TypeExpr) *TypeExpr {
	for p.got(_Mul) {
		t.Ptr++
	}
	if p.got(_Lbrack) {
		if p.tok != _Literal || p.scanner.LitKind() != IntKind {
			p.syntaxError("expected array length")
		} else {
			n, err := parseUint(p.lit)
			if err != nil || n == 0 || n > maxArrayLen {
				p.syntaxError("invalid array length " + p.lit)
			}
			t.ArrayLen = int64(n)
			p.next()
		}
		p.want(_Rbrack)
	}
	return t
}

// ----------------------------------------------------------------------------
// Expressions

// expr parses an expression, including the conditional operator.
func (p *Parser) expr() Expr {
	x := p.binaryExpr(0)
	if p.tok != _Question {
		return x
	}
	t := &Ternary{Cond: x}
	t.pos = x.Pos()
	p.next()
	t.X = p.expr()
	p.want(_Colon)
	t.Y = p.expr()
	return t
}

// binaryExpr parses a binary expression with minimum precedence prec.
// Implements Pratt parsing / precedence climbing.
func (p *Parser) binaryExpr(prec int) Expr {
	x := p.unaryExpr()

	for {
		// Check if current token is a binary operator with sufficient precedence
		oprec := p.tok.Precedence()
		if oprec <= prec || (p.nodiv && p.tok == _Div) {
			return x
		}

		// Binary expression position starts at the left operand.
		op := &Binary{Op: p.tok, X: x}
		op.pos = x.Pos()

		p.next() // consume operator

		// Parse right operand with higher precedence (left associative)
		op.Y = p.binaryExpr(oprec)
		x = op
	}
}

// unaryExpr parses a unary expression.
func (p *Parser) unaryExpr() Expr {
	switch p.tok {
	case _Sub:
		pos := p.pos
		p.next()
		if p.tok == _Literal && p.scanner.LitKind() == IntKind {
			// fold -N into a negative literal
			lit := p.intLit()
			lit.pos = pos
			lit.Negative = lit.Value != 0
			return p.postfix(lit)
		}
		op := &Unary{Op: _Sub}
		op.pos = pos
		op.X = p.unaryExpr()
		return op

	case _Not, _Tilde, _Mul, _And, _Inc, _Dec:
		op := &Unary{Op: p.tok}
		op.pos = p.pos
		p.next()
		op.X = p.unaryExpr()
		return op

	default:
		return p.primaryExpr()
	}
}

// primaryExpr parses primary expressions and postfix operations.
func (p *Parser) primaryExpr() Expr {
	return p.postfix(p.operand())
}

// postfix parses index, field access and increment suffixes.
func (p *Parser) postfix(x Expr) Expr {
	for {
		switch p.tok {
		case _Lbrack:
			idx := &IndexExpr{X: x}
			idx.pos = x.Pos()
			p.next()
			idx.Index = p.expr()
			p.want(_Rbrack)
			x = idx

		case _Dot, _Arrow:
			x = p.fieldAccess(x)

		case _Inc, _Dec:
			op := &Unary{Op: p.tok, X: x, Postfix: true}
			op.pos = x.Pos()
			p.next()
			x = op

		default:
			return x
		}
	}
}

// fieldAccess parses X.name, X->name and X.N
func (p *Parser) fieldAccess(x Expr) Expr {
	fa := &FieldAccess{X: x, Index: -1, Arrow: p.tok == _Arrow}
	fa.pos = x.Pos()
	p.next()

	switch {
	case p.tok == _Name:
		fa.Field = p.lit
		p.next()
	case p.tok == _Literal && p.scanner.LitKind() == IntKind && !fa.Arrow:
		n, err := strconv.Atoi(p.lit)
		if err != nil {
			p.syntaxError("invalid tuple index " + p.lit)
		}
		fa.Field = p.lit
		fa.Index = n
		p.next()
	default:
		p.syntaxError("expected field name")
		fa.Field = "_"
	}
	return fa
}

// intLit parses the current integer literal token.
func (p *Parser) intLit() *IntLit {
	lit := &IntLit{}
	lit.pos = p.pos
	v, err := parseUint(p.lit)
	if err != nil {
		p.syntaxError("integer literal out of range: " + p.lit)
	}
	lit.Value = v
	p.next()
	return lit
}

// operand parses an operand (the base of primary expressions).
func (p *Parser) operand() Expr {
	switch p.tok {
	case _Name:
		pos, name := p.pos, p.lit
		p.next()
		if p.tok == _Lparen {
			return p.call(pos, name)
		}
		b := &Builtin{Name: name}
		b.pos = pos
		return b

	case _Var:
		v := &Variable{Name: p.lit}
		v.pos = p.pos
		p.next()
		return v

	case _Map:
		return p.mapExpr()

	case _Literal:
		if p.scanner.LitKind() == IntKind {
			return p.intLit()
		}
		lit := &StringLit{Value: p.lit}
		lit.pos = p.pos
		p.next()
		return lit

	case _True, _False:
		lit := &BoolLit{Value: p.tok == _True}
		lit.pos = p.pos
		p.next()
		return lit

	case _Lparen:
		return p.parenExpr()

	case _Sizeof:
		return p.sizeofExpr()

	case _Offsetof:
		return p.offsetofExpr()

	case _Typeinfo:
		ti := &Typeinfo{}
		ti.pos = p.pos
		p.next()
		p.want(_Lparen)
		ti.X = p.expr()
		p.want(_Rparen)
		return ti

	case _Typeof:
		p.syntaxError("typeof can only be used as a type")
		t := p.typeExpr()
		b := &Builtin{Name: "_"}
		b.pos = t.pos
		return b

	default:
		p.syntaxError("expected operand")
		b := &Builtin{Name: "_"} // error recovery
		b.pos = p.pos
		p.advance()
		return b
	}
}

// call parses Func(args...)
func (p *Parser) call(pos Pos, name string) Expr {
	c := &Call{Func: name}
	c.pos = pos

	p.want(_Lparen)
	if p.tok != _Rparen {
		c.Args = p.exprList()
	}
	p.want(_Rparen)
	return c
}

// mapExpr parses @name and @name[k1, k2, ...]
func (p *Parser) mapExpr() Expr {
	m := &Map{Name: p.lit}
	m.pos = p.pos
	p.next()

	if p.tok != _Lbrack {
		return m
	}
	lpos := p.pos
	p.next()
	keys := p.exprList()
	p.want(_Rbrack)

	if len(keys) == 1 {
		m.Key = keys[0]
	} else {
		tup := &TupleLit{Elems: keys}
		tup.pos = lpos
		m.Key = tup
	}
	return m
}

// parenExpr parses a cast, a tuple or record literal, or a parenthesized
// expression.
func (p *Parser) parenExpr() Expr {
	pos := p.pos
	p.want(_Lparen)

	// '/' divides again inside parentheses, even within a predicate
	defer func(nodiv bool) { p.nodiv = nodiv }(p.nodiv)
	p.nodiv = false

	if p.isTypeStart() {
		c := &Cast{}
		c.pos = pos
		c.To = p.typeExpr()
		p.want(_Rparen)
		c.X = p.unaryExpr()
		return c
	}

	first := p.expr()

	// (name = value, ...) is a record literal.
	if b, ok := first.(*Builtin); ok && p.tok == _Assign {
		return p.recordLit(pos, b)
	}

	if !p.got(_Comma) {
		p.want(_Rparen)
		return first
	}

	tup := &TupleLit{Elems: []Expr{first}}
	tup.pos = pos
	for p.tok != _Rparen && p.tok != _EOF {
		tup.Elems = append(tup.Elems, p.expr())
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Rparen)
	return tup
}

// recordLit parses the remainder of (name = value, ...) after the first name.
func (p *Parser) recordLit(pos Pos, first *Builtin) Expr {
	rec := &RecordLit{}
	rec.pos = pos

	name, npos := first.Name, first.pos
	for {
		p.want(_Assign)
		f := &NamedExpr{Name: name, Value: p.expr()}
		f.pos = npos
		rec.Fields = append(rec.Fields, f)

		if !p.got(_Comma) || p.tok == _Rparen {
			break
		}
		if p.tok != _Name {
			p.syntaxError("expected field name")
			break
		}
		name, npos = p.lit, p.pos
		p.next()
	}
	p.want(_Rparen)
	return rec
}

// sizeofExpr parses sizeof(Type) or sizeof(expr)
func (p *Parser) sizeofExpr() Expr {
	s := &Sizeof{}
	s.pos = p.pos
	p.next()
	p.want(_Lparen)
	if p.isTypeStart() {
		s.Of = p.typeExpr()
	} else {
		s.X = p.expr()
	}
	p.want(_Rparen)
	return s
}

// offsetofExpr parses offsetof(Type, field) or offsetof(expr, field)
func (p *Parser) offsetofExpr() Expr {
	o := &Offsetof{}
	o.pos = p.pos
	p.next()
	p.want(_Lparen)
	if p.isTypeStart() {
		o.Of = p.typeExpr()
	} else {
		o.X = p.expr()
	}
	p.want(_Comma)
	switch {
	case p.tok == _Name:
		o.Field = p.lit
		p.next()
	case p.tok == _Literal && p.scanner.LitKind() == IntKind:
		o.Field = p.lit
		p.next()
	default:
		p.syntaxError("expected field name")
	}
	p.want(_Rparen)
	return o
}

// exprList parses a comma-separated list of expressions.
func (p *Parser) exprList() []Expr {
	list := []Expr{p.expr()}
	for p.got(_Comma) {
		list = append(list, p.expr())
	}
	return list
}

// parseUint parses an integer literal. Literals without a radix prefix are
// decimal even with leading zeros.
func parseUint(lit string) (uint64, error) {
	base := 10
	if len(lit) > 1 && lit[0] == '0' && strings.ContainsRune("xXoObB", rune(lit[1])) {
		base = 0
	}
	return strconv.ParseUint(lit, base, 64)
}

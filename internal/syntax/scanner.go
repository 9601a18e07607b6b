package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Scanner performs lexical analysis on probe scripts.
type Scanner struct {
	source // embedded character reader

	// Current token info
	tok    Token   // token type
	lit    string  // token literal (identifier name, number, string content)
	kind   LitKind // literal kind (only valid when tok == _Literal)
	tokPos Pos     // token start position

	// Literal accumulation
	litBuf strings.Builder
}

// NewScanner creates a new Scanner for the given source.
// The errh function is called for each lexical error; if nil, errors are silently ignored.
func NewScanner(filename string, src io.Reader, errh func(pos Pos, msg string)) *Scanner {
	return &Scanner{
		source: *newSource(filename, src, errh),
	}
}

// Next advances to the next token.
func (s *Scanner) Next() {
redo:
	s.skipWhitespace()

	s.tokPos = s.pos()

	switch {
	case s.ch < 0:
		s.tok = _EOF
		s.lit = ""

	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch):
		s.scanNumber()

	case s.ch == '"':
		s.scanString()

	case s.ch == '$':
		s.scanSigil(_Var)

	case s.ch == '@':
		s.scanSigil(_Map)

	case isOperatorStart(s.ch):
		if s.scanOperator() {
			// scanOperator returned true, meaning we skipped a comment
			goto redo
		}

	default:
		s.errorf("unexpected character %q", s.ch)
		s.nextch()
		goto redo
	}
}

// Token returns the current token type.
func (s *Scanner) Token() Token {
	return s.tok
}

// Literal returns the current token's literal value.
func (s *Scanner) Literal() string {
	return s.lit
}

// LitKind returns the current literal's kind (only valid when Token() == _Literal).
func (s *Scanner) LitKind() LitKind {
	return s.kind
}

func (s *Scanner) errorf(format string, args ...interface{}) {
	s.error(fmt.Sprintf(format, args...))
}

// Pos returns the current token's start position.
func (s *Scanner) Pos() Pos {
	return s.tokPos
}

// skipWhitespace skips spaces, tabs and newlines.
func (s *Scanner) skipWhitespace() {
	for isWhitespace(s.ch) {
		s.nextch()
	}
}

// startLit begins accumulating a literal.
func (s *Scanner) startLit() {
	s.litBuf.Reset()
	s.litBuf.WriteRune(s.ch)
}

// continueLit adds the current character to the literal being accumulated.
func (s *Scanner) continueLit() {
	s.litBuf.WriteRune(s.ch)
}

// stopLit ends literal accumulation and returns the accumulated string.
func (s *Scanner) stopLit() string {
	return s.litBuf.String()
}

// scanIdent scans an identifier or keyword.
func (s *Scanner) scanIdent() {
	s.startLit()
	s.nextch()

	for isLetter(s.ch) || isDigit(s.ch) {
		s.continueLit()
		s.nextch()
	}

	s.lit = s.stopLit()

	// Check if it's a keyword
	s.tok = LookupKeyword(s.lit)
}

// scanSigil scans a $variable or @map name. The literal keeps the sigil.
// A bare @ names the anonymous map; a bare $ is an error.
func (s *Scanner) scanSigil(tok Token) {
	s.startLit()
	s.nextch()

	for isLetter(s.ch) || isDigit(s.ch) {
		s.continueLit()
		s.nextch()
	}

	s.lit = s.stopLit()
	s.tok = tok
	if tok == _Var && s.lit == "$" {
		s.error("expected variable name after $")
	}
}

// scanNumber scans an integer literal: decimal, or hex, octal or binary
// behind a 0x, 0o or 0b prefix. Leading zeros are allowed in decimal.
func (s *Scanner) scanNumber() {
	s.litBuf.Reset()
	s.kind = IntKind

	base, name := 10, "decimal"
	if s.ch == '0' {
		s.continueLit()
		s.nextch()
		switch lower(s.ch) {
		case 'x':
			base, name = 16, "hex"
		case 'o':
			base, name = 8, "octal"
		case 'b':
			base, name = 2, "binary"
		}
		if base != 10 {
			s.continueLit()
			s.nextch()
		}
	}

	if base != 10 && digitVal(s.ch) >= base {
		s.errorf("invalid %s digit", name)
	} else {
		for digitVal(s.ch) < base {
			s.continueLit()
			s.nextch()
		}
	}

	switch {
	case isDigit(s.ch):
		s.errorf("invalid %s digit %q", name, s.ch)
	case isLetter(s.ch):
		s.errorf("invalid character %q in integer literal", s.ch)
	}
	for isLetter(s.ch) || isDigit(s.ch) {
		s.nextch()
	}

	s.lit = s.litBuf.String()
	s.tok = _Literal
}

// scanString scans a string literal.
// The resulting literal is the decoded string content (escape sequences are interpreted).
func (s *Scanner) scanString() {
	s.nextch() // skip opening "
	var b strings.Builder

	for {
		switch {
		case s.ch == '"':
			s.nextch()
			s.lit = b.String()
			s.tok = _Literal
			s.kind = StringKind
			return

		case s.ch == '\\':
			if r, ok := s.scanEscape(); ok {
				b.WriteRune(r)
			}

		case s.ch == '\n' || s.ch < 0:
			s.error("string not terminated")
			s.lit = b.String()
			s.tok = _Literal
			s.kind = StringKind
			return

		default:
			b.WriteRune(s.ch)
			s.nextch()
		}
	}
}

// scanEscape scans an escape sequence and returns the decoded rune.
func (s *Scanner) scanEscape() (rune, bool) {
	s.nextch() // skip \

	switch s.ch {
	case 'n':
		s.nextch()
		return '\n', true
	case 't':
		s.nextch()
		return '\t', true
	case 'r':
		s.nextch()
		return '\r', true
	case '\\':
		s.nextch()
		return '\\', true
	case '"':
		s.nextch()
		return '"', true
	case '0':
		s.nextch()
		return 0, true
	case 'x':
		s.nextch()
		return s.scanHexEscape()
	default:
		s.errorf("unknown escape sequence: \\%c", s.ch)
		s.nextch()
		return 0, false
	}
}

// scanHexEscape scans the two digits of a \xNN escape sequence.
func (s *Scanner) scanHexEscape() (rune, bool) {
	var val rune
	for i := 0; i < 2; i++ {
		d := digitVal(s.ch)
		if d >= 16 {
			s.error("invalid hex escape")
			return 0, false
		}
		val = val*16 + rune(d)
		s.nextch()
	}
	return val, true
}

// scanOperator scans an operator or delimiter.
// Returns true if a comment was skipped (caller should rescan).
func (s *Scanner) scanOperator() bool {
	ch := s.ch
	s.nextch()

	switch ch {
	case '+':
		if s.ch == '+' {
			s.nextch()
			s.tok = _Inc
			s.lit = "++"
		} else {
			s.tok = _Add
			s.lit = "+"
		}
	case '-':
		switch s.ch {
		case '-':
			s.nextch()
			s.tok = _Dec
			s.lit = "--"
		case '>':
			s.nextch()
			s.tok = _Arrow
			s.lit = "->"
		default:
			s.tok = _Sub
			s.lit = "-"
		}
	case '*':
		s.tok = _Mul
		s.lit = "*"
	case '/':
		switch s.ch {
		case '/':
			s.skipLineComment()
			return true
		case '*':
			s.skipBlockComment()
			return true
		}
		s.tok = _Div
		s.lit = "/"
	case '%':
		s.tok = _Rem
		s.lit = "%"
	case '&':
		if s.ch == '&' {
			s.nextch()
			s.tok = _AndAnd
			s.lit = "&&"
		} else {
			s.tok = _And
			s.lit = "&"
		}
	case '|':
		if s.ch == '|' {
			s.nextch()
			s.tok = _OrOr
			s.lit = "||"
		} else {
			s.tok = _Or
			s.lit = "|"
		}
	case '^':
		s.tok = _Xor
		s.lit = "^"
	case '~':
		s.tok = _Tilde
		s.lit = "~"
	case '?':
		s.tok = _Question
		s.lit = "?"
	case '<':
		switch s.ch {
		case '=':
			s.nextch()
			s.tok = _Leq
			s.lit = "<="
		case '<':
			s.nextch()
			s.tok = _Shl
			s.lit = "<<"
		default:
			s.tok = _Lss
			s.lit = "<"
		}
	case '>':
		switch s.ch {
		case '=':
			s.nextch()
			s.tok = _Geq
			s.lit = ">="
		case '>':
			s.nextch()
			s.tok = _Shr
			s.lit = ">>"
		default:
			s.tok = _Gtr
			s.lit = ">"
		}
	case '=':
		if s.ch == '=' {
			s.nextch()
			s.tok = _Eql
			s.lit = "=="
		} else {
			s.tok = _Assign
			s.lit = "="
		}
	case '!':
		if s.ch == '=' {
			s.nextch()
			s.tok = _Neq
			s.lit = "!="
		} else {
			s.tok = _Not
			s.lit = "!"
		}
	case ':':
		s.tok = _Colon
		s.lit = ":"
	case '(':
		s.tok = _Lparen
		s.lit = "("
	case ')':
		s.tok = _Rparen
		s.lit = ")"
	case '[':
		s.tok = _Lbrack
		s.lit = "["
	case ']':
		s.tok = _Rbrack
		s.lit = "]"
	case '{':
		s.tok = _Lbrace
		s.lit = "{"
	case '}':
		s.tok = _Rbrace
		s.lit = "}"
	case ',':
		s.tok = _Comma
		s.lit = ","
	case ';':
		s.tok = _Semi
		s.lit = ";"
	case '.':
		s.tok = _Dot
		s.lit = "."
	}

	return false
}

// skipLineComment skips a line comment (from // to end of line).
func (s *Scanner) skipLineComment() {
	// Already consumed the second /
	s.nextch()
	for s.ch != '\n' && s.ch >= 0 {
		s.nextch()
	}
}

// skipBlockComment skips a /* ... */ comment.
func (s *Scanner) skipBlockComment() {
	s.nextch() // skip *
	for s.ch >= 0 {
		if s.ch == '*' {
			s.nextch()
			if s.ch == '/' {
				s.nextch()
				return
			}
			continue
		}
		s.nextch()
	}
	s.error("comment not terminated")
}

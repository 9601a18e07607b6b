// Package syntax implements lexical and syntactic analysis for probe scripts.
package syntax

import "fmt"

// Token represents the type of a lexical token.
type Token uint

const (
	// Special tokens
	_EOF   Token = iota // end of file
	_Error              // lexical error

	// Names and literals
	_Name    // identifier: pid, kprobe, printf
	_Var     // scratch variable: $x
	_Map     // map: @counts, @
	_Literal // literal value (used with LitKind)

	// Operators (ordered by precedence, low to high)
	// Assignment
	_Assign // =

	// Logical operators
	_OrOr   // ||
	_AndAnd // &&

	// Comparison operators
	_Eql // ==
	_Neq // !=
	_Lss // <
	_Leq // <=
	_Gtr // >
	_Geq // >=

	// Arithmetic operators (additive)
	_Add // +
	_Sub // -
	_Or  // |
	_Xor // ^

	// Arithmetic operators (multiplicative)
	_Mul // *
	_Div // /
	_Rem // %
	_And // &
	_Shl // <<
	_Shr // >>

	// Unary operators
	_Not   // !
	_Tilde // ~
	_Inc   // ++
	_Dec   // --

	// Delimiters
	_Lparen   // (
	_Rparen   // )
	_Lbrack   // [
	_Rbrack   // ]
	_Lbrace   // {
	_Rbrace   // }
	_Comma    // ,
	_Semi     // ;
	_Colon    // :
	_Dot      // .
	_Arrow    // ->
	_Question // ?

	// Keywords
	_Break
	_Comptime
	_Continue
	_Else
	_False
	_If
	_Let
	_Offsetof
	_Return
	_Sizeof
	_Struct
	_True
	_Typeinfo
	_Typeof
	_While

	tokenCount
)

// tokenNames maps tokens to their string representation.
var tokenNames = [...]string{
	_EOF:   "EOF",
	_Error: "ERROR",

	_Name:    "NAME",
	_Var:     "VAR",
	_Map:     "MAP",
	_Literal: "LITERAL",

	_Assign: "=",

	_OrOr:   "||",
	_AndAnd: "&&",

	_Eql: "==",
	_Neq: "!=",
	_Lss: "<",
	_Leq: "<=",
	_Gtr: ">",
	_Geq: ">=",

	_Add: "+",
	_Sub: "-",
	_Or:  "|",
	_Xor: "^",

	_Mul: "*",
	_Div: "/",
	_Rem: "%",
	_And: "&",
	_Shl: "<<",
	_Shr: ">>",

	_Not:   "!",
	_Tilde: "~",
	_Inc:   "++",
	_Dec:   "--",

	_Lparen:   "(",
	_Rparen:   ")",
	_Lbrack:   "[",
	_Rbrack:   "]",
	_Lbrace:   "{",
	_Rbrace:   "}",
	_Comma:    ",",
	_Semi:     ";",
	_Colon:    ":",
	_Dot:      ".",
	_Arrow:    "->",
	_Question: "?",

	_Break:    "break",
	_Comptime: "comptime",
	_Continue: "continue",
	_Else:     "else",
	_False:    "false",
	_If:       "if",
	_Let:      "let",
	_Offsetof: "offsetof",
	_Return:   "return",
	_Sizeof:   "sizeof",
	_Struct:   "struct",
	_True:     "true",
	_Typeinfo: "typeinfo",
	_Typeof:   "typeof",
	_While:    "while",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// Precedence returns the operator precedence for binary operators.
// Returns 0 for non-operators.
// Precedence levels (higher = binds tighter):
//
//	1: ||
//	2: &&
//	3: == != < <= > >=
//	4: + - | ^
//	5: * / % & << >>
func (t Token) Precedence() int {
	switch t {
	case _OrOr:
		return 1
	case _AndAnd:
		return 2
	case _Eql, _Neq, _Lss, _Leq, _Gtr, _Geq:
		return 3
	case _Add, _Sub, _Or, _Xor:
		return 4
	case _Mul, _Div, _Rem, _And, _Shl, _Shr:
		return 5
	}
	return 0
}

// IsKeyword reports whether t is a keyword token.
func (t Token) IsKeyword() bool {
	return t >= _Break && t <= _While
}

// IsLiteral reports whether t is a literal token.
func (t Token) IsLiteral() bool {
	return t == _Literal
}

// IsOperator reports whether t is an operator token.
func (t Token) IsOperator() bool {
	return t >= _Assign && t <= _Dec
}

// IsEOF reports whether t is the EOF token.
func (t Token) IsEOF() bool {
	return t == _EOF
}

// IsComparison reports whether t is a comparison operator.
func (t Token) IsComparison() bool {
	return t.Precedence() == 3
}

// IsLogical reports whether t is && or ||.
func (t Token) IsLogical() bool {
	return t == _AndAnd || t == _OrOr
}

// Exported operator tokens for the type resolver.
const (
	OrOr     Token = _OrOr
	AndAnd   Token = _AndAnd
	Eql      Token = _Eql
	Neq      Token = _Neq
	Lss      Token = _Lss
	Leq      Token = _Leq
	Gtr      Token = _Gtr
	Geq      Token = _Geq
	Add      Token = _Add
	Sub      Token = _Sub
	Or       Token = _Or
	Xor      Token = _Xor
	Mul      Token = _Mul
	Div      Token = _Div
	Rem      Token = _Rem
	And      Token = _And
	Shl      Token = _Shl
	Shr      Token = _Shr
	Not      Token = _Not
	Tilde    Token = _Tilde
	Inc      Token = _Inc
	Dec      Token = _Dec
	Break    Token = _Break
	Continue Token = _Continue
	Return   Token = _Return
)

// LitKind represents the kind of a literal token.
type LitKind uint8

const (
	IntKind    LitKind = iota // 123, 0x1F, 0o77, 0b1010
	StringKind                // "hello", "line\n"
)

// litKindNames maps literal kinds to their string representation.
var litKindNames = [...]string{
	IntKind:    "int",
	StringKind: "string",
}

// String returns the string representation of the literal kind.
func (k LitKind) String() string {
	if k <= StringKind {
		return litKindNames[k]
	}
	return fmt.Sprintf("LitKind(%d)", k)
}

// keywords maps keyword strings to their token type.
// Builtins (pid, comm, ...) and function names are scanned as _Name and
// bound by the type resolver.
var keywords = map[string]Token{
	"break":    _Break,
	"comptime": _Comptime,
	"continue": _Continue,
	"else":     _Else,
	"false":    _False,
	"if":       _If,
	"let":      _Let,
	"offsetof": _Offsetof,
	"return":   _Return,
	"sizeof":   _Sizeof,
	"struct":   _Struct,
	"true":     _True,
	"typeinfo": _Typeinfo,
	"typeof":   _Typeof,
	"while":    _While,
}

// LookupKeyword returns the token for the given identifier string.
// If the identifier is a keyword, returns the keyword token.
// Otherwise, returns _Name.
func LookupKeyword(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return _Name
}

package syntax

import (
	"strings"
	"testing"
)

func TestScanTokens(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		tokens []Token
		lits   []string
	}{
		// Identifiers
		{"ident", "foo", []Token{_Name}, []string{"foo"}},
		{"ident_underscore", "_bar", []Token{_Name}, []string{"_bar"}},
		{"ident_mixed", "arg0", []Token{_Name}, []string{"arg0"}},
		{"builtin_pid", "pid", []Token{_Name}, []string{"pid"}},
		{"type_name", "uint32", []Token{_Name}, []string{"uint32"}},

		// Variables and maps keep their sigil
		{"var", "$x", []Token{_Var}, []string{"$x"}},
		{"var_digits", "$x1", []Token{_Var}, []string{"$x1"}},
		{"map", "@counts", []Token{_Map}, []string{"@counts"}},
		{"map_anonymous", "@", []Token{_Map}, []string{"@"}},
		{"map_index", "@m[pid]", []Token{_Map, _Lbrack, _Name, _Rbrack}, []string{"@m", "[", "pid", "]"}},

		// Integer literals
		{"int_dec", "123", []Token{_Literal}, []string{"123"}},
		{"int_zero", "0", []Token{_Literal}, []string{"0"}},
		{"int_hex", "0x1f", []Token{_Literal}, []string{"0x1f"}},
		{"int_oct", "0o77", []Token{_Literal}, []string{"0o77"}},
		{"int_bin", "0b1010", []Token{_Literal}, []string{"0b1010"}},
		{"int_leading_zero", "007", []Token{_Literal}, []string{"007"}},

		// String literals (decoded content)
		{"string_simple", `"hello"`, []Token{_Literal}, []string{"hello"}},
		{"string_empty", `""`, []Token{_Literal}, []string{""}},
		{"string_escape_n", `"a\nb"`, []Token{_Literal}, []string{"a\nb"}},
		{"string_escape_quote", `"a\"b"`, []Token{_Literal}, []string{"a\"b"}},

		// Keywords
		{"kw_if", "if", []Token{_If}, nil},
		{"kw_comptime", "comptime", []Token{_Comptime}, nil},
		{"kw_let", "let", []Token{_Let}, nil},
		{"kw_while", "while", []Token{_While}, nil},
		{"kw_typeinfo", "typeinfo", []Token{_Typeinfo}, nil},
		{"kw_typeof", "typeof", []Token{_Typeof}, nil},
		{"kw_sizeof", "sizeof", []Token{_Sizeof}, nil},
		{"kw_offsetof", "offsetof", []Token{_Offsetof}, nil},
		{"kw_struct", "struct", []Token{_Struct}, nil},
		{"kw_true", "true", []Token{_True}, nil},

		// Operators
		{"op_inc", "++", []Token{_Inc}, []string{"++"}},
		{"op_dec", "--", []Token{_Dec}, []string{"--"}},
		{"op_arrow", "->", []Token{_Arrow}, []string{"->"}},
		{"op_sub_var", "-$x", []Token{_Sub, _Var}, nil},
		{"op_tilde", "~", []Token{_Tilde}, nil},
		{"op_question", "a ? b : c", []Token{_Name, _Question, _Name, _Colon, _Name}, nil},
		{"op_shifts", "<< >>", []Token{_Shl, _Shr}, nil},
		{"op_compare", "== != <= >= < >", []Token{_Eql, _Neq, _Leq, _Geq, _Lss, _Gtr}, nil},
		{"op_logical", "&& || !", []Token{_AndAnd, _OrOr, _Not}, nil},

		// Comments and whitespace
		{"line_comment", "a // comment\nb", []Token{_Name, _Name}, []string{"a", "b"}},
		{"block_comment", "a /* x\ny */ b", []Token{_Name, _Name}, []string{"a", "b"}},
		{"newlines", "a\n\n\tb", []Token{_Name, _Name}, []string{"a", "b"}},

		// Probe header
		{"probe_header", "kprobe:do_sys_open /pid/ {",
			[]Token{_Name, _Colon, _Name, _Div, _Name, _Div, _Lbrace},
			[]string{"kprobe", ":", "do_sys_open", "/", "pid", "/", "{"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner("test", strings.NewReader(tt.src), nil)
			for i, wantTok := range tt.tokens {
				s.Next()
				if s.Token() != wantTok {
					t.Errorf("token %d: got %v, want %v", i, s.Token(), wantTok)
				}
				if tt.lits != nil {
					if s.Literal() != tt.lits[i] {
						t.Errorf("literal %d: got %q, want %q", i, s.Literal(), tt.lits[i])
					}
				}
			}
			s.Next()
			if !s.Token().IsEOF() {
				t.Errorf("expected EOF, got %v %q", s.Token(), s.Literal())
			}
		})
	}
}

func TestScanLitKind(t *testing.T) {
	tests := []struct {
		src  string
		kind LitKind
	}{
		{"123", IntKind},
		{"0x1F", IntKind},
		{"0b1010", IntKind},
		{`"hello"`, StringKind},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			s := NewScanner("test", strings.NewReader(tt.src), nil)
			s.Next()
			if s.Token() != _Literal {
				t.Fatalf("expected _Literal, got %v", s.Token())
			}
			if s.LitKind() != tt.kind {
				t.Errorf("LitKind = %v, want %v", s.LitKind(), tt.kind)
			}
		})
	}
}

func TestScanPositions(t *testing.T) {
	src := "BEGIN {\n  $x = 1;\n}"
	want := []struct {
		tok       Token
		line, col uint32
	}{
		{_Name, 1, 1},
		{_Lbrace, 1, 7},
		{_Var, 2, 3},
		{_Assign, 2, 6},
		{_Literal, 2, 8},
		{_Semi, 2, 9},
		{_Rbrace, 3, 1},
	}

	s := NewScanner("test", strings.NewReader(src), nil)
	for i, w := range want {
		s.Next()
		if s.Token() != w.tok {
			t.Fatalf("token %d: got %v, want %v", i, s.Token(), w.tok)
		}
		if s.Pos().Line() != w.line || s.Pos().Col() != w.col {
			t.Errorf("token %d (%v): pos %d:%d, want %d:%d",
				i, w.tok, s.Pos().Line(), s.Pos().Col(), w.line, w.col)
		}
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bare_dollar", "$", "expected variable name after $"},
		{"digit_letter", "12ab", "invalid character"},
		{"unterminated_string", `"abc`, "string not terminated"},
		{"unterminated_comment", "/* abc", "comment not terminated"},
		{"bad_char", "#", "unexpected character"},
		{"hex_no_digits", "0x;", "invalid hex digit"},
		{"octal_digit", "0o78", "invalid octal digit '8'"},
		{"binary_digit", "0b102", "invalid binary digit '2'"},
		{"bad_hex_escape", `"\xZ1"`, "invalid hex escape"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs []string
			errh := func(_ Pos, msg string) {
				errs = append(errs, msg)
			}
			s := NewScanner("test", strings.NewReader(tt.src), errh)
			for s.Next(); !s.Token().IsEOF(); s.Next() {
			}
			if len(errs) == 0 {
				t.Fatalf("expected error containing %q, got none", tt.want)
			}
			if !strings.Contains(errs[0], tt.want) {
				t.Errorf("error = %q, want substring %q", errs[0], tt.want)
			}
		})
	}
}

package syntax

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// Test helpers

func parseProgram(t *testing.T, src string) *Program {
	t.Helper()
	prog, errs := parseWithErrors(t, src)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	return prog
}

func parseWithErrors(t *testing.T, src string) (*Program, []string) {
	t.Helper()
	var errs []string
	errh := func(pos Pos, msg string) {
		errs = append(errs, pos.String()+": "+msg)
	}
	p := NewParser("test.bt", strings.NewReader(src), errh)
	prog := p.Parse()
	if prog == nil {
		t.Fatal("Parse returned nil")
	}
	return prog, errs
}

// firstStmt parses src as the body of a BEGIN probe and returns its first
// statement.
func firstStmt(t *testing.T, body string) Stmt {
	t.Helper()
	prog := parseProgram(t, "BEGIN { "+body+" }")
	if len(prog.Probes) != 1 || len(prog.Probes[0].Body.Stmts) == 0 {
		t.Fatalf("expected one probe with statements")
	}
	return prog.Probes[0].Body.Stmts[0]
}

// rhs parses "$v = expr;" and returns the right-hand side.
func rhs(t *testing.T, expr string) Expr {
	t.Helper()
	s, ok := firstStmt(t, "$v = "+expr+";").(*AssignStmt)
	if !ok {
		t.Fatalf("expected *AssignStmt")
	}
	return s.RHS
}

// ----------------------------------------------------------------------------
// Probes

func TestParseProbes(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		attach  [][]string // raw attach points per probe
		hasPred []bool
	}{
		{"begin", "BEGIN {}", [][]string{{"BEGIN"}}, []bool{false}},
		{"kprobe", "kprobe:do_sys_open { }", [][]string{{"kprobe:do_sys_open"}}, []bool{false}},
		{"tracepoint", "tracepoint:syscalls:sys_enter_openat {}",
			[][]string{{"tracepoint:syscalls:sys_enter_openat"}}, []bool{false}},
		{"multi_attach", "kprobe:a, kretprobe:b {}", [][]string{{"kprobe:a", "kretprobe:b"}}, []bool{false}},
		{"predicate", "kprobe:f /pid == 1/ {}", [][]string{{"kprobe:f"}}, []bool{true}},
		{"numeric_segment", "interval:s:1 {}", [][]string{{"interval:s:1"}}, []bool{false}},
		{"two_probes", "BEGIN {} END {}", [][]string{{"BEGIN"}, {"END"}}, []bool{false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseProgram(t, tt.src)
			if len(prog.Probes) != len(tt.attach) {
				t.Fatalf("got %d probes, want %d", len(prog.Probes), len(tt.attach))
			}
			for i, pr := range prog.Probes {
				if len(pr.AttachPoints) != len(tt.attach[i]) {
					t.Fatalf("probe %d: got %d attach points, want %d", i, len(pr.AttachPoints), len(tt.attach[i]))
				}
				for j, ap := range pr.AttachPoints {
					if ap.Raw != tt.attach[i][j] {
						t.Errorf("probe %d attach %d = %q, want %q", i, j, ap.Raw, tt.attach[i][j])
					}
				}
				if (pr.Pred != nil) != tt.hasPred[i] {
					t.Errorf("probe %d: has predicate = %v, want %v", i, pr.Pred != nil, tt.hasPred[i])
				}
			}
		})
	}
}

func TestParsePredicateDivision(t *testing.T) {
	// The closing slash ends the predicate; division needs parentheses.
	prog := parseProgram(t, "kprobe:f /(pid / 2) == 1/ { }")
	bin, ok := prog.Probes[0].Pred.(*Binary)
	if !ok || bin.Op != _Eql {
		t.Fatalf("predicate = %T, want == *Binary", prog.Probes[0].Pred)
	}
	if div, ok := bin.X.(*Binary); !ok || div.Op != _Div {
		t.Errorf("left operand = %T, want / *Binary", bin.X)
	}
}

// ----------------------------------------------------------------------------
// Statements

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string // type of the first statement
	}{
		{"assign_var", "$x = 1;", "*syntax.AssignStmt"},
		{"assign_map", "@m[pid] = count();", "*syntax.AssignStmt"},
		{"expr_stmt", `printf("hi\n");`, "*syntax.ExprStmt"},
		{"let", "let $x;", "*syntax.LetStmt"},
		{"let_typed", "let $x: uint32 = 1;", "*syntax.LetStmt"},
		{"if", "if ($x) { }", "*syntax.IfStmt"},
		{"if_else", "if $x { } else { }", "*syntax.IfStmt"},
		{"while", "while ($i < 10) { $i++; }", "*syntax.WhileStmt"},
		{"block", "{ $x = 1; }", "*syntax.Block"},
		{"return", "return;", "*syntax.BranchStmt"},
		{"no_trailing_semi", "$x = 1", "*syntax.AssignStmt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := firstStmt(t, tt.body)
			if got := typeOf(s); got != tt.want {
				t.Errorf("stmt = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeOf(v interface{}) string {
	return fmt.Sprintf("%T", v)
}

func TestParseLet(t *testing.T) {
	s := firstStmt(t, "let $x: struct task_struct * = curtask;").(*LetStmt)
	if s.Var.Name != "$x" {
		t.Errorf("Var = %q, want $x", s.Var.Name)
	}
	if s.Type == nil || !s.Type.Struct || s.Type.Name != "task_struct" || s.Type.Ptr != 1 {
		t.Errorf("Type = %+v, want struct task_struct *", s.Type)
	}
	if b, ok := s.Value.(*Builtin); !ok || b.Name != "curtask" {
		t.Errorf("Value = %T, want curtask", s.Value)
	}
}

func TestParseIfComptime(t *testing.T) {
	s := firstStmt(t, `if comptime (typeinfo($x).base_type == "int") { } else if $y { } else { }`).(*IfStmt)
	if !s.Comptime {
		t.Error("Comptime = false, want true")
	}
	if _, ok := s.Cond.(*Binary); !ok {
		t.Errorf("Cond = %T, want *Binary", s.Cond)
	}
	elif, ok := s.Else.(*IfStmt)
	if !ok {
		t.Fatalf("Else = %T, want *IfStmt", s.Else)
	}
	if elif.Comptime {
		t.Error("else-if should not be comptime")
	}
	if _, ok := elif.Else.(*Block); !ok {
		t.Errorf("final else = %T, want *Block", elif.Else)
	}
}

// ----------------------------------------------------------------------------
// Expressions

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		src      string
		value    uint64
		negative bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"0xff", 255, false},
		{"0b101", 5, false},
		{"010", 10, false},
		{"-1", 1, true},
		{"-0", 0, false},
		{"18446744073709551615", 1<<64 - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			lit, ok := rhs(t, tt.src).(*IntLit)
			if !ok {
				t.Fatalf("got %T, want *IntLit", rhs(t, tt.src))
			}
			if lit.Value != tt.value || lit.Negative != tt.negative {
				t.Errorf("got (%d, %v), want (%d, %v)", lit.Value, lit.Negative, tt.value, tt.negative)
			}
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3)
	bin, ok := rhs(t, "1 + 2 * 3").(*Binary)
	if !ok || bin.Op != _Add {
		t.Fatalf("top = %T, want + *Binary", bin)
	}
	if mul, ok := bin.Y.(*Binary); !ok || mul.Op != _Mul {
		t.Errorf("right = %T, want * *Binary", bin.Y)
	}

	// a || b && c parses as a || (b && c)
	bin = rhs(t, "$a || $b && $c").(*Binary)
	if bin.Op != _OrOr {
		t.Fatalf("top op = %v, want ||", bin.Op)
	}
	if and, ok := bin.Y.(*Binary); !ok || and.Op != _AndAnd {
		t.Errorf("right = %T, want && *Binary", bin.Y)
	}
}

func TestParseTernary(t *testing.T) {
	tern, ok := rhs(t, "$a > 1 ? 2 : 3").(*Ternary)
	if !ok {
		t.Fatalf("got %T, want *Ternary", tern)
	}
	if _, ok := tern.Cond.(*Binary); !ok {
		t.Errorf("Cond = %T, want *Binary", tern.Cond)
	}
}

func TestParseUnary(t *testing.T) {
	tests := []struct {
		src     string
		op      Token
		postfix bool
	}{
		{"-$x", _Sub, false},
		{"!$x", _Not, false},
		{"~$x", _Tilde, false},
		{"*$p", _Mul, false},
		{"&$x", _And, false},
		{"++$x", _Inc, false},
		{"$x++", _Inc, true},
		{"$x--", _Dec, true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			u, ok := rhs(t, tt.src).(*Unary)
			if !ok {
				t.Fatalf("got %T, want *Unary", rhs(t, tt.src))
			}
			if u.Op != tt.op || u.Postfix != tt.postfix {
				t.Errorf("got (%v, %v), want (%v, %v)", u.Op, u.Postfix, tt.op, tt.postfix)
			}
		})
	}
}

func TestParseMaps(t *testing.T) {
	m := rhs(t, "@m").(*Map)
	if m.Name != "@m" || m.Key != nil {
		t.Errorf("scalar map = (%q, %v), want (@m, nil)", m.Name, m.Key)
	}

	m = rhs(t, "@m[pid]").(*Map)
	if b, ok := m.Key.(*Builtin); !ok || b.Name != "pid" {
		t.Errorf("key = %T, want pid", m.Key)
	}

	m = rhs(t, "@m[pid, comm]").(*Map)
	tup, ok := m.Key.(*TupleLit)
	if !ok || len(tup.Elems) != 2 {
		t.Fatalf("multi key = %T, want 2-element *TupleLit", m.Key)
	}

	m = rhs(t, "@[1]").(*Map)
	if m.Name != "@" {
		t.Errorf("anonymous map name = %q, want @", m.Name)
	}
}

func TestParseParens(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(1)", "*syntax.IntLit"},
		{"(1, 2)", "*syntax.TupleLit"},
		{"(1, (2, 3))", "*syntax.TupleLit"},
		{"(a = 1, b = 2)", "*syntax.RecordLit"},
		{"(uint32)1", "*syntax.Cast"},
		{"(struct task_struct *)curtask", "*syntax.Cast"},
		{"(typeof($x))1", "*syntax.Cast"},
		{"(int8[4])$a", "*syntax.Cast"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := typeOf(rhs(t, tt.src)); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseRecordLit(t *testing.T) {
	rec := rhs(t, "(a = 1, b = (2, 3))").(*RecordLit)
	if len(rec.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(rec.Fields))
	}
	if rec.Fields[0].Name != "a" || rec.Fields[1].Name != "b" {
		t.Errorf("field names = %s, %s; want a, b", rec.Fields[0].Name, rec.Fields[1].Name)
	}
	if _, ok := rec.Fields[1].Value.(*TupleLit); !ok {
		t.Errorf("b = %T, want *TupleLit", rec.Fields[1].Value)
	}
}

func TestParseCast(t *testing.T) {
	c := rhs(t, "(int8[4])$a").(*Cast)
	if c.To.Name != "int8" || c.To.ArrayLen != 4 {
		t.Errorf("To = %s, want int8[4]", c.To)
	}
	c = rhs(t, "(typeof($x))1").(*Cast)
	if _, ok := c.To.Typeof.(*Variable); !ok {
		t.Errorf("Typeof = %T, want *Variable", c.To.Typeof)
	}
}

func TestParseFieldAccess(t *testing.T) {
	fa := rhs(t, "curtask->pid").(*FieldAccess)
	if !fa.Arrow || fa.Field != "pid" || fa.Index != -1 {
		t.Errorf("got (%v, %q, %d), want (true, pid, -1)", fa.Arrow, fa.Field, fa.Index)
	}
	fa = rhs(t, "$t.1").(*FieldAccess)
	if fa.Arrow || fa.Index != 1 {
		t.Errorf("got (%v, %d), want (false, 1)", fa.Arrow, fa.Index)
	}
	fa = rhs(t, "typeinfo($x).base_type").(*FieldAccess)
	if _, ok := fa.X.(*Typeinfo); !ok {
		t.Errorf("X = %T, want *Typeinfo", fa.X)
	}
}

func TestParseCalls(t *testing.T) {
	c := rhs(t, "str(arg0, 16)").(*Call)
	if c.Func != "str" || len(c.Args) != 2 {
		t.Errorf("got %s/%d, want str/2", c.Func, len(c.Args))
	}
	c = rhs(t, "count()").(*Call)
	if c.Func != "count" || len(c.Args) != 0 {
		t.Errorf("got %s/%d, want count/0", c.Func, len(c.Args))
	}
}

func TestParseSizeofOffsetof(t *testing.T) {
	s := rhs(t, "sizeof(uint32)").(*Sizeof)
	if s.Of == nil || s.X != nil {
		t.Errorf("sizeof(type): Of = %v, X = %v", s.Of, s.X)
	}
	s = rhs(t, "sizeof($x)").(*Sizeof)
	if s.X == nil || s.Of != nil {
		t.Errorf("sizeof(expr): Of = %v, X = %v", s.Of, s.X)
	}
	o := rhs(t, "offsetof(struct task_struct, comm)").(*Offsetof)
	if o.Of == nil || o.Field != "comm" {
		t.Errorf("offsetof = %+v", o)
	}
}

// ----------------------------------------------------------------------------
// Errors

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing_brace", "BEGIN { $x = 1;", "expected }"},
		{"missing_semi", "BEGIN { $x = 1 $y = 2 }", "expected ;"},
		{"bad_assign", "BEGIN { 1 = 2; }", "cannot assign"},
		{"let_no_var", "BEGIN { let x; }", "expected variable after let"},
		{"bad_attach", "{ }", "expected attach point"},
		{"bad_operand", "BEGIN { $x = ; }", "expected operand"},
		{"typeof_value", "BEGIN { $x = typeof($y); }", "typeof can only be used as a type"},
		{"unknown_type", "BEGIN { let $x: foo; }", "unknown type foo"},
		{"literal_range", "BEGIN { $x = 18446744073709551616; }", "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := parseWithErrors(t, tt.src)
			if len(errs) == 0 {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(errs[0], tt.want) {
				t.Errorf("first error = %q, want substring %q", errs[0], tt.want)
			}
		})
	}
}

func TestParseErrorLimit(t *testing.T) {
	src := "BEGIN {" + strings.Repeat(" 1 = 2;", 20) + " }"
	p := NewParser("test.bt", strings.NewReader(src), nil)
	p.Parse()
	if p.Errors() != maxErrors {
		t.Errorf("Errors() = %d, want %d", p.Errors(), maxErrors)
	}
	if p.FirstError() == nil {
		t.Error("FirstError() = nil")
	}
}

// ----------------------------------------------------------------------------
// Walk, print and JSON

func TestWalkVisitsAllVariables(t *testing.T) {
	prog := parseProgram(t, "BEGIN { $a = 1; if ($a) { $b = ($a, $c); } }")
	var names []string
	Inspect(prog, func(n Node) bool {
		if v, ok := n.(*Variable); ok {
			names = append(names, v.Name)
		}
		return true
	})
	want := "$a $a $b $a $c"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("variables = %q, want %q", got, want)
	}
}

func TestVerify(t *testing.T) {
	prog := parseProgram(t, "kprobe:f /pid/ { @m[pid] = count(); $x = (a = 1, b = 2); }")
	if err := Verify(prog); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	// Sharing a node between two parents is rejected.
	as := prog.Probes[0].Body.Stmts[0].(*AssignStmt)
	prog.Probes[0].Body.Stmts = append(prog.Probes[0].Body.Stmts, &AssignStmt{LHS: as.LHS, RHS: as.RHS})
	err := Verify(prog)
	if err == nil || !strings.Contains(err.Error(), "shared") {
		t.Errorf("Verify = %v, want shared-node error", err)
	}
}

func TestFprintJSON(t *testing.T) {
	prog := parseProgram(t, "BEGIN { $x = 1; }")
	var buf bytes.Buffer
	if err := FprintJSON(&buf, prog); err != nil {
		t.Fatalf("FprintJSON: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out["type"] != "Program" {
		t.Errorf("type = %v, want Program", out["type"])
	}
}

// TestParseGolden parses each testdata/parse_*.bt file and compares the
// printed AST with the .ast.golden file next to it.
func TestParseGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/parse_*.bt")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Skip("no golden inputs")
	}

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			src, err := os.ReadFile(f)
			if err != nil {
				t.Fatal(err)
			}
			p := NewParser(filepath.Base(f), bytes.NewReader(src), nil)
			prog := p.Parse()
			if err := p.FirstError(); err != nil {
				t.Fatalf("parse error: %v", err)
			}

			var buf bytes.Buffer
			Fprint(&buf, prog)
			got := buf.String()

			golden := strings.TrimSuffix(f, ".bt") + ".ast.golden"
			if os.Getenv("UPDATE_GOLDEN") != "" {
				if err := os.WriteFile(golden, []byte(got), 0644); err != nil {
					t.Fatal(err)
				}
				return
			}

			want, err := os.ReadFile(golden)
			if err != nil {
				t.Fatalf("reading golden: %v (run with UPDATE_GOLDEN=1)", err)
			}
			if got != string(want) {
				t.Errorf("AST mismatch for %s\nRun with UPDATE_GOLDEN=1 to update\ngot:\n%s", f, got)
			}
		})
	}
}

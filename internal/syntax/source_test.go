package syntax

import (
	"strings"
	"testing"
)

func TestSourceNewline(t *testing.T) {
	src := newSource("test", strings.NewReader("a\n\tb"), nil)

	want := []struct {
		ch        rune
		line, col uint32
	}{
		{'a', 1, 1},
		{'\n', 1, 2},
		{'\t', 2, 1},
		{'b', 2, 2},
		{eof, 2, 3},
	}
	for i, w := range want {
		if i > 0 {
			src.nextch()
		}
		if src.ch != w.ch || src.line != w.line || src.col != w.col {
			t.Errorf("step %d: got ch=%q pos=%d:%d, want ch=%q pos=%d:%d",
				i, src.ch, src.line, src.col, w.ch, w.line, w.col)
		}
	}
}

func TestSourceUTF8(t *testing.T) {
	src := newSource("test", strings.NewReader("a中b"), nil)

	src.nextch()
	if src.ch != '中' || src.col != 2 {
		t.Errorf("got ch=%q col=%d, want '中' col=2", src.ch, src.col)
	}
	src.nextch()
	if src.ch != 'b' || src.col != 3 {
		t.Errorf("got ch=%q col=%d, want 'b' col=3", src.ch, src.col)
	}
}

func TestSourceEmpty(t *testing.T) {
	src := newSource("test", strings.NewReader(""), nil)
	if src.ch != eof || src.col != 1 {
		t.Errorf("ch = %d col = %d, want eof at col 1", src.ch, src.col)
	}
}

func TestSourceCRLF(t *testing.T) {
	src := newSource("test", strings.NewReader("a\r\nb\rc"), nil)

	want := []struct {
		ch        rune
		line, col uint32
	}{
		{'a', 1, 1},
		{'\n', 1, 2},
		{'b', 2, 1},
		{'\r', 2, 2},
		{'c', 2, 3},
		{eof, 2, 4},
	}
	for i, w := range want {
		if i > 0 {
			src.nextch()
		}
		if src.ch != w.ch || src.pos() != NewPos("test", w.line, w.col) {
			t.Errorf("step %d: got ch=%q pos=%s, want ch=%q pos=%d:%d",
				i, src.ch, src.pos(), w.ch, w.line, w.col)
		}
	}
}

func TestSourceBOM(t *testing.T) {
	var msgs []string
	errh := func(_ Pos, msg string) {
		msgs = append(msgs, msg)
	}

	src := newSource("test", strings.NewReader("\uFEFFab"), errh)
	if src.ch != 'a' || src.col != 1 {
		t.Errorf("got ch=%q col=%d, want 'a' col=1", src.ch, src.col)
	}
	if len(msgs) != 0 {
		t.Errorf("errors = %q, want none", msgs)
	}

	src = newSource("test", strings.NewReader("a\uFEFF"), errh)
	src.nextch()
	if len(msgs) != 1 || msgs[0] != "invalid byte order mark" {
		t.Errorf("errors = %q, want one byte order mark error", msgs)
	}
}

func TestSourceError(t *testing.T) {
	var got []string
	errh := func(pos Pos, msg string) {
		got = append(got, pos.String()+": "+msg)
	}

	src := newSource("test.bt", strings.NewReader("ab"), errh)
	src.nextch()
	src.error("boom")

	if len(got) != 1 || got[0] != "test.bt:1:2: boom" {
		t.Errorf("errors = %q, want [\"test.bt:1:2: boom\"]", got)
	}
}

func TestSourceInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		col  uint32
	}{
		{"utf8", "a\xffb", "invalid UTF-8 encoding", 2},
		{"nul", "a\x00b", "invalid NUL character", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msgs []string
			var at Pos
			errh := func(pos Pos, msg string) {
				msgs = append(msgs, msg)
				at = pos
			}

			src := newSource("test", strings.NewReader(tt.src), errh)
			src.nextch()
			if len(msgs) != 1 || msgs[0] != tt.want {
				t.Fatalf("errors = %q, want [%q]", msgs, tt.want)
			}
			if at.Col() != tt.col {
				t.Errorf("error column = %d, want %d", at.Col(), tt.col)
			}
			src.nextch()
			if src.ch != 'b' {
				t.Errorf("ch = %q after invalid input, want 'b'", src.ch)
			}
		})
	}
}

func TestDigitVal(t *testing.T) {
	tests := []struct {
		r    rune
		want int
	}{
		{'0', 0}, {'7', 7}, {'9', 9},
		{'a', 10}, {'F', 15},
		{'g', 16}, {'_', 16}, {eof, 16},
	}
	for _, tt := range tests {
		if got := digitVal(tt.r); got != tt.want {
			t.Errorf("digitVal(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestCharClasses(t *testing.T) {
	tests := []struct {
		name string
		fn   func(rune) bool
		yes  string
		no   string
	}{
		{"isLetter", isLetter, "azAZ_", "09$@[`{ \n"},
		{"isDigit", isDigit, "0189", "aZ_ "},
		{"isWhitespace", isWhitespace, " \t\r\n", "a0;"},
		{"isOperatorStart", isOperatorStart, "+-*/%&|^<>=!~?:()[]{},;.", "$@\"a0 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, r := range tt.yes {
				if !tt.fn(r) {
					t.Errorf("%s(%q) = false, want true", tt.name, r)
				}
			}
			for _, r := range tt.no {
				if tt.fn(r) {
					t.Errorf("%s(%q) = true, want false", tt.name, r)
				}
			}
		})
	}
}

package syntax

import (
	"io"
	"unicode/utf8"
)

const (
	eof = -1     // ch past the end of the input
	bom = 0xFEFF // byte order mark, skipped at the start of a file
)

// source hands out a script one rune at a time. A CRLF pair is read as a
// single '\n' positioned at the '\r', so Windows line endings count lines
// the same way Unix ones do. Columns count runes from 1.
type source struct {
	filename string
	buf      []byte
	next     int // offset just past ch

	ch        rune   // current rune, or eof
	line, col uint32 // position of ch

	errh func(pos Pos, msg string)
}

// newSource reads all of src and positions the reader on its first rune.
// A nil errh discards errors.
func newSource(filename string, src io.Reader, errh func(pos Pos, msg string)) *source {
	s := &source{filename: filename, line: 1, errh: errh}

	buf, err := io.ReadAll(src)
	if err != nil {
		s.ch, s.col = eof, 1
		s.error("error reading source file: " + err.Error())
		return s
	}
	s.buf = buf

	s.nextch()
	if s.ch == bom {
		s.col = 0
		s.nextch()
	}
	return s
}

// nextch moves to the next rune. The rune after a newline starts the next
// line; at the end of the input ch is eof and col points one past the last
// rune.
func (s *source) nextch() {
	if s.ch == '\n' {
		s.line, s.col = s.line+1, 1
	} else {
		s.col++
	}

	if s.next >= len(s.buf) {
		s.ch = eof
		return
	}

	r, w := rune(s.buf[s.next]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.buf[s.next:])
	}
	first := s.next == 0
	s.next += w

	switch {
	case r == '\r' && s.next < len(s.buf) && s.buf[s.next] == '\n':
		s.next++
		r = '\n'
	case r == 0:
		s.error("invalid NUL character")
	case r == utf8.RuneError && w == 1:
		s.error("invalid UTF-8 encoding")
	case r == bom && !first:
		s.error("invalid byte order mark")
	}
	s.ch = r
}

// pos returns the position of ch.
func (s *source) pos() Pos {
	return NewPos(s.filename, s.line, s.col)
}

func (s *source) error(msg string) {
	if s.errh != nil {
		s.errh(s.pos(), msg)
	}
}

func isLetter(r rune) bool {
	return 'a' <= lower(r) && lower(r) <= 'z' || r == '_'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// digitVal returns the value of r as a hex digit, or 16 if r is not one.
func digitVal(r rune) int {
	switch {
	case isDigit(r):
		return int(r - '0')
	case 'a' <= lower(r) && lower(r) <= 'f':
		return int(lower(r) - 'a' + 10)
	}
	return 16
}

// lower maps ASCII upper case letters to lower case. Other runes may
// change too, so only compare the result against lower case letters.
func lower(r rune) rune {
	return ('a' - 'A') | r
}

// isWhitespace reports whether r separates tokens. Statements end with an
// explicit ';', so a newline is ordinary whitespace.
func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// isOperatorStart reports whether r can begin an operator or delimiter.
func isOperatorStart(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '%', '&', '|', '^', '<', '>', '=', '!', '~', '?', ':',
		'(', ')', '[', ']', '{', '}', ',', ';', '.':
		return true
	}
	return false
}

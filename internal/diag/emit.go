package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/exp/slices"
)

// ColorMode selects whether Emit styles its output.
type ColorMode uint8

const (
	ColorAuto   ColorMode = iota // style only when writing to a terminal
	ColorAlways                  // always emit ANSI styling
	ColorNever                   // plain text
)

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	}
	return "auto"
}

type styles struct {
	err, warn, hint, note, pos, caret lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		err:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warn:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		hint:  r.NewStyle().Foreground(lipgloss.Color("14")),
		note:  r.NewStyle().Faint(true),
		pos:   r.NewStyle().Bold(true),
		caret: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	}
}

// Emit writes every diagnostic to w, all errors before any warnings.
// Styling is used only if w is a terminal.
func (ds *Diagnostics) Emit(w io.Writer) error {
	return ds.EmitColor(w, ColorAuto)
}

// EmitColor is like Emit with an explicit color mode.
func (ds *Diagnostics) EmitColor(w io.Writer, mode ColorMode) error {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	st := newStyles(r)

	// Stable: recording order is kept within a severity.
	ordered := slices.Clone(ds.list)
	slices.SortStableFunc(ordered, func(a, b *Diagnostic) int {
		return int(a.Severity) - int(b.Severity)
	})

	var b strings.Builder
	for _, d := range ordered {
		ds.render(&b, d, st)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (ds *Diagnostics) render(b *strings.Builder, d *Diagnostic, st styles) {
	label := st.err.Render("error")
	if d.Severity == Warning {
		label = st.warn.Render("warning")
	}
	if d.Code != CodeNone {
		label += "[" + string(d.Code) + "]"
	}
	fmt.Fprintf(b, "%s: %s: %s\n", st.pos.Render(d.Pos.String()), label, d.Message())

	ds.snippet(b, d, st)

	for _, h := range d.Hints {
		fmt.Fprintf(b, "  %s %s\n", st.hint.Render("hint:"), h)
	}
	for _, c := range d.Contexts {
		fmt.Fprintf(b, "  %s\n", st.note.Render("note: expanded from "+c.String()))
	}
}

// snippet prints the source line of d with a caret under its column.
func (ds *Diagnostics) snippet(b *strings.Builder, d *Diagnostic, st styles) {
	if !d.Pos.IsValid() {
		return
	}
	lines, ok := ds.sources[d.Pos.Filename()]
	if !ok || int(d.Pos.Line()) > len(lines) {
		return
	}
	line := strings.TrimRight(lines[d.Pos.Line()-1], "\r")

	// Columns count runes. Keep tabs so the caret lines up with the source.
	runes := []rune(line)
	col := int(d.Pos.Col()) - 1
	if col < 0 {
		col = 0
	} else if col > len(runes) {
		col = len(runes)
	}
	pad := runes[:col]
	for i, c := range pad {
		if c != '\t' {
			pad[i] = ' '
		}
	}
	fmt.Fprintf(b, "  %s\n  %s%s\n", line, string(pad), st.caret.Render("^"))
}

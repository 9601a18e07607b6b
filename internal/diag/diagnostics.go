// Package diag collects located compiler diagnostics and renders them.
//
// A Diagnostics value is an append-only list owned by one compilation.
// Passes add entries through AddError and AddWarning and inspect Ok to
// decide whether to continue; nothing is printed until Emit.
package diag

import (
	"fmt"
	"strings"

	"github.com/you-not-fish/probec/internal/syntax"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Code is the machine-readable category of a diagnostic.
type Code string

const (
	CodeNone                 Code = ""
	CodeTypeMismatch         Code = "type-mismatch"
	CodeUnresolvedType       Code = "unresolved-type"
	CodeUnresolvableComptime Code = "unresolvable-comptime"
	CodeExternalType         Code = "external-type"
	CodeSemantic             Code = "semantic"
	CodeSyntax               Code = "syntax"
)

// Diagnostic is a single located error or warning. The message is built
// incrementally through Printf and Write.
type Diagnostic struct {
	Severity Severity
	Pos      syntax.Pos
	Code     Code
	Hints    []string
	Contexts []syntax.Pos // expansion sites, outermost last

	msg strings.Builder
}

// Write appends p to the message.
func (d *Diagnostic) Write(p []byte) (int, error) {
	return d.msg.Write(p)
}

// Printf appends a formatted string to the message.
func (d *Diagnostic) Printf(format string, args ...interface{}) *Diagnostic {
	fmt.Fprintf(&d.msg, format, args...)
	return d
}

// Hint attaches a suggestion rendered below the message.
func (d *Diagnostic) Hint(format string, args ...interface{}) *Diagnostic {
	d.Hints = append(d.Hints, fmt.Sprintf(format, args...))
	return d
}

// Context records a location the diagnostic was expanded from.
func (d *Diagnostic) Context(pos syntax.Pos) *Diagnostic {
	d.Contexts = append(d.Contexts, pos)
	return d
}

// WithCode sets the diagnostic category.
func (d *Diagnostic) WithCode(code Code) *Diagnostic {
	d.Code = code
	return d
}

// Message returns the message text.
func (d *Diagnostic) Message() string {
	return d.msg.String()
}

// String formats the diagnostic on one line: "pos: error: msg".
func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message())
}

// Diagnostics is an ordered collection of diagnostics.
// The zero value is ready to use.
type Diagnostics struct {
	list    []*Diagnostic
	sources map[string][]string // filename -> lines, for snippets
}

// New returns an empty Diagnostics.
func New() *Diagnostics {
	return &Diagnostics{}
}

func (ds *Diagnostics) add(sev Severity, pos syntax.Pos) *Diagnostic {
	d := &Diagnostic{Severity: sev, Pos: pos}
	ds.list = append(ds.list, d)
	return d
}

// AddError records an error at pos and returns it for the message to be
// written.
func (ds *Diagnostics) AddError(pos syntax.Pos) *Diagnostic {
	return ds.add(Error, pos)
}

// AddWarning records a warning at pos.
func (ds *Diagnostics) AddWarning(pos syntax.Pos) *Diagnostic {
	return ds.add(Warning, pos)
}

// Ok reports whether no error has been recorded.
func (ds *Diagnostics) Ok() bool {
	for _, d := range ds.list {
		if d.Severity == Error {
			return false
		}
	}
	return true
}

// Len returns the number of diagnostics of either severity.
func (ds *Diagnostics) Len() int {
	return len(ds.list)
}

// All returns every diagnostic in the order recorded.
func (ds *Diagnostics) All() []*Diagnostic {
	return ds.list
}

// Errors returns the error diagnostics in the order recorded.
func (ds *Diagnostics) Errors() []*Diagnostic {
	return ds.filter(Error)
}

// Warnings returns the warning diagnostics in the order recorded.
func (ds *Diagnostics) Warnings() []*Diagnostic {
	return ds.filter(Warning)
}

func (ds *Diagnostics) filter(sev Severity) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range ds.list {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Merge moves every diagnostic of other into ds, leaving other empty.
// Registered sources are moved as well.
func (ds *Diagnostics) Merge(other *Diagnostics) {
	if other == nil || other == ds {
		return
	}
	ds.list = append(ds.list, other.list...)
	for name, lines := range other.sources {
		if _, ok := ds.sources[name]; !ok {
			ds.setSource(name, lines)
		}
	}
	other.list = nil
	other.sources = nil
}

// PromoteWarnings turns every warning into an error.
func (ds *Diagnostics) PromoteWarnings() {
	for _, d := range ds.list {
		d.Severity = Error
	}
}

// AddSource registers the text of filename so that Emit can print source
// snippets for diagnostics located in it.
func (ds *Diagnostics) AddSource(filename, text string) {
	ds.setSource(filename, strings.Split(text, "\n"))
}

func (ds *Diagnostics) setSource(filename string, lines []string) {
	if ds.sources == nil {
		ds.sources = make(map[string][]string)
	}
	ds.sources[filename] = lines
}

// Err returns an error summarising the error diagnostics, or nil if Ok.
func (ds *Diagnostics) Err() error {
	if errs := ds.Errors(); len(errs) > 0 {
		return &ListError{Diags: errs}
	}
	return nil
}

// ListError is the error form of a failed Diagnostics.
type ListError struct {
	Diags []*Diagnostic
}

func (e *ListError) Error() string {
	first := e.Diags[0].Pos.String() + ": " + e.Diags[0].Message()
	if len(e.Diags) == 1 {
		return first
	}
	return fmt.Sprintf("%s (and %d more errors)", first, len(e.Diags)-1)
}

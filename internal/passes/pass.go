// Package passes runs the ordered pipeline of AST passes.
//
// Passes communicate through a blackboard: a store keyed by Go type in which
// each pass publishes at most one output value and reads the outputs of
// earlier passes. Wiring is checked when passes are added, so a pipeline
// that would read a missing value fails before any pass runs.
package passes

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/syntax"
)

// Key names a blackboard entry by the Go type stored under it.
type Key struct {
	t reflect.Type
}

// KeyOf returns the key for values of type T.
func KeyOf[T any]() Key {
	return Key{reflect.TypeOf((*T)(nil)).Elem()}
}

// Need declares that a pass reads a T from the blackboard.
func Need[T any]() Key {
	return KeyOf[T]()
}

// IsZero reports whether k names no type.
func (k Key) IsZero() bool {
	return k.t == nil
}

func (k Key) String() string {
	if k.t == nil {
		return "<none>"
	}
	return k.t.String()
}

// Pass describes a single AST pass.
type Pass struct {
	Name   string
	Inputs []Key
	Output Key // zero if the pass publishes nothing
	Fn     func(ctx *Context) (any, error)
}

// New returns a pass that publishes a value of type Out.
func New[Out any](name string, fn func(ctx *Context) (Out, error), inputs ...Key) Pass {
	return Pass{
		Name:   name,
		Inputs: inputs,
		Output: KeyOf[Out](),
		Fn: func(ctx *Context) (any, error) {
			return fn(ctx)
		},
	}
}

// NewVoid returns a pass that only transforms the program or reports
// diagnostics.
func NewVoid(name string, fn func(ctx *Context) error, inputs ...Key) Pass {
	return Pass{
		Name:   name,
		Inputs: inputs,
		Fn: func(ctx *Context) (any, error) {
			return nil, fn(ctx)
		},
	}
}

// Context is the state shared by the passes of one run.
type Context struct {
	Program *syntax.Program
	Diags   *diag.Diagnostics
	Logger  *zap.Logger

	board map[Key]any
}

// Get returns the blackboard value of type T. It panics with a
// *WiringError if no pass or seed provided one.
func Get[T any](ctx *Context) T {
	v, ok := Lookup[T](ctx)
	if !ok {
		panic(&WiringError{Key: KeyOf[T](), Reason: "not on the blackboard"})
	}
	return v
}

// Lookup returns the blackboard value of type T, if present.
func Lookup[T any](ctx *Context) (T, bool) {
	v, ok := ctx.board[KeyOf[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	t, _ := v.(T) // nil interface values
	return t, true
}

// WiringError reports a pipeline whose passes cannot be connected.
type WiringError struct {
	Pass   string
	Key    Key
	Reason string
}

func (e *WiringError) Error() string {
	if e.Pass == "" {
		return fmt.Sprintf("pass wiring: %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("pass wiring: %s: %s: %s", e.Pass, e.Key, e.Reason)
}

// Config controls pass execution behavior.
type Config struct {
	DumpBefore string      // dump the AST before this pass ("*" for all)
	DumpAfter  string      // dump the AST after this pass ("*" for all)
	Dump       io.Writer   // dump destination; os.Stderr if nil
	Verify     bool        // verify the AST before/after each pass
	Logger     *zap.Logger // nil means no logging
}

// Manager holds an ordered, validated list of passes.
type Manager struct {
	cfg    Config
	passes []Pass
	seeds  map[Key]any
	avail  map[Key]string // key -> producing pass ("" for seeds)
}

// NewManager returns an empty Manager.
func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Dump == nil {
		cfg.Dump = os.Stderr
	}
	return &Manager{
		cfg:   cfg,
		seeds: make(map[Key]any),
		avail: make(map[Key]string),
	}
}

// Seed places v on the blackboard before any pass runs.
func Seed[T any](pm *Manager, v T) {
	k := KeyOf[T]()
	if _, dup := pm.avail[k]; dup {
		panic(&WiringError{Key: k, Reason: "already provided"})
	}
	pm.seeds[k] = v
	pm.avail[k] = ""
}

// Add appends p to the pipeline. It panics with a *WiringError if one of
// p's inputs is neither seeded nor produced by an earlier pass, or if p's
// output is already provided.
func (pm *Manager) Add(p Pass) *Manager {
	for _, in := range p.Inputs {
		if _, ok := pm.avail[in]; !ok {
			panic(&WiringError{Pass: p.Name, Key: in, Reason: "input not produced by an earlier pass"})
		}
	}
	if !p.Output.IsZero() {
		if by, dup := pm.avail[p.Output]; dup {
			reason := "output already seeded"
			if by != "" {
				reason = "output already produced by " + by
			}
			panic(&WiringError{Pass: p.Name, Key: p.Output, Reason: reason})
		}
		pm.avail[p.Output] = p.Name
	}
	pm.passes = append(pm.passes, p)
	return pm
}

// Passes returns the pass names in execution order.
func (pm *Manager) Passes() []string {
	names := make([]string, len(pm.passes))
	for i, p := range pm.passes {
		names[i] = p.Name
	}
	return names
}

// Run executes the passes on prog in order. Diagnostics are recorded in
// diags; they do not stop the run. The first fatal error does, and is
// returned wrapped with the pass name.
func (pm *Manager) Run(prog *syntax.Program, diags *diag.Diagnostics) (*Context, error) {
	if diags == nil {
		diags = diag.New()
	}
	ctx := &Context{
		Program: prog,
		Diags:   diags,
		Logger:  pm.cfg.Logger,
		board:   make(map[Key]any, len(pm.seeds)+len(pm.passes)),
	}
	for k, v := range pm.seeds {
		ctx.board[k] = v
	}

	log := pm.cfg.Logger
	for _, p := range pm.passes {
		pm.dump(pm.cfg.DumpBefore, "before", p.Name, ctx.Program)

		if pm.cfg.Verify {
			if err := syntax.Verify(ctx.Program); err != nil {
				return ctx, fmt.Errorf("verify before %s: %w", p.Name, err)
			}
		}

		log.Debug("pass start", zap.String("pass", p.Name))
		start := time.Now()

		out, err := p.Fn(ctx)
		if err != nil {
			log.Debug("pass failed", zap.String("pass", p.Name), zap.Error(err))
			return ctx, fmt.Errorf("%s: %w", p.Name, err)
		}
		if !p.Output.IsZero() {
			ctx.board[p.Output] = out
		}

		log.Debug("pass done",
			zap.String("pass", p.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("diagnostics", diags.Len()),
			zap.Bool("ok", diags.Ok()))

		if pm.cfg.Verify {
			if err := syntax.Verify(ctx.Program); err != nil {
				return ctx, fmt.Errorf("verify after %s: %w", p.Name, err)
			}
		}

		pm.dump(pm.cfg.DumpAfter, "after", p.Name, ctx.Program)
	}
	return ctx, nil
}

func (pm *Manager) dump(pattern, when, name string, prog *syntax.Program) {
	if !shouldDump(pattern, name) {
		return
	}
	fmt.Fprintf(pm.cfg.Dump, "--- %s %s ---\n", when, name)
	syntax.Fprint(pm.cfg.Dump, prog)
	fmt.Fprintln(pm.cfg.Dump)
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

// Package compiler assembles the probec front end and typing passes into
// a single Compile call.
package compiler

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/you-not-fish/probec/internal/btf"
	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/passes"
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types2"
)

// Options controls a compilation.
type Options struct {
	MaxIterations    int          // resolver iteration limit; 0 for the default
	Oracle           btf.Registry // kernel struct lookup; nil for none
	WarningsAsErrors bool

	Passes passes.Config // dumps and verification
	Logger *zap.Logger   // nil means no logging
}

// Result is the outcome of a compilation. Types is nil when parsing
// failed.
type Result struct {
	Program *syntax.Program
	Maps    *passes.MapInfo
	Types   *types2.ResolvedTypes
	Diags   *diag.Diagnostics
}

// Ok reports whether the compilation produced no errors.
func (r *Result) Ok() bool {
	return r.Diags.Ok()
}

// ResolveTypes returns the pass that resolves the program's types with
// the *types2.Config found on the blackboard. After earlier errors it
// publishes an empty result instead.
func ResolveTypes() passes.Pass {
	return passes.New("resolve-types", func(ctx *passes.Context) (*types2.ResolvedTypes, error) {
		if !ctx.Diags.Ok() {
			return types2.NewResolvedTypes(), nil
		}
		conf := passes.Get[*types2.Config](ctx)
		return types2.Resolve(ctx.Program, ctx.Diags, conf)
	}, passes.Need[*passes.MapInfo](), passes.Need[*types2.Config]())
}

// ApplyTypes returns the pass that writes resolved types onto the AST.
// Nothing is applied when resolution was skipped.
func ApplyTypes() passes.Pass {
	return passes.NewVoid("apply-types", func(ctx *passes.Context) error {
		rt := passes.Get[*types2.ResolvedTypes](ctx)
		if rt.Iterations == 0 {
			return nil
		}
		types2.Apply(ctx.Program, rt, ctx.Diags)
		return nil
	}, passes.Need[*types2.ResolvedTypes]())
}

// Pipeline returns the pass manager for the typing passes:
// map-sugar, resolve-types, apply-types.
func Pipeline(opts Options) *passes.Manager {
	cfg := opts.Passes
	if cfg.Logger == nil {
		cfg.Logger = opts.Logger
	}
	pm := passes.NewManager(cfg)
	passes.Seed(pm, &types2.Config{
		MaxIterations: opts.MaxIterations,
		Oracle:        opts.Oracle,
		Logger:        opts.Logger,
	})
	pm.Add(passes.MapSugar()).
		Add(ResolveTypes()).
		Add(ApplyTypes())
	return pm
}

// Compile parses src and runs the typing pipeline over it. Problems in
// the program are reported in Result.Diags; the error is reserved for
// failures of the compiler itself.
func Compile(filename, src string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	diags := diag.New()
	diags.AddSource(filename, src)
	res := &Result{Diags: diags}

	errh := func(pos syntax.Pos, msg string) {
		diags.AddError(pos).WithCode(diag.CodeSyntax).Printf("%s", msg)
	}
	prog, _ := syntax.Parse(filename, src, errh)
	res.Program = prog
	if !diags.Ok() {
		log.Debug("parse failed", zap.String("file", filename), zap.Int("errors", len(diags.Errors())))
		return res, nil
	}

	ctx, err := Pipeline(opts).Run(prog, diags)
	if err != nil {
		return nil, err
	}
	res.Maps = passes.Get[*passes.MapInfo](ctx)
	res.Types = passes.Get[*types2.ResolvedTypes](ctx)

	if opts.WarningsAsErrors {
		diags.PromoteWarnings()
	}
	log.Debug("compiled",
		zap.String("file", filename),
		zap.Int("probes", len(prog.Probes)),
		zap.Int("iterations", res.Types.Iterations),
		zap.Int("diagnostics", diags.Len()))
	return res, nil
}

// CompileFile reads and compiles the file at path.
func CompileFile(path string, opts Options) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return Compile(path, string(src), opts)
}

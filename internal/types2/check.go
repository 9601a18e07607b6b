package types2

import (
	"go.uber.org/zap"

	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types"
)

// resolver holds the state of one Resolve call.
type resolver struct {
	conf   *Config
	prog   *syntax.Program
	rt     *ResolvedTypes
	sizes  *types.Sizes
	logger *zap.Logger

	// State kept across iterations
	locks   map[TypeVar]lockInfo
	structs map[string]structResult // oracle cache

	// State reset at the start of each iteration
	diags    *diag.Diagnostics
	changes  int
	comptime []*syntax.IfStmt // comptime ifs visited

	// Traversal context
	probe     *syntax.Probe
	scopes    []*scope
	loopDepth int
}

// lockInfo records why and where a slot was locked.
type lockInfo struct {
	pos syntax.Pos
	by  string
}

type structResult struct {
	rec *types.Record
	err error
}

// scope holds the let declarations of one block.
type scope struct {
	owner syntax.Node
	names map[string]bool
}

func newResolver(prog *syntax.Program, conf *Config) *resolver {
	r := &resolver{
		conf:    conf,
		prog:    prog,
		rt:      NewResolvedTypes(),
		sizes:   conf.Sizes,
		logger:  conf.Logger,
		locks:   make(map[TypeVar]lockInfo),
		structs: make(map[string]structResult),
		diags:   diag.New(),
	}
	if r.sizes == nil {
		r.sizes = types.DefaultSizes
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// run walks the program until a walk changes no slot, lock or comptime
// decision.
func (r *resolver) run() error {
	limit := r.conf.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}

	for {
		if r.rt.Iterations >= limit {
			return &IterationLimitError{Max: limit}
		}
		r.rt.Iterations++
		r.diags = diag.New()
		r.changes = 0
		r.comptime = r.comptime[:0]

		r.program()

		r.logger.Debug("resolve iteration",
			zap.Int("iteration", r.rt.Iterations),
			zap.Int("changes", r.changes),
			zap.Int("slots", len(r.rt.Types)))
		if r.changes == 0 {
			break
		}
	}

	for _, s := range r.comptime {
		if _, ok := r.rt.Comptime[s]; !ok {
			r.diags.AddError(s.Cond.Pos()).WithCode(diag.CodeUnresolvableComptime).
				Printf("could not evaluate compile-time condition").
				Hint("the condition must only depend on literals and resolved types")
		}
	}
	return nil
}

func (r *resolver) program() {
	for _, p := range r.prog.Probes {
		r.probe = p
		r.scopes = r.scopes[:0]
		r.loopDepth = 0
		if p.Pred != nil {
			r.expr(p.Pred)
		}
		if p.Body != nil {
			r.block(p.Body)
		}
	}
	r.probe = nil
}

// ----------------------------------------------------------------------------
// Slots

// record sets the type of expression e. Node slots follow the current
// walk, so they are overwritten rather than promoted.
func (r *resolver) record(e syntax.Expr, t types.Type) types.Type {
	if types.IsNone(t) {
		return types.None
	}
	v := NodeVar(e)
	if old, ok := r.rt.Types[v]; !ok || !types.Identical(old, t) {
		r.rt.Types[v] = t
		r.changes++
	}
	return t
}

// assign widens slot v to hold t, reporting a type mismatch at pos if
// no common type exists or v is locked to a different type.
func (r *resolver) assign(pos syntax.Pos, v TypeVar, t types.Type) {
	if types.IsNone(t) {
		return
	}
	old, ok := r.rt.Types[v]
	if !ok || types.IsNone(old) {
		r.rt.Types[v] = t
		r.changes++
		return
	}

	nt, ok := types.Promote(old, t)
	if r.rt.Locked[v] {
		if !ok || !types.Identical(nt, old) {
			r.lockedMismatch(pos, v, old, t)
		}
		return
	}
	if !ok {
		r.mismatch(pos, v, old, t)
		return
	}
	if !types.Identical(nt, old) {
		r.rt.Types[v] = nt
		r.changes++
	}
}

// lock marks v as locked. The first lock wins.
func (r *resolver) lock(pos syntax.Pos, v TypeVar, by string) {
	if r.rt.Locked[v] {
		return
	}
	r.rt.Locked[v] = true
	if _, ok := r.locks[v]; !ok {
		r.locks[v] = lockInfo{pos: pos, by: by}
	}
	r.changes++
}

// lockOperand locks every variable and map value read by e.
func (r *resolver) lockOperand(pos syntax.Pos, e syntax.Expr) {
	syntax.Inspect(e, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Variable:
			r.lock(pos, r.lookupVar(n.Name), "compile-time reflection")
		case *syntax.Map:
			r.lock(pos, MapValueVar(n.Name), "compile-time reflection")
		}
		return true
	})
}

func (r *resolver) slot(v TypeVar) types.Type {
	if t, ok := r.rt.Types[v]; ok {
		return t
	}
	return types.None
}

// ----------------------------------------------------------------------------
// Scopes

func (r *resolver) openScope(owner syntax.Node) {
	r.scopes = append(r.scopes, &scope{owner: owner, names: make(map[string]bool)})
}

func (r *resolver) closeScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare declares a let variable in the innermost scope.
func (r *resolver) declare(v *syntax.Variable) TypeVar {
	s := r.scopes[len(r.scopes)-1]
	if s.names[v.Name] {
		r.errorf(v.Pos(), "variable %s redeclared in this block", v.Name)
	}
	s.names[v.Name] = true
	return LocalVar(s.owner, v.Name)
}

// lookupVar returns the slot of the variable name as seen from the
// current scope. Variables that were never declared with let belong to
// the probe.
func (r *resolver) lookupVar(name string) TypeVar {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if r.scopes[i].names[name] {
			return LocalVar(r.scopes[i].owner, name)
		}
	}
	return LocalVar(r.probe, name)
}

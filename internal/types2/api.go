// Package types2 resolves the sized type of every expression, scratch
// variable and map in a probe program.
//
// Resolution is an iterative fixpoint: the program is walked repeatedly,
// widening the type recorded for each slot, until a full walk changes
// nothing. Compile-time reflection (sizeof, offsetof, typeinfo, typeof and
// if comptime) locks the slots it observes so that later assignments cannot
// change what was already reported. Apply then copies the result onto the
// AST.
package types2

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/you-not-fish/probec/internal/btf"
	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types"
)

// DefaultMaxIterations bounds the fixpoint when Config.MaxIterations is 0.
const DefaultMaxIterations = 100

// Config specifies the configuration for type resolution.
type Config struct {
	// MaxIterations is the maximum number of walks over the program.
	// If 0, DefaultMaxIterations is used.
	MaxIterations int

	// Oracle resolves C struct names.
	// If nil, every struct name is unknown.
	Oracle btf.Registry

	// Sizes provides type size and alignment information.
	// If nil, DefaultSizes is used.
	Sizes *types.Sizes

	// Logger receives per-iteration debug logs.
	// If nil, nothing is logged.
	Logger *zap.Logger
}

// VarKind identifies the kind of slot a TypeVar names.
type VarKind uint8

const (
	VarNode     VarKind = iota // an expression node
	VarLocal                   // a scratch variable in a scope
	VarMapKey                  // the key of a map
	VarMapValue                // the value of a map
)

// TypeVar names a slot whose type is being resolved. TypeVars are
// comparable and used as map keys.
type TypeVar struct {
	Kind  VarKind
	Node  syntax.Node // expression, for VarNode
	Owner syntax.Node // declaring block or probe, for VarLocal
	Name  string      // variable or map name, including the sigil
}

// NodeVar returns the slot of expression e.
func NodeVar(e syntax.Expr) TypeVar {
	return TypeVar{Kind: VarNode, Node: e}
}

// LocalVar returns the slot of variable name owned by scope.
func LocalVar(owner syntax.Node, name string) TypeVar {
	return TypeVar{Kind: VarLocal, Owner: owner, Name: name}
}

// MapKeyVar returns the key slot of map name.
func MapKeyVar(name string) TypeVar {
	return TypeVar{Kind: VarMapKey, Name: name}
}

// MapValueVar returns the value slot of map name.
func MapValueVar(name string) TypeVar {
	return TypeVar{Kind: VarMapValue, Name: name}
}

func (v TypeVar) String() string {
	switch v.Kind {
	case VarNode:
		return fmt.Sprintf("expression at %s", v.Node.Pos())
	case VarMapKey:
		return v.Name + " key"
	}
	return v.Name
}

// ResolvedTypes holds the result of type resolution.
type ResolvedTypes struct {
	// Types maps each resolved slot to its type. Slots that never
	// received a type are absent.
	Types map[TypeVar]types.Type

	// Locked holds the slots observed by compile-time reflection or
	// declared with an explicit type.
	Locked map[TypeVar]bool

	// Comptime maps each decided if comptime statement to the branch
	// taken: true for Then, false for Else.
	Comptime map[*syntax.IfStmt]bool

	// Iterations is the number of walks it took to reach the fixpoint.
	Iterations int
}

// NewResolvedTypes returns an empty result, as for a program that was
// never resolved.
func NewResolvedTypes() *ResolvedTypes {
	return &ResolvedTypes{
		Types:    make(map[TypeVar]types.Type),
		Locked:   make(map[TypeVar]bool),
		Comptime: make(map[*syntax.IfStmt]bool),
	}
}

// Lookup returns the type of slot v, or None and false.
func (rt *ResolvedTypes) Lookup(v TypeVar) (types.Type, bool) {
	t, ok := rt.Types[v]
	if !ok {
		return types.None, false
	}
	return t, true
}

// TypeOf returns the type of expression e, or None.
func (rt *ResolvedTypes) TypeOf(e syntax.Expr) types.Type {
	t, _ := rt.Lookup(NodeVar(e))
	return t
}

// IsLocked reports whether slot v is locked.
func (rt *ResolvedTypes) IsLocked(v TypeVar) bool {
	return rt.Locked[v]
}

// Vars returns the variable and map slots, ordered by kind, then name,
// then the position of the owning scope.
func (rt *ResolvedTypes) Vars() []TypeVar {
	var vars []TypeVar
	for v := range rt.Types {
		if v.Kind != VarNode {
			vars = append(vars, v)
		}
	}
	slices.SortFunc(vars, func(a, b TypeVar) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		if a.Name != b.Name {
			if a.Name < b.Name {
				return -1
			}
			return 1
		}
		if a.Owner == nil || b.Owner == nil {
			return 0
		}
		pa, pb := a.Owner.Pos(), b.Owner.Pos()
		switch {
		case pa.Before(pb):
			return -1
		case pb.Before(pa):
			return 1
		}
		return 0
	})
	return vars
}

// Resolve computes the types of prog. Diagnostics of the final, stable
// walk are moved into diags. The returned error is non-nil only when the
// fixpoint is not reached within the iteration limit.
func Resolve(prog *syntax.Program, diags *diag.Diagnostics, conf *Config) (*ResolvedTypes, error) {
	if conf == nil {
		conf = &Config{}
	}
	r := newResolver(prog, conf)
	if err := r.run(); err != nil {
		return nil, err
	}
	diags.Merge(r.diags)
	return r.rt, nil
}

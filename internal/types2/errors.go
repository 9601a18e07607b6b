package types2

import (
	"fmt"

	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types"
)

// IterationLimitError is returned when resolution does not reach a
// fixpoint within the configured number of iterations.
type IterationLimitError struct {
	Max int
}

// Error implements the error interface.
func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("type resolution did not converge after %d iterations", e.Max)
}

// errorf reports a semantic error at pos.
func (r *resolver) errorf(pos syntax.Pos, format string, args ...interface{}) *diag.Diagnostic {
	return r.diags.AddError(pos).WithCode(diag.CodeSemantic).Printf(format, args...)
}

// warnf reports a warning at pos.
func (r *resolver) warnf(pos syntax.Pos, format string, args ...interface{}) *diag.Diagnostic {
	return r.diags.AddWarning(pos).Printf(format, args...)
}

// mismatch reports that t cannot be stored in slot v holding old.
func (r *resolver) mismatch(pos syntax.Pos, v TypeVar, old, t types.Type) {
	r.diags.AddError(pos).WithCode(diag.CodeTypeMismatch).
		Printf("type mismatch for %s: %s cannot be combined with %s", v, old, t)
}

// lockedMismatch reports an assignment that would change a locked slot.
func (r *resolver) lockedMismatch(pos syntax.Pos, v TypeVar, old, t types.Type) {
	l := r.locks[v]
	d := r.diags.AddError(pos).WithCode(diag.CodeTypeMismatch).
		Printf("type mismatch for %s: locked to %s by %s, got %s", v, old, l.by, t)
	if l.pos.IsValid() {
		d.Hint("%s was locked at %s", v, l.pos)
	}
}

// invalidOp reports an invalid operation.
func (r *resolver) invalidOp(pos syntax.Pos, format string, args ...interface{}) {
	r.diags.AddError(pos).WithCode(diag.CodeTypeMismatch).Printf("invalid operation: "+format, args...)
}

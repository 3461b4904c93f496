package flow

import (
	"github.com/aclements/focusslice/extract"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

// RepresentativeReads implements the read side of the transfer function
// (§4.F step 1): the set of Places an operation reads from, independent of
// any mutation it also performs. For a simple assignment, the target is not
// a read; for a compound assignment or increment/decrement, it is, since
// the new value depends on the old one.
func RepresentativeReads(op ir.Operation) []place.Place {
	if op == nil {
		return nil
	}

	var roots []ir.Operand
	switch op.Kind() {
	case ir.OpAssign:
		roots = []ir.Operand{op.AssignValue()}
	case ir.OpCompoundAssign:
		roots = []ir.Operand{op.AssignTarget(), op.AssignValue()}
	case ir.OpIncDec:
		roots = []ir.Operand{op.IncDecTarget()}
	case ir.OpDeclareInit:
		roots = []ir.Operand{op.Initializer()}
	case ir.OpCall:
		// Out-bound arguments are write-only: the callee never observes
		// the caller's prior value, so they contribute no read.
		for _, arg := range op.CallArgs() {
			if arg.Ref != ir.ByOut {
				roots = append(roots, arg)
			}
		}
	default:
		// A bare expression evaluated for its value (a branch condition,
		// a return value, an expression statement): the whole operation
		// is a read.
		roots = []ir.Operand{{Expr: op}}
	}

	seen := make(map[string]bool)
	var out []place.Place
	var walk func(o ir.Operand)
	walk = func(o ir.Operand) {
		if o.Expr == nil {
			return
		}
		if p, ok := extract.TryCreate(o.Expr); ok {
			if !seen[p.Key()] {
				seen[p.Key()] = true
				out = append(out, p)
			}
			return
		}
		for _, c := range o.Expr.Children() {
			walk(ir.Operand{Expr: c})
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

// Package mutation implements the Mutation Detector (§4.C): enumerating
// write-effects per operation in a CFG.
package mutation

import (
	"github.com/aclements/focusslice/extract"
	"github.com/aclements/focusslice/ir"
	"github.com/aclements/focusslice/place"
)

// ForCFG enumerates every Mutation in g, recursing into subexpressions so
// that call arguments bound to by-reference parameters are found no matter
// how deeply they're nested in a statement.
func ForCFG(g ir.CFG) []place.Mutation {
	var out []place.Mutation
	for _, b := range g.Blocks() {
		for i, op := range b.Operations() {
			out = appendAt(out, place.NewLocation(b.Ordinal(), i), op)
		}
		if branch, ok := b.BranchValue(); ok {
			out = appendAt(out, place.NewLocation(b.Ordinal(), len(b.Operations())), branch)
		}
	}
	return out
}

// ForOperation enumerates the Mutations produced by op and every operation
// nested inside it, all attributed to loc (a single program location may
// host several mutations, e.g. f(a, out x, out y)).
func ForOperation(loc place.ProgramLocation, op ir.Operation) []place.Mutation {
	return appendAt(nil, loc, op)
}

func appendAt(out []place.Mutation, loc place.ProgramLocation, op ir.Operation) []place.Mutation {
	if op == nil {
		return out
	}

	switch op.Kind() {
	case ir.OpAssign:
		if m, ok := mutationFor(op.AssignTarget(), loc, place.Assignment); ok {
			out = append(out, m)
		}
	case ir.OpCompoundAssign:
		if m, ok := mutationFor(op.AssignTarget(), loc, place.CompoundAssignment); ok {
			out = append(out, m)
		}
	case ir.OpIncDec:
		kind := place.Decrement
		if op.IsIncrement() {
			kind = place.Increment
		}
		if m, ok := mutationFor(op.IncDecTarget(), loc, kind); ok {
			out = append(out, m)
		}
	case ir.OpDeclareInit:
		if sym := op.DeclaredSymbol(); sym != nil {
			out = append(out, place.Mutation{
				Target:   place.New(sym),
				Location: loc,
				Kind:     place.Initialization,
			})
		}
	case ir.OpCall:
		for _, arg := range op.CallArgs() {
			if arg.Expr == nil {
				continue
			}
			var kind place.MutationKind
			switch arg.Ref {
			case ir.ByRef:
				kind = place.RefArgument
			case ir.ByOut:
				kind = place.OutArgument
			default:
				continue
			}
			if m, ok := mutationFor(arg, loc, kind); ok {
				out = append(out, m)
			}
		}
	}

	// Statement wrappers are transparent: recurse into every child so a
	// call nested anywhere inside a statement still contributes argument
	// mutations.
	for _, child := range op.Children() {
		out = appendAt(out, loc, child)
	}
	return out
}

func mutationFor(operand ir.Operand, loc place.ProgramLocation, kind place.MutationKind) (place.Mutation, bool) {
	if operand.Expr == nil {
		return place.Mutation{}, false
	}
	p, ok := extract.TryCreate(operand.Expr)
	if !ok {
		return place.Mutation{}, false
	}
	return place.Mutation{Target: p, Location: loc, Kind: kind, Indexed: extract.IsIndexed(operand.Expr)}, true
}
